package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newColumnsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Print the decoded columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openAdapter(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cols, err := a.Columns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), cols)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSQL TYPE\tTYPE\tNULL\tDEFAULT")
			for _, c := range cols {
				def := ""
				switch {
				case c.Default != nil:
					def = *c.Default
				case c.DefaultFunction != nil:
					def = *c.DefaultFunction
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", c.Name, c.SQLType, c.Type, c.Null, def)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
