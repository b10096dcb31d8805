package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/koustreak/rsadapter/internal/schema"
	"github.com/spf13/cobra"
)

func newSnapshotCommand() *cobra.Command {
	var schemaName string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list and show schema snapshots",
	}
	cmd.PersistentFlags().StringVarP(&schemaName, "schema", "s", "public", "database schema")

	save := &cobra.Command{
		Use:   "save",
		Short: "Inspect the schema and store a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			snaps, err := openSnapshots(ctx)
			if err != nil {
				return err
			}

			info, err := schema.NewIntrospector(a, log).InspectSchema(ctx, schemaName)
			if err != nil {
				return err
			}
			obj, err := snaps.Save(ctx, info)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d tables, %d bytes)\n", obj.Key, len(info.Tables), obj.Size)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snaps, err := openSnapshots(cmd.Context())
			if err != nil {
				return err
			}
			objs, err := snaps.List(cmd.Context(), schemaName)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, o := range objs {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	var presign time.Duration
	show := &cobra.Command{
		Use:   "show [key]",
		Short: "Print a snapshot, the latest one when no key is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snaps, err := openSnapshots(ctx)
			if err != nil {
				return err
			}

			var info *schema.SchemaInfo
			if len(args) == 1 {
				info, err = snaps.Load(ctx, args[0])
			} else {
				info, err = snaps.Latest(ctx, schemaName)
			}
			if err != nil {
				return err
			}

			if presign > 0 {
				u, err := snaps.PresignURL(ctx, snaps.Key(info), presign)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	show.Flags().DurationVar(&presign, "presign", 0, "print a download URL valid for this long instead of the content")

	cmd.AddCommand(save, list, show)
	return cmd
}
