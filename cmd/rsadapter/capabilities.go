package main

import (
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/spf13/cobra"
)

func newCapabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the feature flags and native column types of the adapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openAdapter(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			native := make(map[database.ColumnKind]string)
			for kind, nt := range a.NativeTypes() {
				native[kind] = nt.SQL()
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"adapter":      a.Name(),
				"features":     a.FeatureSet(),
				"native_types": native,
			})
		},
	}
}
