package main

import (
	"github.com/koustreak/rsadapter/internal/schema"
	"github.com/koustreak/rsadapter/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var withSnapshots bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve capabilities and decoded columns over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []server.Option{
				server.WithLogger(log),
				server.WithReader(schema.NewIntrospector(a, log)),
			}
			if withSnapshots {
				snaps, err := openSnapshots(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithSnapshots(snaps))
			}

			return server.New(a, opts...).Run(ctx, cfg.Server)
		},
	}

	cmd.Flags().BoolVar(&withSnapshots, "snapshots", false, "enable the snapshot routes (needs the snapshot store)")
	return cmd
}
