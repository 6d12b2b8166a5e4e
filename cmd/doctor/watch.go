package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"instance-doctor/pkg/agent"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/model"
	"instance-doctor/pkg/render"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow fleet reports pushed by a controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := agent.NewWatcher(root.v.GetString("agent.controller"), host)
			if err != nil {
				return err
			}
			w.Log = dlog.WithComponent("watch")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx, func(report model.FleetReport) {
				out := cmd.OutOrStdout()
				if root.outputFormat() == "json" {
					_ = render.JSON(out, report)
					return
				}
				_ = render.Text(out, report, render.Options{Suggestions: true})
			})
		},
	}
	cmd.Flags().String("controller", "", "controller base URL (default agent.controller)")
	cmd.Flags().StringVar(&host, "host", "", "only follow reports of this host")
	_ = root.v.BindPFlag("agent.controller", cmd.Flags().Lookup("controller"))
	return cmd
}
