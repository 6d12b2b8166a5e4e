package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"instance-doctor/pkg/diag"
	"instance-doctor/pkg/inspect"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/render"
)

var errInvalidReport = errors.New("one or more instances are invalid")

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		file        string
		host        string
		successes   bool
		suggestions bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a snapshot file and print the fleet report",
		Example: `  doctor evaluate -f snapshots.yaml
  doctor evaluate -f snapshots.json --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = root.v.GetString("agent.snapshots")
			}
			batch, err := inspect.NewFileSource(file).Batch(cmd.Context())
			if err != nil {
				return err
			}
			if host != "" {
				batch.Host = host
			}

			engine := diag.NewEngine(diag.WithLogger(dlog.WithComponent("engine")))
			report, err := engine.Evaluate(cmd.Context(), batch.Instances)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", file, err)
			}
			report.Host = batch.Host

			out := cmd.OutOrStdout()
			if root.outputFormat() == "json" {
				err = render.JSON(out, report)
			} else {
				err = render.Text(out, report, render.Options{Successes: successes, Suggestions: suggestions})
			}
			if err != nil {
				return err
			}
			if !report.AllValid() {
				return errInvalidReport
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file (yaml or json)")
	cmd.Flags().StringVar(&host, "host", "", "override the host name in the report")
	cmd.Flags().BoolVar(&successes, "successes", false, "list successful checks")
	cmd.Flags().BoolVar(&suggestions, "suggestions", true, "list remediation hints")
	return cmd
}
