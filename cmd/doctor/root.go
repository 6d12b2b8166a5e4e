package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"instance-doctor/pkg/config"
	dlog "instance-doctor/pkg/log"
)

type rootOptions struct {
	cfgFile string
	output  string
	verbose bool
	v       *viper.Viper
}

// NewRootCmd returns the root command for the doctor CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}
	rootCmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose service instances on a host",
		Long:          "doctor validates instance snapshots, derives a health label per instance and reports port conflicts across the fleet.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.output, "output", "text", "output format: text|json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	_ = opts.v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(newEvaluateCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	level := o.v.GetString("log.level")
	if o.verbose {
		level = "debug"
	}
	dlog.Configure(dlog.Config{Level: level, Output: cmd.ErrOrStderr(), Service: "doctor"})

	switch o.outputFormat() {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", o.outputFormat())
	}
}

func (o *rootOptions) outputFormat() string {
	return o.v.GetString("output")
}
