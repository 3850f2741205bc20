package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

type launcherOptions struct {
	healthdBin string
	runnerBin  string
	bind       string
	envFile    string
	pattern    string
	grace      time.Duration
	wait       time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &launcherOptions{}

	root := &cobra.Command{
		Use:          "launcher",
		Short:        "Supervises the health-check server and the Telegram bot",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.healthdBin, "healthd-bin", "healthd", "path to the healthd binary")
	flags.StringVar(&opts.runnerBin, "runner-bin", "moviegrab-runner", "path to the bot runner binary")
	flags.StringVar(&opts.bind, "bind", "0.0.0.0:5000", "address healthd listens on")
	flags.StringVar(&opts.envFile, "env-file", ".env", "path to the .env file passed to the runner")
	flags.StringVar(&opts.pattern, "pattern", "moviegrab-runner", "pattern matching bot runner processes")
	flags.DurationVar(&opts.grace, "grace", 2*time.Second, "termination grace period for children")
	flags.DurationVar(&opts.wait, "wait", 30*time.Second, "how long to wait for healthd to come up")

	root.AddCommand(newUpCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
