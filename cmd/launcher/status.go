package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moviegrab/moviegrab-go-bot/internal/process"
)

func newStatusCmd(opts *launcherOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report bot process and health endpoint state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func runStatus(ctx context.Context, out io.Writer, opts *launcherOptions) error {
	pattern, err := regexp.Compile(opts.pattern)
	if err != nil {
		return errors.Wrap(err, "invalid pattern")
	}

	matches, err := process.FindMatching(pattern)
	if err != nil {
		return errors.Wrap(err, "scanning processes")
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "bot: not running")
	}
	for _, m := range matches {
		fmt.Fprintf(out, "bot: running (pid %d) %s\n", m.PID, m.Command)
	}

	url := "http://" + probeAddr(opts.bind) + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "building health request")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(out, "health: unreachable (%v)\n", err)
		return nil
	}
	defer resp.Body.Close()

	fmt.Fprintf(out, "health: %s\n", resp.Status)
	return nil
}
