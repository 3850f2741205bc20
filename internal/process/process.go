package process

import (
	"context"
	"os"
	"regexp"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// killPollInterval is how often terminated processes are re-checked while
// waiting out the grace period.
const killPollInterval = 200 * time.Millisecond

// Info describes one running process.
type Info struct {
	PID     int
	Command string
}

// FindMatching returns every process whose command line matches pattern.
// The current process and its parent are excluded so a runner scanning for
// stale instances never matches itself.
func FindMatching(pattern *regexp.Regexp) ([]Info, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, errors.Wrap(err, "listing processes")
	}

	self, parent := os.Getpid(), os.Getppid()
	var matches []Info
	for _, p := range procs {
		pid := p.Pid()
		if pid == self || pid == parent {
			continue
		}
		cmd := commandLine(pid)
		if cmd == "" {
			cmd = p.Executable()
		}
		if pattern.MatchString(cmd) {
			matches = append(matches, Info{PID: pid, Command: cmd})
		}
	}
	return matches, nil
}

// TerminateMatching stops every process matching pattern. Each match gets a
// SIGTERM and up to grace to exit before being killed outright. Zero matches
// is not an error. Returns how many processes were signalled.
func TerminateMatching(ctx context.Context, pattern *regexp.Regexp, grace time.Duration, logger *zerolog.Logger) (int, error) {
	matches, err := FindMatching(pattern)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		logger.Info().Str("pattern", pattern.String()).Msg("no matching processes to terminate")
		return 0, nil
	}

	for _, m := range matches {
		logger.Info().Int("pid", m.PID).Str("command", m.Command).Msg("terminating process")
		if err := terminate(m.PID); err != nil {
			logger.Warn().Err(err).Int("pid", m.PID).Msg("could not signal process")
		}
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !anyAlive(matches) {
			return len(matches), nil
		}
		select {
		case <-ctx.Done():
			return len(matches), ctx.Err()
		case <-time.After(killPollInterval):
		}
	}

	for _, m := range matches {
		if !Alive(m.PID) {
			continue
		}
		logger.Warn().Int("pid", m.PID).Msg("process survived grace period, killing")
		if err := kill(m.PID); err != nil {
			logger.Warn().Err(err).Int("pid", m.PID).Msg("could not kill process")
		}
	}
	return len(matches), nil
}

func anyAlive(matches []Info) bool {
	for _, m := range matches {
		if Alive(m.PID) {
			return true
		}
	}
	return false
}
