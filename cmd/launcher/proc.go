package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// child is one supervised process. It runs in its own process group so a
// teardown reaches grandchildren too.
type child struct {
	name   string
	cmd    *exec.Cmd
	exited chan struct{}
	err    error
	logger *zerolog.Logger
}

func newChild(bin string, args []string, logger *zerolog.Logger) *child {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	setProcGroup(cmd)

	return &child{
		name:   filepath.Base(bin),
		cmd:    cmd,
		exited: make(chan struct{}),
		logger: logger,
	}
}

func (c *child) start() error {
	if err := c.cmd.Start(); err != nil {
		return err
	}
	c.logger.Info().Str("child", c.name).Int("pid", c.cmd.Process.Pid).Msg("child started")

	go func() {
		c.err = c.cmd.Wait()
		close(c.exited)
	}()
	return nil
}

// stop asks the child's process group to exit, escalating to a kill after
// the grace period. Safe to call on an already exited child.
func (c *child) stop(grace time.Duration) {
	if c.cmd.Process == nil {
		return
	}
	select {
	case <-c.exited:
		return
	default:
	}

	c.logger.Info().Str("child", c.name).Msg("stopping child")
	terminateGroup(c.cmd.Process.Pid)

	select {
	case <-c.exited:
	case <-time.After(grace):
		c.logger.Warn().Str("child", c.name).Msg("child survived grace period, killing")
		killGroup(c.cmd.Process.Pid)
		<-c.exited
	}
}
