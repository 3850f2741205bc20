//go:build !windows

package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildStartStop(t *testing.T) {
	logger := zerolog.Nop()

	c := newChild("sleep", []string{"30"}, &logger)
	require.NoError(t, c.start())

	done := make(chan struct{})
	go func() {
		c.stop(2 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return in time")
	}

	select {
	case <-c.exited:
	default:
		t.Fatal("child still running after stop")
	}
}

func TestChildStopAfterExit(t *testing.T) {
	logger := zerolog.Nop()

	c := newChild("true", nil, &logger)
	require.NoError(t, c.start())

	select {
	case <-c.exited:
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit on its own")
	}
	assert.NoError(t, c.err)

	// Must not block or signal a reaped pid.
	c.stop(time.Second)
}

func TestChildStopBeforeStart(t *testing.T) {
	logger := zerolog.Nop()

	c := newChild("sleep", []string{"30"}, &logger)
	c.stop(time.Second)
}

func TestChildStartFailure(t *testing.T) {
	logger := zerolog.Nop()

	c := newChild("/nonexistent/binary", nil, &logger)
	require.Error(t, c.start())
}
