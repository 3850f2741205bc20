//go:build windows

package process

import (
	"os"
	"os/exec"
	"strconv"
)

// commandLine is unavailable on Windows; callers fall back to the
// executable name reported by the process list.
func commandLine(pid int) string {
	return ""
}

// Alive reports whether pid is still running.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	proc.Release()
	return true
}

func terminate(pid int) error {
	return exec.Command("taskkill", "/pid", strconv.Itoa(pid)).Run()
}

func kill(pid int) error {
	return exec.Command("taskkill", "/f", "/pid", strconv.Itoa(pid)).Run()
}
