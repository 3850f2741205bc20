//go:build windows

package main

import (
	"os/exec"
	"strconv"
)

func setProcGroup(cmd *exec.Cmd) {}

func terminateGroup(pid int) {
	_ = exec.Command("taskkill", "/t", "/pid", strconv.Itoa(pid)).Run()
}

func killGroup(pid int) {
	_ = exec.Command("taskkill", "/f", "/t", "/pid", strconv.Itoa(pid)).Run()
}
