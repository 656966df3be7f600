//go:build !windows

package transfer

import (
	"os/exec"
	"syscall"
)

// detach puts the child in a new session so closing the terminal does not kill it
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
