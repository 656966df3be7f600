package platform

import (
	"os/exec"
)

// External binaries gofetch can delegate to. None are required: without curl
// the native HTTP agent is used, without gum the plain tty prompt is used.
const (
	CurlBinary = "curl"
	GumBinary  = "gum"
)

// LookPath wraps exec.LookPath so callers can be pointed at a fake in tests.
var LookPath = exec.LookPath

// HasBinary reports whether name resolves on PATH.
func HasBinary(name string) bool {
	_, err := LookPath(name)
	return err == nil
}
