//go:build !windows

package transfer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCurl writes a shell script standing in for curl. It records its argv and
// stdin next to itself and exits with the code in exit.
func fakeCurl(t *testing.T, exit int) (bin, argsFile, stdinFile string) {
	t.Helper()
	dir := t.TempDir()
	bin = filepath.Join(dir, "curl")
	argsFile = filepath.Join(dir, "args")
	stdinFile = filepath.Join(dir, "stdin")

	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + argsFile + ".tmp\n" +
		"cat > " + stdinFile + "\n" +
		"mv " + argsFile + ".tmp " + argsFile + "\n" +
		"exit " + strconv.Itoa(exit) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin, argsFile, stdinFile
}

func newTestCurl(t *testing.T, bin string, rateLimit int64) (*CLICurl, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	return &CLICurl{
		BinaryPath: bin,
		LogDir:     t.TempDir(),
		RateLimit:  rateLimit,
		log:        logger.NewWriter(logs, logger.LevelDebug),
	}, logs
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestCLICurl_ForegroundKeepsURLOffArgv(t *testing.T) {
	bin, argsFile, stdinFile := fakeCurl(t, 0)
	c, _ := newTestCurl(t, bin, 0)
	url := "https://example.com/video.mp4?token=ABC123"

	err := c.Transfer(context.Background(), domain.TransferRequest{URL: url, Dest: "/tmp/video.mp4", Mode: domain.Foreground})
	require.NoError(t, err)

	args := readArgs(t, argsFile)
	assert.Contains(t, args, "--fail")
	assert.Contains(t, args, "--progress-bar")
	assert.Contains(t, args, "/tmp/video.mp4")
	assert.NotContains(t, strings.Join(args, " "), "ABC123")

	stdin, err := os.ReadFile(stdinFile)
	require.NoError(t, err)
	assert.Equal(t, `url = "`+url+`"`+"\n", string(stdin))
}

func TestCLICurl_RateLimit(t *testing.T) {
	bin, argsFile, _ := fakeCurl(t, 0)
	c, _ := newTestCurl(t, bin, 2048)

	require.NoError(t, c.Transfer(context.Background(), domain.TransferRequest{URL: "https://e.com/a", Dest: "/tmp/a", Mode: domain.Foreground}))
	assert.Contains(t, strings.Join(readArgs(t, argsFile), " "), "--limit-rate 2048")
}

func TestCLICurl_ForegroundFailure(t *testing.T) {
	bin, _, _ := fakeCurl(t, 7)
	c, _ := newTestCurl(t, bin, 0)

	err := c.Transfer(context.Background(), domain.TransferRequest{URL: "https://e.com/a?token=ABC123", Dest: "/tmp/a", Mode: domain.Foreground})
	assert.ErrorIs(t, err, domain.ErrTransfer)
	assert.Contains(t, err.Error(), "7")
	assert.NotContains(t, err.Error(), "ABC123")
}

func TestCLICurl_MissingBinary(t *testing.T) {
	c, _ := newTestCurl(t, filepath.Join(t.TempDir(), "nope"), 0)

	err := c.Transfer(context.Background(), domain.TransferRequest{URL: "https://e.com/a", Dest: "/tmp/a", Mode: domain.Foreground})
	assert.ErrorIs(t, err, domain.ErrLaunch)
}

func TestCLICurl_Background(t *testing.T) {
	bin, argsFile, stdinFile := fakeCurl(t, 0)
	c, logs := newTestCurl(t, bin, 0)
	url := "https://example.com/v.mp4?token=ABC123"

	err := c.Transfer(context.Background(), domain.TransferRequest{URL: url, Dest: "/tmp/v.mp4", Mode: domain.Background})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := os.Stat(argsFile)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	args := readArgs(t, argsFile)
	assert.Contains(t, args, "--silent")
	assert.NotContains(t, args, "--progress-bar")

	stdin, err := os.ReadFile(stdinFile)
	require.NoError(t, err)
	assert.Contains(t, string(stdin), url)

	assert.Contains(t, logs.String(), "Background output: "+c.LogDir)
	assert.NotContains(t, logs.String(), "ABC123")
}

func TestCLICurl_BackgroundURLTooLong(t *testing.T) {
	bin, _, _ := fakeCurl(t, 0)
	c, _ := newTestCurl(t, bin, 0)

	long := "https://e.com/" + strings.Repeat("a", pipeCapacity)
	err := c.Transfer(context.Background(), domain.TransferRequest{URL: long, Dest: "/tmp/a", Mode: domain.Background})
	assert.ErrorIs(t, err, domain.ErrLaunch)
}

func TestCurlConfig_Escapes(t *testing.T) {
	assert.Equal(t, `url = "https://e.com/a\"b\\c"`+"\n", curlConfig(`https://e.com/a"b\c`))
}
