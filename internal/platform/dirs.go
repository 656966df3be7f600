package platform

import (
	"os"
	"path/filepath"
)

const (
	AppDirName     = ".gofetch"
	QueueFileName  = ".gofetch_queue"
	DownloadsDir   = "Downloads"
	DefaultDirPerm = 0755
)

// DefaultDownloadDir returns ~/Downloads if it exists, else the current directory.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err == nil {
		dir := filepath.Join(home, DownloadsDir)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "."
}

// DefaultQueueFile returns the dotfile in the user's home used as the queue.
func DefaultQueueFile() string {
	return filepath.Join(homeOrCwd(), QueueFileName)
}

// AppDir returns ~/.gofetch, where logs, history and the optional config live.
func AppDir() string {
	return filepath.Join(homeOrCwd(), AppDirName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1])) {
		return filepath.Join(homeOrCwd(), path[1:])
	}
	return path
}

func homeOrCwd() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
