package domain

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DownloadRequest is a validated URL together with the filename derived from it.
type DownloadRequest struct {
	SourceURL       string
	DerivedFilename string
}

// DestinationPath is where a single transfer writes its bytes.
type DestinationPath struct {
	Directory string
	Filename  string
}

func (d DestinationPath) Path() string {
	return filepath.Join(d.Directory, d.Filename)
}

// ValidateURL accepts only URLs carrying an http:// or https:// scheme prefix.
// Line breaks are rejected too, since a queue entry is exactly one line.
func ValidateURL(raw string) error {
	if strings.ContainsAny(raw, "\r\n") {
		return ErrInvalidURL
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrInvalidURL
	}
	return nil
}

// Host returns the host portion of a URL, or "" if it cannot be parsed.
// Used wherever a log line or record needs to say where a download came from
// without echoing the path or query (which may carry access tokens).
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
