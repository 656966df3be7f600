package naming

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultName      = "download"
	DefaultExtension = ".mp4"
)

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	underscoreRuns = regexp.MustCompile(`_+`)
	separators     = strings.NewReplacer("/", "_", "\\", "_", " ", "_")
)

// Sanitize derives a filesystem-safe filename from a URL.
// The query string is dropped, the last path segment is percent-decoded and
// reduced to [A-Za-z0-9._-]. The result is never empty and always has an extension.
func Sanitize(rawURL string) string {
	res := rawURL
	if i := strings.IndexByte(res, '?'); i >= 0 {
		res = res[:i]
	}

	res = res[strings.LastIndex(res, "/")+1:]
	if res == "" {
		res = DefaultName
	}

	res = decodeSegment(res)
	res = strings.TrimSpace(res)

	res = separators.Replace(res)
	res = unsafeChars.ReplaceAllString(res, "_")
	res = underscoreRuns.ReplaceAllString(res, "_")

	// "", "." and ".." would all resolve to a directory rather than a file
	if strings.Trim(res, ".") == "" {
		res = DefaultName
	}

	if !strings.Contains(res, ".") {
		res += DefaultExtension
	}

	return res
}

// decodeSegment treats '+' as a space and then decodes %XX escapes.
// A malformed escape leaves the segment as-is apart from the '+' substitution.
func decodeSegment(seg string) string {
	decoded, err := url.QueryUnescape(seg)
	if err != nil {
		return strings.ReplaceAll(seg, "+", " ")
	}
	return decoded
}
