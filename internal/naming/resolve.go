package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/datallboy/gofetch/internal/domain"
)

// maxSuffix bounds the search in Resolve
const maxSuffix = 10000

// Resolve returns a path in dir that does not exist at the time of the check.
// It tries dir/filename first, then dir/base_1.ext, dir/base_2.ext and so on.
// There is no locking: two callers racing on the same directory can get the same answer.
func Resolve(dir, filename string) (string, error) {
	candidate := filepath.Join(dir, filename)
	taken, err := occupied(candidate)
	if err != nil || !taken {
		return candidate, err
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	for i := 1; i <= maxSuffix; i++ {
		candidate = filepath.Join(dir, base+"_"+strconv.Itoa(i)+ext)
		taken, err = occupied(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts", domain.ErrNoFreeName, filename, maxSuffix)
}

func occupied(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("could not check %s: %w", filepath.Base(path), err)
}
