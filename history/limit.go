package history

import (
	"fmt"
	"runtime"
	"unicode/utf8"
)

// MaxJobNameLength is the longest job name a job template accepts, so
// there is no point in keeping more of it in a bundle name.
const MaxJobNameLength = 128

// ManifestSuffix is the longest path a bundle adds below its own
// directory when its input manifests are written.
const ManifestSuffix = `\manifests\d2b2c3102af5a862db950a2e30255429_input`

// PathLimit is the maximum length, in characters, of an absolute
// bundle directory path.  Unlimited means the platform doesn't care.
type PathLimit int

const (
	Unlimited PathLimit = 0

	// WindowsMaxPath is MAX_PATH less its terminating NUL.
	WindowsMaxPath PathLimit = 256

	// WindowsPathLimit leaves room for ManifestSuffix under MAX_PATH.
	WindowsPathLimit PathLimit = WindowsMaxPath - PathLimit(len(ManifestSuffix))
)

// DefaultPathLimit returns the limit for the platform we are running on.
func DefaultPathLimit() PathLimit {
	if runtime.GOOS == "windows" {
		return WindowsPathLimit
	}
	return Unlimited
}

// PathTooLongError is returned when the bundle prefix alone leaves no
// room for even one character of job name.
type PathTooLongError struct {
	Prefix string
	Limit  PathLimit
}

func (e *PathTooLongError) Error() string {
	return fmt.Sprintf(
		"job history directory is too long (%s exceeds %d characters); please update your '%s' to a shorter path",
		e.Prefix, int(e.Limit), JobHistoryDirKey)
}

// JobNameBudget returns how many characters of job name fit after
// prefix, the absolute path of a bundle up to and including the hyphen
// that follows the submitter name.
func (limit PathLimit) JobNameBudget(prefix string) (n int, err error) {
	if limit == Unlimited {
		return MaxJobNameLength, nil
	}
	n = int(limit) - utf8.RuneCountInString(prefix)
	if n > MaxJobNameLength {
		n = MaxJobNameLength
	}
	if n < 1 {
		return 0, &PathTooLongError{Prefix: prefix, Limit: limit}
	}
	return
}
