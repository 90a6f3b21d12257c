package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/jobhistory/config"
)

// JobHistoryDirKey names the setting that holds the history root.
const JobHistoryDirKey = config.JobHistoryDirKey

// Settings is anything that can look up a setting by key.  The
// config.File type is the usual implementation.
type Settings interface {
	GetSetting(key string) (string, error)
}

// ConfigError is returned when the history root can't be worked out
// from the settings.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// mkdir creates bundle directories.  Tests swap it to lose the race
// described on Allocator.
var mkdir = os.Mkdir

// Allocator hands out bundle directories.  Now defaults to time.Now
// and Limit to Unlimited; use DefaultPathLimit() for the limit of the
// running platform.
//
// Nothing here guards against another process allocating in the same
// bucket at the same moment.  The loser of that race gets the "file
// exists" error from os.Mkdir.
type Allocator struct {
	Settings Settings
	Now      func() time.Time
	Limit    PathLimit
}

func (a Allocator) New(settings Settings) *Allocator {
	a.Settings = settings
	if a.Now == nil {
		a.Now = time.Now
	}
	return &a
}

// Root returns the absolute path of the history root.
func (a *Allocator) Root() (root string, err error) {
	Assert(a.Settings != nil, "allocator has no settings")
	raw, err := a.Settings.GetSetting(JobHistoryDirKey)
	if err != nil {
		return "", &ConfigError{Key: JobHistoryDirKey, Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &ConfigError{Key: JobHistoryDirKey, Err: fmt.Errorf("empty path")}
	}
	expanded, err := config.ExpandUser(raw)
	if err != nil {
		return "", &ConfigError{Key: JobHistoryDirKey, Err: err}
	}
	root, err = filepath.Abs(expanded)
	if err != nil {
		return "", &ConfigError{Key: JobHistoryDirKey, Err: err}
	}
	return
}

// Allocate creates a new, empty bundle directory for a job named
// jobName sent by submitterName, and returns its absolute path.  The
// month bucket is created on first use.  Errors from creating the
// bundle directory itself are returned as-is.
func (a *Allocator) Allocate(submitterName, jobName string) (dir string, err error) {
	root, err := a.Root()
	if err != nil {
		return
	}

	now := a.now()
	bucket := filepath.Join(root, now.Format(monthLayout))
	err = os.MkdirAll(bucket, 0755)
	if err != nil {
		return
	}

	date := now.Format(dateLayout)
	seq, err := nextSequence(bucket, date)
	if err != nil {
		return
	}

	submitter := Sanitize(submitterName)
	prefix := fmt.Sprintf("%s-%02d-%s-", date, seq, submitter)
	budget, err := a.Limit.JobNameBudget(filepath.Join(bucket, prefix))
	if err != nil {
		return
	}
	job := truncate(Sanitize(jobName), budget)

	b := &Bundle{Date: date, Sequence: seq, Label: submitter + "-" + job}
	dir = filepath.Join(bucket, b.Name())
	err = mkdir(dir, 0755)
	if err != nil {
		return "", err
	}
	log.Debugf("allocated bundle %s", dir)
	return dir, nil
}

// List returns the bundles in the named bucket, or in every bucket if
// month is empty, oldest first.  A root or bucket that doesn't exist
// yet has no bundles.
func (a *Allocator) List(month string) (bundles []*Bundle, err error) {
	defer Return(&err)

	root, err := a.Root()
	Ck(err)

	var months []string
	if month != "" {
		if !IsMonth(month) {
			return nil, fmt.Errorf("not a month: %q, expected YYYY-MM", month)
		}
		months = []string{month}
	} else {
		entries, err := os.ReadDir(root)
		if os.IsNotExist(err) {
			return nil, nil
		}
		Ck(err)
		for _, entry := range entries {
			if entry.IsDir() && IsMonth(entry.Name()) {
				months = append(months, entry.Name())
			}
		}
	}

	for _, m := range months {
		found, err := scanBucket(filepath.Join(root, m))
		Ck(err)
		bundles = append(bundles, found...)
	}
	sort.SliceStable(bundles, func(i, j int) bool {
		if bundles[i].Date != bundles[j].Date {
			return bundles[i].Date < bundles[j].Date
		}
		return bundles[i].Sequence < bundles[j].Sequence
	})
	return
}

func (a *Allocator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// nextSequence returns one more than the highest sequence number used
// on date in bucket, or 1 if there is none.  We go by the highest
// number rather than by a count so that numbers freed by deleting a
// bundle are not handed out again.
func nextSequence(bucket, date string) (seq int, err error) {
	entries, err := os.ReadDir(bucket)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, date+"-") {
			continue
		}
		b, err := ParseBundle(name)
		if err != nil {
			log.Debugf("skipping %s: %v", name, err)
			continue
		}
		if b.Sequence > seq {
			seq = b.Sequence
		}
	}
	return seq + 1, nil
}

// scanBucket returns the bundle directories in bucket, in no
// particular order.
func scanBucket(bucket string) (bundles []*Bundle, err error) {
	entries, err := os.ReadDir(bucket)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", bucket)
	}
	month := filepath.Base(bucket)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		b, err := ParseBundle(entry.Name())
		if err != nil || b.Month() != month {
			continue
		}
		b.Path = filepath.Join(bucket, entry.Name())
		bundles = append(bundles, b)
	}
	return
}
