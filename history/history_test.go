package history

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	. "github.com/stevegt/goadapt"
)

const testDirPrefix = "jobhistory"

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

// settings is an in-memory Settings
type settings map[string]string

func (s settings) GetSetting(key string) (string, error) {
	val, ok := s[key]
	if !ok {
		return "", fmt.Errorf("no such setting: %s", key)
	}
	return val, nil
}

// tmpdir returns a scratch directory, kept around for inspection when
// DEBUG=1.
func tmpdir(t *testing.T) (dir string) {
	if os.Getenv("DEBUG") == "1" {
		var err error
		dir, err = ioutil.TempDir("", testDirPrefix)
		Ck(err)
		fmt.Println(dir)
		return
	}
	return t.TempDir()
}

// at returns a clock frozen at ts, given as YYYY-MM-DDTHH:MM local time.
func at(ts string) func() time.Time {
	tm, err := time.ParseInLocation("2006-01-02T15:04", ts, time.Local)
	Ck(err)
	return func() time.Time { return tm }
}

func setup(t *testing.T, root string, limit PathLimit) *Allocator {
	if root == "" {
		root = tmpdir(t)
	}
	a := Allocator{Limit: limit}.New(settings{JobHistoryDirKey: root})
	tassert(t, a != nil, "allocator is nil")
	return a
}

func isdir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func ls(t *testing.T, dir string) (names []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return
}

func deepEqual(a, b interface{}) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
