package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Bundle describes one allocated job bundle directory.  Path is only
// set for bundles that were found on, or written to, disk.
type Bundle struct {
	Path     string
	Date     string // YYYY-MM-DD
	Sequence int
	Label    string // <submitter>-<job>
}

// Name renders the directory name of the bundle.
func (b *Bundle) Name() string {
	return fmt.Sprintf("%s-%02d-%s", b.Date, b.Sequence, b.Label)
}

// Month returns the name of the bucket the bundle belongs in.
func (b *Bundle) Month() string {
	return b.Date[:len(monthLayout)]
}

func (b *Bundle) String() string {
	if b.Path != "" {
		return b.Path
	}
	return b.Name()
}

type MalformedNameError struct {
	Name   string
	Reason string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed bundle name %q: %s", e.Name, e.Reason)
}

// ParseBundle takes a bundle directory name and splits it into its
// date, sequence and label.  The submitter and job names can't be
// told apart once either contains a hyphen, so they stay together in
// Label.
func ParseBundle(name string) (b *Bundle, err error) {
	if len(name) < len(dateLayout)+2 || name[len(dateLayout)] != '-' {
		return nil, &MalformedNameError{Name: name, Reason: "missing date prefix"}
	}
	date := name[:len(dateLayout)]
	_, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, &MalformedNameError{Name: name, Reason: "bad date"}
	}

	rest := name[len(dateLayout)+1:]
	seqtxt, label := rest, ""
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		seqtxt, label = rest[:i], rest[i+1:]
	}
	if !isDigits(seqtxt) {
		return nil, &MalformedNameError{Name: name, Reason: "bad sequence number"}
	}
	seq, err := strconv.Atoi(seqtxt)
	if err != nil {
		return nil, &MalformedNameError{Name: name, Reason: err.Error()}
	}

	return &Bundle{Date: date, Sequence: seq, Label: label}, nil
}

// IsMonth reports whether name looks like a bucket name.
func IsMonth(name string) bool {
	if len(name) != len(monthLayout) {
		return false
	}
	_, err := time.Parse(monthLayout, name)
	return err == nil
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
