// Package config keeps jobhistory settings in a small JSON file of
// dotted keys, with built-in defaults for anything not set there.
package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

const (
	// JobHistoryDirKey is the root directory for job bundle history.
	JobHistoryDirKey = "settings.job_history_dir"

	// EnvConfigFile overrides the location of the settings file.
	EnvConfigFile = "JH_CONFIG"
)

// Defaults holds the value of every known key.  Keys not listed here
// can't be set.
var Defaults = map[string]string{
	JobHistoryDirKey: filepath.Join("~", ".jobhistory", "history"),
}

type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown setting: %s", e.Key)
}

// File is a settings file.  Settings holds only the values that were
// explicitly set; defaults are filled in by GetSetting.
type File struct {
	Path     string
	Settings map[string]string
}

// DefaultPath returns $JH_CONFIG, or ~/.jobhistory/config.json.
func DefaultPath() (path string, err error) {
	path = os.Getenv(EnvConfigFile)
	if path == "" {
		path = filepath.Join("~", ".jobhistory", "config.json")
	}
	return ExpandUser(path)
}

// Load reads the settings file at path.  A file that doesn't exist
// yet holds no settings.
func Load(path string) (f *File, err error) {
	defer Return(&err)

	path, err = ExpandUser(path)
	Ck(err)
	f = &File{Path: path, Settings: make(map[string]string)}

	buf, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debugf("no settings file at %s, using defaults", path)
		return f, nil
	}
	Ck(err)

	err = json.Unmarshal(buf, &f.Settings)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	// a file holding just null
	if f.Settings == nil {
		f.Settings = make(map[string]string)
	}
	return
}

// GetSetting returns the value of key, or its default.
func (f *File) GetSetting(key string) (val string, err error) {
	def, ok := Defaults[key]
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}
	val, ok = f.Settings[key]
	if !ok {
		val = def
	}
	return
}

// SetSetting sets key to val and saves the file.
func (f *File) SetSetting(key, val string) (err error) {
	_, ok := Defaults[key]
	if !ok {
		return &UnknownKeyError{Key: key}
	}
	f.Settings[key] = val
	return f.Save()
}

// Save writes the settings to f.Path.
func (f *File) Save() (err error) {
	defer Return(&err)
	Assert(f.Path != "", "settings file has no path")

	buf, err := json.MarshalIndent(f.Settings, "", "  ")
	Ck(err)
	buf = append(buf, '\n')

	err = os.MkdirAll(filepath.Dir(f.Path), 0755)
	Ck(err)
	err = writeFile(f.Path, buf, 0644)
	if err != nil {
		return errors.Wrapf(err, "saving %s", f.Path)
	}
	return
}

// Keys returns every known key, sorted.
func Keys() (keys []string) {
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

// ExpandUser replaces a leading "~" in path with the user's home
// directory.  Other paths, including "~user/...", come back unchanged.
func ExpandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "expanding ~")
	}
	return filepath.Join(home, path[1:]), nil
}
