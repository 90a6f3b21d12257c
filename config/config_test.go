package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stevegt/readercomp"
)

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func withHome(t *testing.T) (home string) {
	home = t.TempDir()
	oldhome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldhome) })
	os.Setenv("HOME", home)
	return
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, len(f.Settings) == 0, "settings: %v", f.Settings)
	val, err := f.GetSetting(JobHistoryDirKey)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, val == Defaults[JobHistoryDirKey], "got %q", val)
}

func TestSetSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	err = f.SetSetting(JobHistoryDirKey, "/tmp/history")
	if err != nil {
		t.Fatal(err)
	}

	fh, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	expect := bytes.NewBufferString("{\n  \"settings.job_history_dir\": \"/tmp/history\"\n}\n")
	ok, err := readercomp.Equal(expect, fh, 4096)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, ok, "unexpected content in %s", path)

	g, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	val, err := g.GetSetting(JobHistoryDirKey)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, val == "/tmp/history", "got %q", val)
}

func TestUnknownKey(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.GetSetting("settings.nope")
	_, ok := err.(*UnknownKeyError)
	tassert(t, ok, "expected *UnknownKeyError, got %#v", err)
	err = f.SetSetting("settings.nope", "x")
	_, ok = err.(*UnknownKeyError)
	tassert(t, ok, "expected *UnknownKeyError, got %#v", err)
	_, err = os.Stat(f.Path)
	tassert(t, os.IsNotExist(err), "file written for unknown key")
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte("not json"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Load(path)
	tassert(t, err != nil, "expected error")
}

func TestLoadNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte("null\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	val, err := f.GetSetting(JobHistoryDirKey)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, val == Defaults[JobHistoryDirKey], "got %q", val)
	err = f.SetSetting(JobHistoryDirKey, "/tmp/history")
	if err != nil {
		t.Fatal(err)
	}
	f, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	tassert(t, f.Settings[JobHistoryDirKey] == "/tmp/history", "settings: %v", f.Settings)
}

func TestExpandUser(t *testing.T) {
	home := withHome(t)
	cases := map[string]string{
		"~":             home,
		"~/history":     filepath.Join(home, "history"),
		"/abs/path":     "/abs/path",
		"rel/path":      "rel/path",
		"~other/path":   "~other/path",
		"dir/~/history": "dir/~/history",
	}
	for in, expect := range cases {
		got, err := ExpandUser(in)
		if err != nil {
			t.Fatal(err)
		}
		tassert(t, got == expect, "ExpandUser(%q): expected %q got %q", in, expect, got)
	}
}

func TestDefaultPath(t *testing.T) {
	home := withHome(t)
	old := os.Getenv(EnvConfigFile)
	t.Cleanup(func() { os.Setenv(EnvConfigFile, old) })

	os.Setenv(EnvConfigFile, "")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	expect := filepath.Join(home, ".jobhistory", "config.json")
	tassert(t, got == expect, "expected %q got %q", expect, got)

	os.Setenv(EnvConfigFile, "~/jh.json")
	got, err = DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	expect = filepath.Join(home, "jh.json")
	tassert(t, got == expect, "expected %q got %q", expect, got)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	tassert(t, len(keys) == len(Defaults), "keys: %v", keys)
	tassert(t, keys[0] == JobHistoryDirKey, "keys: %v", keys)
}
