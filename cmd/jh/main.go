package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/jobhistory/config"
	"github.com/t7a/jobhistory/history"
)

// EnvNow freezes the allocation clock, e.g. JH_NOW=2023-01-15T03:05.
const EnvNow = "JH_NOW"

const nowLayout = "2006-01-02T15:04"

func init() {
	var debug string
	debug = os.Getenv("DEBUG")
	if debug == "1" {
		log.SetLevel(log.DebugLevel)
	}
	logrus.SetReportCaller(true)
	formatter := &logrus.TextFormatter{
		CallerPrettyfier: caller(),
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	}
	formatter.TimestampFormat = "15:04:05.999999999"
	logrus.SetFormatter(formatter)
}

// caller returns string presentation of log caller which is formatted as
// `/path/to/file.go:line_number`. e.g. `/internal/app/api.go:25`
func caller() func(*runtime.Frame) (function string, file string) {
	return func(f *runtime.Frame) (function string, file string) {
		p, _ := os.Getwd()
		return "", fmt.Sprintf("%s:%d", strings.TrimPrefix(f.File, p), f.Line)
	}
}

type Opts struct {
	Alloc     bool
	Ls        bool
	Watch     bool
	Config    bool
	Get       bool
	Set       bool
	List      bool
	Relative  bool
	Submitter string `docopt:"<submitter>"`
	Jobname   string `docopt:"<jobname>"`
	Month     string `docopt:"<month>"`
	Key       string `docopt:"<key>"`
	Value     string `docopt:"<value>"`
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {

	usage := `jobhistory

Usage:
  jh alloc [-r] <submitter> <jobname>
  jh ls [-r] [<month>]
  jh watch
  jh config get <key>
  jh config set <key> <value>
  jh config list

Options:
  -h --help         Show this screen.
  --version         Show version.
  -r --relative     Print bundle paths relative to the history root.

Environment:
  JH_CONFIG     settings file (default ~/.jobhistory/config.json)
  JH_NOW        allocate as if it were this local time (2006-01-02T15:04)
  DEBUG=1       debug logging
`
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	o, err := parser.ParseArgs(usage, os.Args[1:], "0.1")
	if err != nil {
		return 22
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	switch true {
	case opts.Alloc:
		dir, err := alloc(opts.Submitter, opts.Jobname, opts.Relative)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(dir)
	case opts.Ls:
		paths, err := ls(opts.Month, opts.Relative)
		if err != nil {
			log.Error(err)
			return 42
		}
		for _, path := range paths {
			fmt.Println(path)
		}
	case opts.Watch:
		err := watch()
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Config && opts.Get:
		val, err := getSetting(opts.Key)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(val)
	case opts.Config && opts.Set:
		err := setSetting(opts.Key, opts.Value)
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Config && opts.List:
		lines, err := listSettings()
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(strings.Join(lines, "\n"))
	}
	return 0
}

func settings() (f *config.File, err error) {
	path, err := config.DefaultPath()
	if err != nil {
		return
	}
	return config.Load(path)
}

func allocator() (a *history.Allocator, err error) {
	f, err := settings()
	if err != nil {
		return
	}
	a = history.Allocator{Limit: history.DefaultPathLimit()}.New(f)
	now := os.Getenv(EnvNow)
	if now != "" {
		tm, err := time.ParseInLocation(nowLayout, now, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", EnvNow, err)
		}
		a.Now = func() time.Time { return tm }
	}
	return
}

func alloc(submitter, jobname string, relative bool) (dir string, err error) {
	a, err := allocator()
	if err != nil {
		return
	}
	dir, err = a.Allocate(submitter, jobname)
	if err != nil || !relative {
		return
	}
	return rel(a, dir)
}

func ls(month string, relative bool) (paths []string, err error) {
	a, err := allocator()
	if err != nil {
		return
	}
	bundles, err := a.List(month)
	if err != nil {
		return
	}
	for _, b := range bundles {
		path := b.Path
		if relative {
			path, err = rel(a, path)
			if err != nil {
				return nil, err
			}
		}
		paths = append(paths, path)
	}
	return
}

// rel returns path relative to the history root, with forward slashes.
func rel(a *history.Allocator, path string) (string, error) {
	root, err := a.Root()
	if err != nil {
		return "", err
	}
	path, err = filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(path), nil
}

// watch prints bundle paths as they are allocated, until killed.
func watch() (err error) {
	a, err := allocator()
	if err != nil {
		return
	}
	root, err := a.Root()
	if err != nil {
		return
	}
	w, err := history.NewWatcher(root)
	if err != nil {
		return
	}
	defer w.Close()
	log.Debugf("watching %s", root)
	for {
		select {
		case b, ok := <-w.Bundles:
			if !ok {
				return
			}
			fmt.Println(b.Path)
		case err = <-w.Errors:
			return
		}
	}
}

func getSetting(key string) (val string, err error) {
	f, err := settings()
	if err != nil {
		return
	}
	return f.GetSetting(key)
}

func setSetting(key, val string) (err error) {
	f, err := settings()
	if err != nil {
		return
	}
	return f.SetSetting(key, val)
}

func listSettings() (lines []string, err error) {
	f, err := settings()
	if err != nil {
		return
	}
	for _, key := range config.Keys() {
		val, err := f.GetSetting(key)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s = %s", key, val))
	}
	return
}
