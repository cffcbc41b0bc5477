package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/shuakami/pollwatcher"
	"github.com/shuakami/pollwatcher/internal/action"
	"github.com/shuakami/pollwatcher/internal/config"
	"github.com/shuakami/pollwatcher/internal/logging"
	"github.com/shuakami/pollwatcher/internal/report"
)

const optstring = "c:w:r:ni:e:t:qa:p:m:l:h"

func usage(msg string) {
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	fmt.Fprint(os.Stderr, `Usage: pollwatcher [-c config.yaml] [-w dir] [-r file] [-n] [-i ext | -e ext]
                   [-t seconds] [-q] [-a args] [-p prefix] [-m addr] [-l level]

Watch a directory for changes and optionally run a file when a change is detected.

Options:

  -c <file>     YAML configuration file, reloaded when it changes.
  -w <dir>      Directory to watch. Defaults to the current directory.
  -r <file>     File to run when a change is detected. Defaults to none.
  -n            Check directories within the watched directory.
  -i <ext>      Only check these extensions. Repeatable or comma separated.
                "" selects directories in nested mode.
  -e <ext>      Do not check these extensions. Cannot be used with -i.
  -t <seconds>  Time between checks. Defaults to 0.5.
  -q            Suppress change notifications.
  -a <args>     Arguments appended to the run file call.
  -p <prefix>   Prefix used to invoke the run file. Defaults to "py".
  -m <addr>     Serve Prometheus metrics on addr (e.g. :9090).
  -l <level>    Log level: debug, info, warn, error.
  -h            Show this help message and exit.
`)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// options 命令行参数，只有实际传入的参数才会覆盖配置文件
type options struct {
	configPath string
	help       bool
	overrides  []func(*config.File)
}

func (o *options) apply(f *config.File) {
	for _, set := range o.overrides {
		set(f)
	}
}

func parseArgs(argv []string) (*options, error) {
	opts, optind, err := getopt.Getopts(argv, optstring)
	if err != nil {
		return nil, err
	}
	if optind < len(argv) {
		return nil, fmt.Errorf("unexpected argument %q", argv[optind])
	}

	o := &options{}
	var include, exclude []string
	for _, opt := range opts {
		value := opt.Value
		switch opt.Option {
		case 'c':
			o.configPath = value
		case 'w':
			o.overrides = append(o.overrides, func(f *config.File) { f.Root = value })
		case 'r':
			o.overrides = append(o.overrides, func(f *config.File) { f.Action = value })
		case 'n':
			o.overrides = append(o.overrides, func(f *config.File) { f.Nested = true })
		case 'i':
			include = append(include, splitExtensions(value)...)
		case 'e':
			exclude = append(exclude, splitExtensions(value)...)
		case 't':
			secs, err := strconv.ParseFloat(value, 64)
			if err != nil || secs <= 0 {
				return nil, fmt.Errorf("invalid interval %q: must be a positive number of seconds", value)
			}
			o.overrides = append(o.overrides, func(f *config.File) { f.Interval = secs })
		case 'q':
			o.overrides = append(o.overrides, func(f *config.File) { f.Report = false })
		case 'a':
			o.overrides = append(o.overrides, func(f *config.File) { f.Args = value })
		case 'p':
			o.overrides = append(o.overrides, func(f *config.File) { f.Prefix = value })
		case 'm':
			o.overrides = append(o.overrides, func(f *config.File) { f.Metrics.Listen = value })
		case 'l':
			o.overrides = append(o.overrides, func(f *config.File) { f.Logger.Level = value })
		case 'h':
			o.help = true
		}
	}
	if include != nil {
		o.overrides = append(o.overrides, func(f *config.File) { f.Include = include })
	}
	if exclude != nil {
		o.overrides = append(o.overrides, func(f *config.File) { f.Exclude = exclude })
	}
	return o, nil
}

// splitExtensions 按逗号拆分，保留空串("" 代表目录)
func splitExtensions(value string) []string {
	return strings.Split(value, ",")
}

func loadConfig(o *options) (*config.File, error) {
	file := config.Default()
	if o.configPath != "" {
		var err error
		file, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	o.apply(file)
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return file, nil
}

func serveMetrics(addr string, m *pollwatcher.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", addr)
}

func main() {
	o, err := parseArgs(os.Args)
	if err != nil {
		usage("error: " + err.Error())
		os.Exit(2)
	}
	if o.help {
		usage("")
		return
	}

	file, err := loadConfig(o)
	if err != nil {
		die("%v", err)
	}

	logger := logging.Setup(logging.Options{
		Level:  file.Logger.Level,
		Format: file.Logger.Format,
	})
	slog.SetDefault(logger)

	cfg, err := file.Watcher()
	if err != nil {
		die("%v", err)
	}

	metrics := pollwatcher.NewMetrics()
	if file.Metrics.Listen != "" {
		serveMetrics(file.Metrics.Listen, metrics)
	}

	watcherOpts := []pollwatcher.Option{
		pollwatcher.WithReporter(report.NewPrinter(os.Stdout)),
		pollwatcher.WithAction(action.NewRunner()),
		pollwatcher.WithLogger(logger),
		pollwatcher.WithMetrics(metrics),
	}
	if o.configPath != "" {
		reloader, err := config.NewReloader(o.configPath, o.apply)
		if err != nil {
			die("%v", err)
		}
		defer reloader.Close()
		watcherOpts = append(watcherOpts, pollwatcher.WithConfigSource(reloader))
	}

	w, err := pollwatcher.NewWatcher(cfg, watcherOpts...)
	if err != nil {
		die("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = w.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		stop()
		die("%v", err)
	}
}
