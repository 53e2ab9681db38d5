package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"lang417/internal/history"
	"lang417/internal/interpreter"
	"lang417/internal/log"
	"lang417/internal/parser"
	"lang417/internal/repl"
	"lang417/internal/util"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	// Version is set at build time with -ldflags "-X main.Version=...".
	Version   = "1.7.0"
	BuildDate = "unknown"
	Commit    = "unknown"
)

// flags holds the raw command line values. Only the flags that were actually
// given override the configuration file.
type flags struct {
	help       bool
	version    bool
	trace      bool
	dynamic    bool
	noPrint    bool
	maxDepth   int
	configFile string
	historyDSN string
	noHistory  bool
	debugAST   bool
	astFormat  string
	repl       bool
	logLevel   string
	logFile    string
}

func newFlagSet(f *flags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lang417", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, "Usage: lang417 [options] [file]  (try -h)") }

	fs.BoolVar(&f.help, "help", false, "Display help information and exit")
	fs.BoolVar(&f.help, "h", false, "Display help information and exit")
	fs.BoolVar(&f.version, "version", false, "Display version information and exit")
	fs.BoolVar(&f.version, "v", false, "Display version information and exit")
	// evaluator config
	fs.BoolVar(&f.trace, "t", false, "Trace every evaluation step")
	fs.BoolVar(&f.dynamic, "d", false, "Use dynamic scoping (default lexical)")
	fs.BoolVar(&f.noPrint, "np", false, "Do not print the final value")
	fs.IntVar(&f.maxDepth, "max-depth", util.DefaultMaxDepth, "Maximum evaluation depth before giving up")
	fs.StringVar(&f.configFile, "config", "", "Configuration file (.yaml, .yml or .toml)")
	// history config
	fs.StringVar(&f.historyDSN, "history", "", "Run history DSN (sqlite3://, mysql://, postgres:// or a file path)")
	fs.BoolVar(&f.noHistory, "no-history", false, "Do not record runs")
	// parser config
	fs.BoolVar(&f.debugAST, "debug-ast", false, "Print the desugared AST and exit")
	fs.StringVar(&f.astFormat, "ast-format", "json", "AST format for -debug-ast: json or text")
	fs.BoolVar(&f.repl, "repl", false, "Start an interactive session")
	// log config
	fs.StringVar(&f.logLevel, "log-level", "none", "Log level: trace, debug, info, warn, error, none")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	return fs
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f flags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout)
			return exitOK
		}
		return exitUsage
	}

	if f.version {
		printVersion(stdout)
		return exitOK
	}
	if f.help {
		printHelp(stdout)
		return exitOK
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Invalid argument %q\n", fs.Arg(1))
		fs.Usage()
		return exitUsage
	}

	config, err := buildConfiguration(fs, f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logCloser := log.Setup(config.LogLevel, config.LogFile)
	defer logCloser.Close()

	if config.DebugJsonAST || config.DebugTxtAST {
		source, err := readSource(fs.Arg(0), stdin)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		return debugAST(source, config, stdout, stderr)
	}

	var store *history.Store
	if config.HistoryEnabled {
		store = openHistory(ctx, config)
		if store != nil {
			defer store.Close()
		}
	}

	opts := interpreter.Options{
		Trace:          config.Trace,
		LexicalScoping: config.LexicalScoping(),
		MaxDepth:       config.MaxDepth,
		Stdout:         stdout,
		Stdin:          stdin,
	}
	if store != nil {
		opts.Recorder = store
	}
	in := interpreter.New(opts)

	if f.repl || (fs.NArg() == 0 && isTerminal(stdin)) {
		var lister repl.Lister
		if store != nil {
			lister = store
		}
		r := repl.New(in.NewSession(), lister, stdout, stderr)
		r.SetNoPrint(config.NoPrint)
		if err := r.Start(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		return exitOK
	}

	source, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	slog.Debug("evaluating program",
		slog.String("file", fs.Arg(0)),
		slog.Bool("lexical-scoping", config.LexicalScoping()),
		slog.Bool("trace", config.Trace),
	)
	val, err := in.Run(ctx, source)
	if err != nil {
		fmt.Fprintln(stderr, interpreter.Report(source, err))
		return exitError
	}
	if !config.NoPrint {
		fmt.Fprintln(stdout, val.Inspect())
	}
	return exitOK
}

func buildConfiguration(fs *flag.FlagSet, f flags) (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if f.configFile != "" {
		if err := util.LoadFile(f.configFile, &config); err != nil {
			return config, err
		}
	}

	var bad error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "t":
			config.Trace = f.trace
		case "d":
			config.DynamicScoping = f.dynamic
		case "np":
			config.NoPrint = f.noPrint
		case "max-depth":
			if f.maxDepth <= 0 {
				bad = fmt.Errorf("-max-depth must be positive, got %d", f.maxDepth)
			}
			config.MaxDepth = f.maxDepth
		case "history":
			config.HistoryDSN = f.historyDSN
		case "no-history":
			config.HistoryEnabled = !f.noHistory
		case "log-level":
			config.LogLevel = f.logLevel
		case "log-file":
			config.LogFile = f.logFile
		}
	})
	if bad != nil {
		return config, bad
	}

	if f.debugAST {
		switch strings.ToLower(f.astFormat) {
		case "json":
			config.DebugJsonAST = true
		case "text":
			config.DebugTxtAST = true
		default:
			return config, fmt.Errorf("-ast-format must be json or text, got %q", f.astFormat)
		}
	}
	return config, nil
}

func openHistory(ctx context.Context, config util.Configuration) *history.Store {
	dsn := config.HistoryDSN
	if dsn == "" {
		dsn = history.DefaultDSN()
	}
	store, err := history.Open(ctx, dsn)
	if err != nil {
		// history is best effort; the program still runs
		slog.Warn("history disabled", slog.Any("error", err))
		return nil
	}
	return store
}

func readSource(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("Failure while reading program input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("No input detected.")
	}
	return string(data), nil
}

func debugAST(source string, config util.Configuration, stdout, stderr io.Writer) int {
	exp, err := interpreter.Compile(source)
	if err != nil {
		fmt.Fprintln(stderr, interpreter.Report(source, err))
		return exitError
	}
	if config.DebugTxtAST {
		fmt.Fprintln(stdout, parser.RenderASTAsText(exp, 0))
		return exitOK
	}
	out, err := parser.RenderASTAsJSON(exp)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	fmt.Fprintln(stdout, out)
	return exitOK
}

func isTerminal(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		fi, err := f.Stat()
		return err == nil && (fi.Mode()&os.ModeCharDevice) != 0
	}
	return false
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "lang417 version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: lang417 [options] [file]

  The program is read from file, or from stdin when no file is given.

Options:
  -h, -help            Display this help information and exit.
  -v, -version         Display version information and exit.
  -t                   Enable tracing during evaluation.
  -d                   Enable dynamic scoping (default lexical).
  -np                  Do not print the final value.
  -max-depth <n>       Evaluation depth limit. Default is %d.
  -config <file>       Load settings from a .yaml, .yml or .toml file. Flags win.
  -history <dsn>       Where runs are recorded: sqlite3://<path>, mysql://<dsn>,
                       postgres://... or a file path. Default is ~/.lang417/history.db.
  -no-history          Do not record runs.
  -debug-ast           Print the desugared AST and exit.
  -ast-format <fmt>    json (default) or text.
  -repl                Start an interactive session.
  -log-level <level>   Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>     Specify a log file to write logs. Default is stderr.

Examples:
  lang417 example.417           Run a program
  lang417 -t < example.417      Run a program from stdin with tracing
  lang417 -d -np example.417    Run with dynamic scoping and no final print
  lang417 -repl                 Start the REPL

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.DefaultMaxDepth, Version, BuildDate, Commit)
}
