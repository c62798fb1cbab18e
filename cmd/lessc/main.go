package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/lessgo/pkg/less"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("lessc", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "Path to a YAML config file of defaults")
		minify      = flags.Bool("minify", false, "Minify output")
		minifyShort = flags.Bool("m", false, "Shorthand for --minify")
		output      = flags.String("output", "", "Write CSS to this path instead of stdout")
		outputShort = flags.String("o", "", "Shorthand for --output")
		watch       = flags.Bool("watch", false, "Recompile on source change")
		watchShort  = flags.Bool("w", false, "Shorthand for --watch")
		metricsAddr = flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		repl        = flags.Bool("repl", false, "Start an interactive REPL instead of compiling a file")
		showVersion = flags.Bool("version", false, "Show version")
		vShort      = flags.Bool("V", false, "Shorthand for --version")
		showHelp    = flags.Bool("help", false, "Show help")
		hShort      = flags.Bool("h", false, "Shorthand for --help")
	)
	var includePaths stringSliceFlag
	flags.Var(&includePaths, "include-path", "Additional import search directory (repeatable)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp || *hShort {
		printUsage(stdout)
		return nil
	}
	if *showVersion || *vShort {
		fmt.Fprintf(stdout, "lessc version %s\n", Version)
		return nil
	}

	cfg := fileConfig{}
	if *configPath != "" {
		loaded, err := loadFileConfig(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	opts := less.Options{
		Minify:       *minify || *minifyShort || cfg.Minify,
		IncludePaths: append(append([]string{}, cfg.IncludePaths...), includePaths...),
	}
	outPath := firstNonEmpty(*output, *outputShort, cfg.Output)
	addr := firstNonEmpty(*metricsAddr, cfg.MetricsAddr)

	metrics := registerMetrics()
	if addr != "" {
		go func() {
			if err := serveMetrics(addr); err != nil {
				fmt.Fprintf(stderr, "metrics server: %v\n", err)
			}
		}()
	}

	if *repl {
		return runREPL(stdout, Version)
	}

	remaining := flags.Args()
	if len(remaining) == 0 {
		printUsage(stdout)
		return fmt.Errorf("lessc: no input file")
	}
	entry := remaining[0]

	compileOnce := func() error {
		css, err := less.CompileFile(entry, opts)
		if err != nil {
			return err
		}
		return writeOutput(stdout, css, outPath)
	}

	doWatch := *watch || *watchShort
	if doWatch {
		watchCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return watchAndCompile(watchCtx, entry, stdout, stderr, compileOnce, metrics)
	}

	if err := compileOnce(); err != nil {
		metrics.errors.WithLabelValues("compile").Inc()
		return err
	}
	metrics.compiles.WithLabelValues("once").Inc()
	return nil
}

func writeOutput(stdout io.Writer, css, path string) error {
	if path == "" {
		fmt.Fprintln(stdout, css)
		return nil
	}
	return os.WriteFile(path, []byte(css+"\n"), 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringSliceFlag collects repeated -include-path flags into a slice.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return fmt.Sprint(*s) }

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, `lessc - LESS to CSS compiler version %s

Usage:
  lessc [options] <file.less>
  lessc --repl

Options:
  -o, --output <path>        Write CSS to this path instead of stdout
  -m, --minify                Minify output
  --include-path <dir>        Additional import search directory (repeatable)
  -w, --watch                  Recompile on source change
  --config <path>             YAML file of defaults (minify, include_paths, output, metrics_addr)
  --metrics-addr <addr>        Serve Prometheus metrics (e.g. :9090)
  --repl                       Start an interactive REPL
  -h, --help                   Show this help message
  -V, --version                 Show version information
`, Version)
}
