package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/kylelemons/godebug/diff"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/kpumuk/sol-weaver/internal/config"
	"github.com/kpumuk/sol-weaver/internal/format"
	"github.com/kpumuk/sol-weaver/internal/syntax"
	"github.com/kpumuk/sol-weaver/internal/text"
)

const (
	exitOK       = 0
	exitCheck    = 1
	exitUnsafe   = 2
	exitUsage    = 2
	exitInternal = 3
)

const stdinName = "stdin.sol"

type cliOptions struct {
	write          bool
	check          bool
	diff           bool
	stdout         bool
	assumeFilename string
	configPath     string
	lineLength     int
	tabWidth       int
	jobs           int
	logLevel       string
	debugTokens    bool
	debugAST       bool
}

// usageError marks failures caused by the invocation itself.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

type cli struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	opts   cliOptions
	code   int
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	c := &cli{fs: afero.NewOsFs(), stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := c.command()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		writef(stderr, "solfmt: %v\n", err)
		var uerr *usageError
		if !errors.As(err, &uerr) {
			return exitInternal
		}
		writef(stderr, "\n%s", cmd.UsageString())
		return exitUsage
	}
	return c.code
}

func (c *cli) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solfmt [flags] [path ...]",
		Short: "Format Solidity source files",
		Long: "solfmt formats Solidity files in place, to stdout, or checks that they are formatted.\n" +
			"Directories are searched for .sol files. With no paths, or with -, input is read from stdin.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd.Context(), args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := cmd.Flags()
	f.BoolVarP(&c.opts.write, "write", "w", false, "write result in-place")
	f.BoolVar(&c.opts.check, "check", false, "exit non-zero if formatting changes are needed")
	f.BoolVar(&c.opts.diff, "diff", false, "with --check, print the changes that would be made")
	f.BoolVar(&c.opts.stdout, "stdout", false, "write formatted output to stdout")
	f.StringVar(&c.opts.assumeFilename, "assume-filename", "", "filename used for stdin configuration lookup and diagnostics")
	f.StringVar(&c.opts.configPath, "config", "", "path to foundry.toml (default: nearest one to each file)")
	f.IntVar(&c.opts.lineLength, "line-length", 0, "maximum line length (overrides configuration)")
	f.IntVar(&c.opts.tabWidth, "tab-width", 0, "indentation width (overrides configuration)")
	f.IntVar(&c.opts.jobs, "jobs", runtime.GOMAXPROCS(0), "number of files formatted concurrently")
	f.StringVar(&c.opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	f.BoolVar(&c.opts.debugTokens, "debug-tokens", false, "dump lexer tokens")
	f.BoolVar(&c.opts.debugAST, "debug-ast", false, "dump the syntax tree")
	return cmd
}

func (c *cli) validate(args []string) error {
	o := c.opts
	stdin := readsStdin(args)
	switch {
	case o.check && o.write:
		return errors.New("--check and --write may not be used together")
	case o.stdout && o.write:
		return errors.New("--stdout and --write may not be used together")
	case o.diff && !o.check:
		return errors.New("--diff requires --check")
	case stdin && o.write:
		return errors.New("--write may not be used with stdin")
	case !stdin && len(args) > 1 && (o.debugTokens || o.debugAST):
		return errors.New("debug dumps require a single input")
	case o.jobs < 1:
		return errors.Errorf("invalid --jobs %d", o.jobs)
	case o.lineLength < 0:
		return errors.Errorf("invalid --line-length %d", o.lineLength)
	case o.tabWidth < 0:
		return errors.Errorf("invalid --tab-width %d", o.tabWidth)
	}
	return nil
}

func readsStdin(args []string) bool {
	return len(args) == 0 || (len(args) == 1 && args[0] == "-")
}

func (c *cli) execute(ctx context.Context, args []string) error {
	if err := c.validate(args); err != nil {
		return &usageError{err: err}
	}
	level, err := zerolog.ParseLevel(c.opts.logLevel)
	if err != nil {
		return &usageError{err: errors.Errorf("invalid --log-level: %w", err)}
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: c.stderr, NoColor: true}).
		Level(level).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	jobs, err := c.collect(ctx, args)
	if err != nil {
		return err
	}
	results := c.formatAll(ctx, jobs)
	c.code = c.report(results)
	return nil
}

// job is one input with its resolved configuration.
type job struct {
	path  string
	stdin bool
	src   []byte
	opts  format.Options
}

type result struct {
	job
	tree *syntax.Tree
	res  format.Result
	err  error
}

func (c *cli) collect(ctx context.Context, args []string) ([]job, error) {
	if readsStdin(args) {
		src, err := io.ReadAll(c.stdin)
		if err != nil {
			return nil, errors.Errorf("read stdin: %w", err)
		}
		name := c.opts.assumeFilename
		if name == "" {
			name = stdinName
		}
		cfg, err := c.resolve(name)
		if err != nil {
			return nil, err
		}
		return []job{{path: name, stdin: true, src: src, opts: cfg.Options}}, nil
	}

	var jobs []job
	for _, arg := range args {
		info, err := c.fs.Stat(arg)
		if err != nil {
			return nil, &usageError{err: errors.Errorf("stat %s: %w", arg, err)}
		}
		if !info.IsDir() {
			j, err := c.fileJob(arg)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, j)
			continue
		}
		found, err := c.walk(ctx, arg)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, found...)
	}
	return jobs, nil
}

func (c *cli) walk(ctx context.Context, root string) ([]job, error) {
	log := zerolog.Ctx(ctx)
	var jobs []job
	err := afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".sol" {
			return nil
		}
		cfg, err := c.resolve(path)
		if err != nil {
			return err
		}
		ignored, err := cfg.Ignored(absPath(path))
		if err != nil {
			return err
		}
		if ignored {
			log.Debug().Str("path", path).Msg("ignored")
			return nil
		}
		j, err := c.fileJobWithConfig(path, cfg)
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walk %s: %w", root, err)
	}
	return jobs, nil
}

func (c *cli) fileJob(path string) (job, error) {
	cfg, err := c.resolve(path)
	if err != nil {
		return job{}, err
	}
	return c.fileJobWithConfig(path, cfg)
}

func (c *cli) fileJobWithConfig(path string, cfg *config.Config) (job, error) {
	src, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return job{}, errors.Errorf("read %s: %w", path, err)
	}
	return job{path: path, src: src, opts: cfg.Options}, nil
}

// resolve loads the configuration for path and applies the flag overrides.
func (c *cli) resolve(path string) (*config.Config, error) {
	cfg, err := config.Resolve(c.fs, absPath(path), c.opts.configPath)
	if err != nil {
		return nil, &usageError{err: err}
	}
	if c.opts.lineLength > 0 {
		cfg.Options.LineLength = c.opts.lineLength
	}
	if c.opts.tabWidth > 0 {
		cfg.Options.TabWidth = c.opts.tabWidth
	}
	return cfg, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// formatAll formats every job on its own formatter, at most --jobs at a time.
// Per-file failures are kept on the result.
func (c *cli) formatAll(ctx context.Context, jobs []job) []result {
	results := make([]result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.jobs)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			results[i] = formatJob(gctx, j)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func formatJob(ctx context.Context, j job) result {
	log := zerolog.Ctx(ctx)
	started := time.Now()
	r := result{job: j}
	r.tree, r.err = syntax.Parse(ctx, j.src, syntax.ParseOptions{URI: j.path})
	if r.err != nil {
		r.err = errors.Errorf("parse %s: %w", j.path, r.err)
		return r
	}
	r.res, r.err = format.Document(ctx, r.tree, j.opts)
	log.Debug().
		Str("path", j.path).
		Bool("changed", r.res.Changed).
		Dur("elapsed", time.Since(started)).
		Err(r.err).
		Msg("formatted")
	return r
}

func (c *cli) report(results []result) int {
	code := exitOK
	var errs error
	for _, r := range results {
		if c.opts.debugTokens && r.tree != nil {
			dumpTokens(c.stdout, r.tree)
		}
		if c.opts.debugAST && r.tree != nil {
			dumpAST(c.stdout, r.tree)
		}
		if r.err != nil {
			writeDiagnostics(c.stderr, r.tree, r.res.Diagnostics)
			errs = multierr.Append(errs, r.err)
			code = max(code, failureCode(r.err))
			continue
		}
		fileCode, err := c.emit(r)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		code = max(code, fileCode)
	}
	for _, err := range multierr.Errors(errs) {
		writef(c.stderr, "solfmt: %v\n", err)
	}
	return code
}

func failureCode(err error) int {
	if format.IsErrUnsafeToFormat(err) {
		return exitUnsafe
	}
	return exitInternal
}

// emit delivers a successful result according to the output mode.
func (c *cli) emit(r result) (int, error) {
	switch {
	case c.opts.check:
		if !r.res.Changed {
			return exitOK, nil
		}
		if c.opts.diff {
			writeDiff(c.stdout, r.path, r.src, r.res.Output)
		} else {
			writeln(c.stdout, r.path)
		}
		return exitCheck, nil
	case c.opts.write:
		if !r.res.Changed {
			return exitOK, nil
		}
		if err := writeOutputFile(c.fs, r.path, r.res.Output); err != nil {
			return exitInternal, errors.Errorf("write %s: %w", r.path, err)
		}
		return exitOK, nil
	default:
		if _, err := c.stdout.Write(r.res.Output); err != nil {
			return exitInternal, errors.WithStack(&format.IOError{Err: err})
		}
		return exitOK, nil
	}
}

func writeDiff(w io.Writer, path string, before, after []byte) {
	writef(w, "--- %s\n+++ %s\n", path, path)
	writeString(w, diff.Diff(string(before), string(after)))
	writeln(w)
}

func writeDiagnostics(w io.Writer, tree *syntax.Tree, diags []syntax.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	var li *text.LineIndex
	uri := ""
	if tree != nil {
		li = tree.LineIndex
		uri = tree.URI
	}
	for _, d := range diags {
		loc := d.Span.String()
		if li != nil && d.Span.Start.IsValid() {
			if p, err := li.OffsetToPoint(d.Span.Start); err == nil {
				loc = fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
			}
		}
		prefix := "solfmt"
		if uri != "" {
			prefix = uri
		}
		writef(w, "%s:%s: %s: %s (%s/%s)\n", prefix, loc, d.Severity, d.Message, d.Source, d.Code)
	}
}

func dumpTokens(w io.Writer, tree *syntax.Tree) {
	writeln(w, "TOKENS")
	for i, tok := range tree.Tokens {
		writef(w, "[%d] kind=%s span=%s text=%q", i, tok.Kind, tok.Span, tok.Bytes(tree.Source))
		if len(tok.Leading) > 0 {
			writeString(w, " leading=[")
			for j, tr := range tok.Leading {
				if j > 0 {
					writeString(w, ", ")
				}
				writef(w, "%s@%s:%q", tr.Kind, tr.Span, tr.Bytes(tree.Source))
			}
			writeString(w, "]")
		}
		writeln(w)
	}
}

func dumpAST(w io.Writer, tree *syntax.Tree) {
	writeln(w, "AST")
	_, _ = pretty.Fprintf(w, "%# v\n", tree.Unit)
}

func writeOutputFile(fs afero.Fs, path string, data []byte) error {
	mode := os.FileMode(0o600)
	if st, err := fs.Stat(path); err == nil {
		mode = st.Mode().Perm()
		if mode == 0 {
			mode = 0o600
		}
	}
	return afero.WriteFile(fs, path, data, mode)
}

func writef(w io.Writer, format string, args ...any) {
	//nolint:gosec // Terminal/debug output helper; format strings are internal callsite constants.
	_, _ = io.WriteString(w, fmt.Sprintf(format, args...))
}

func writeln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

func writeString(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
}
