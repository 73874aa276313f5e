package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/render"
	"github.com/tartampluch/go-lunar/internal/server"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls run before
// os.Exit terminates the process.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// options collects the command-line values layered over the environment settings.
type options struct {
	settings config.Settings

	year     int
	output   string
	moon     bool
	image    string
	succinct bool
	ics      string
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return config.ExitCodeError
	}

	// Errors raised while parsing the command line are logged here too;
	// the pre-run hook reconfigures the level once --debug is known.
	setupLogging(stderr, settings.Debug)

	root := newRootCmd(&options{settings: settings}, stdout, stderr)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return config.ExitCodeSuccess
	}
	if cmd == nil {
		cmd = root
	}

	var usageErr usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, cmd.UsageString())
		return config.ExitCodeError
	}

	slog.Error(config.ErrAppFailed,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyError, err,
	)
	return config.ExitCodeError
}

// usageError marks a failure caused by the command line itself.
type usageError struct {
	error
}

func (e usageError) Unwrap() error { return e.error }

// maxOneYear accepts at most the year as positional argument.
func maxOneYear(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

// newRootCmd builds the command tree. Flag defaults come from the
// environment settings held by opts.
func newRootCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRootUse,
		Short:         config.CmdRootShort,
		Args:          maxOneYear,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveYear(cmd, args, opts); err != nil {
				return usageError{err}
			}
			setupLogging(stderr, opts.settings.Debug)
			logStartupInfo()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.SetVersionTemplate(versionString())

	s := &opts.settings
	pf := root.PersistentFlags()
	pf.IntVarP(&opts.year, config.FlagYear, config.FlagShortYear, 0, config.FlagDescYear)
	pf.BoolVarP(&opts.moon, config.FlagMoon, config.FlagShortMoon, false, config.FlagDescMoon)
	pf.StringVarP(&opts.image, config.FlagImage, config.FlagShortImage, "", config.FlagDescImage)
	pf.BoolVarP(&opts.succinct, config.FlagSuccinct, config.FlagShortSuccinct, false, config.FlagDescSuccinct)
	pf.StringVar(&s.Language, config.FlagLang, s.Language, config.FlagDescLang)
	pf.StringVar(&s.Template, config.FlagTemplate, s.Template, config.FlagDescTemplate)
	pf.StringVar(&s.Fixture, config.FlagFixture, s.Fixture, config.FlagDescFixture)
	pf.StringVar(&s.EphemerisURL, config.FlagEphemerisURL, s.EphemerisURL, config.FlagDescEphemerisURL)
	pf.IntVar(&s.Workers, config.FlagWorkers, s.Workers, config.FlagDescWorkers)
	pf.BoolVar(&s.Debug, config.FlagDebug, s.Debug, config.FlagDescDebug)

	root.Flags().StringVarP(&opts.output, config.FlagOutput, config.FlagShortOutput, "", config.FlagDescOutput)
	root.Flags().StringVar(&opts.ics, config.FlagICS, "", config.FlagDescICS)
	root.Flags().Lookup(config.FlagICS).NoOptDefVal = config.FormatICSFile
	root.Flags().BoolP(config.FlagVersion, config.FlagShortVersion, false, config.FlagDescVersion)

	serve := &cobra.Command{
		Use:   config.CmdServeUse,
		Short: config.CmdServeShort,
		Args:  maxOneYear,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&s.Port, config.FlagPort, s.Port, config.FlagDescPort)
	root.AddCommand(serve)

	return root
}

// resolveYear takes the year from the positional argument or the --year flag.
// It fails before any work is done.
func resolveYear(cmd *cobra.Command, args []string, opts *options) error {
	switch {
	case len(args) == 1:
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%s: %q", config.ErrYearNotInteger, args[0])
		}
		opts.year = year
	case !cmd.Flags().Changed(config.FlagYear):
		return fmt.Errorf("%s; "+config.MsgUsageYear, config.ErrYearRequired, config.AppCommand)
	}
	if opts.settings.Workers < 1 {
		return fmt.Errorf("%s: %d", config.ErrWorkers, opts.settings.Workers)
	}
	return engine.ValidateYear(opts.year)
}

// selectGateway picks the ephemeris source: a fixture file, then a remote
// service, then the built-in computation.
func selectGateway(s config.Settings) (ephemeris.Gateway, error) {
	switch {
	case s.Fixture != "":
		return ephemeris.LoadFixture(s.Fixture)
	case s.EphemerisURL != "":
		return ephemeris.NewHTTP(s.EphemerisURL)
	default:
		return ephemeris.NewMeeus(), nil
	}
}

func (o *options) renderOptions() render.Options {
	ro := render.Options{Succinct: o.succinct, Template: o.settings.Template}
	switch {
	case o.image != "":
		ro.MoonImage = o.image
	case o.moon:
		ro.MoonImage = o.settings.MoonImage
	}
	return ro
}

// icsPath returns the iCalendar output file, if any. A bare --ics selects
// the default name of the year.
func (o *options) icsPath() string {
	if o.ics == config.FormatICSFile {
		return fmt.Sprintf(config.FormatICSFile, o.year)
	}
	return o.ics
}

// versionString renders the build information printed by --version.
func versionString() string {
	return fmt.Sprintf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// renderedYear holds both published documents of one year.
type renderedYear struct {
	page []byte
	feed []byte
}

// build runs the whole pipeline for opts.year.
func build(ctx context.Context, opts *options) (*renderedYear, error) {
	gw, err := selectGateway(opts.settings)
	if err != nil {
		return nil, err
	}

	catalog, err := i18n.LoadCatalog()
	if err != nil {
		return nil, err
	}
	tr, err := catalog.Translator(opts.settings.Language)
	if err != nil {
		return nil, err
	}

	gen := &engine.Generator{
		Gateway: gw,
		Clock:   engine.RealClock{},
		Workers: opts.settings.Workers,
	}
	report, err := gen.Generate(ctx, opts.year)
	if err != nil {
		return nil, err
	}

	page, err := render.Document(report, opts.renderOptions(), tr)
	if err != nil {
		return nil, err
	}
	feed, err := gen.EncodeICS(report)
	if err != nil {
		return nil, err
	}
	return &renderedYear{page: page, feed: feed}, nil
}

func runGenerate(ctx context.Context, opts *options, stdout io.Writer) error {
	out, err := build(ctx, opts)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf(config.FormatOutputFile, opts.year)
	}
	if err := writeFile(output, out.page); err != nil {
		return err
	}
	if ics := opts.icsPath(); ics != "" {
		if err := writeFile(ics, out.feed); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, config.MsgSaved, output)
	return nil
}

// runServe renders the year once and serves it until ctx is cancelled.
func runServe(ctx context.Context, opts *options) error {
	out, err := build(ctx, opts)
	if err != nil {
		return err
	}

	srv := server.NewCalendarServer(opts.settings.Port)
	srv.UpdatePage(out.page)
	srv.UpdateFeed(out.feed)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, config.FilePermOutput); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	slog.Info(config.MsgFileWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Debug(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Logs go to w so that
// stdout only carries the result message.
func setupLogging(w io.Writer, debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
}
