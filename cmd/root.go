package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/odit-bit/openai-cli/api"
	"github.com/odit-bit/openai-cli/config"
	"github.com/odit-bit/openai-cli/observability"
	"github.com/odit-bit/openai-cli/render"
	"github.com/spf13/cobra"
)

const serviceName = "openai-cli"

// App is the state shared by every command of one invocation.
type App struct {
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	client *api.Client
	render *render.Renderer

	// released in reverse order once the command returns
	closers []func(context.Context) error
}

func newApp(stdout, stderr io.Writer) *App {
	return &App{
		stdout: stdout,
		stderr: stderr,
		render: render.New(stdout, stderr, render.PaletteFor(stderr), render.FormatJSON),
	}
}

// setup loads the configuration and builds the logger, tracer and API client.
func (a *App) setup(cmd *cobra.Command) error {
	// cobra checks these after PersistentPreRunE; usage errors come first
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return err
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return err
	}

	cfg, err := config.LoadAndValidate(cmd.Flags())
	if err != nil {
		return &ExitError{Code: exitFailure, Message: fmt.Sprintf("invalid configuration: %v", err)}
	}
	a.cfg = cfg

	closeLog := observability.SetupLogging(cfg.Log, a.stderr)
	a.closers = append(a.closers, func(context.Context) error { return closeLog() })

	tel, err := observability.Init(cmd.Context(), serviceName, cfg.Trace, a.stderr)
	if err != nil {
		return &ExitError{Code: exitFailure, Message: err.Error()}
	}
	a.closers = append(a.closers, tel.Shutdown)

	a.client = api.NewClient(
		cfg.API.Base,
		cfg.API.Key,
		api.WithOrganization(cfg.API.Organization),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithTracer(tel.Tracer),
		api.WithMeter(tel.Meter),
	)
	a.render = a.render.WithFormat(render.Format(cfg.Output.Format))

	slog.Debug("command", "name", cmd.Name(), "api_base", cfg.API.Base, "organization", cfg.API.Organization)
	return nil
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}
	a.closers = nil
}

// NewRootCommand builds the openai command tree bound to app.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "openai",
		Short:         "Command line client for the OpenAI API",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	config.DefineFlags(root.PersistentFlags())

	for _, def := range Commands {
		root.AddCommand(a.command(def))
	}
	return root
}

// Execute runs one invocation of the CLI and returns its exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	root := app.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	app.close(context.WithoutCancel(ctx))
	return app.exitCode(cmd, err)
}

// exitCode reports err and maps it to an exit status. Errors not raised by
// a handler or setup come from argument parsing and are usage errors.
func (a *App) exitCode(cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOK
	}

	var (
		apiErr   *api.Error
		exitErr  *ExitError
		validErr *ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
		a.render.Error(apiErr)
		return exitFailure
	case errors.As(err, &exitErr):
		if exitErr.Message != "" {
			fmt.Fprintln(a.stderr, exitErr.Message)
		}
		return exitErr.Code
	case errors.As(err, &validErr):
		a.render.Failure(validErr.Message)
		return exitFailure
	}

	a.render.Failure(err.Error())
	if cmd != nil {
		fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return exitUsage
}
