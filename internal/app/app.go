package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agbru/abcompare/internal/config"
	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/ui"
)

// Application represents the abcompare application instance.
type Application struct {
	Config    config.AppConfig
	Out       io.Writer
	ErrWriter io.Writer
	// RunID identifies the run in logs.
	RunID string

	logger logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) AppOption {
	return func(a *Application) { a.RunID = id }
}

// New creates an Application writing results to out and diagnostics to
// errWriter.
func New(out, errWriter io.Writer, opts ...AppOption) *Application {
	a := &Application{Config: config.Defaults(), Out: out, ErrWriter: errWriter}
	for _, opt := range opts {
		opt(a)
	}
	if a.RunID == "" {
		a.RunID = uuid.NewString()
	}
	return a
}

// Execute runs the command line args and returns the process exit code.
func (a *Application) Execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.ErrWriter)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCodeFor(err)
	if code == apperrors.ExitErrorCanceled {
		fmt.Fprintln(a.ErrWriter, ui.WarningLine("interrupted"))
	} else {
		fmt.Fprintln(a.ErrWriter, ui.ErrorLine(err.Error()))
	}
	return code
}

func (a *Application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "abcompare",
		Short: "Build, serve and benchmark two revisions of a web application",
		Long: `abcompare builds a control and an experiment revision of an Ember
application, serves both, waits until they answer and runs
"tracerbench compare" against them. Servers are always stopped.

Options come from flags, ABCOMPARE_<OPTION> environment variables and an
optional YAML file (--config), in that order of precedence. Absent options
take their value from the selected preset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCompare(cmd.Context())
		},
	}
	config.RegisterFlags(root.PersistentFlags(), &a.Config)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("%v", err)
	})

	root.AddCommand(a.configCommand(), a.versionCommand())
	return root
}

// prepare resolves the configuration and sets up theme and logging.
func (a *Application) prepare(fs *pflag.FlagSet) error {
	if err := config.Resolve(fs, &a.Config); err != nil {
		return err
	}
	ui.InitTheme(a.Config.NoColor)
	a.logger = logging.New(a.ErrWriter, logging.Options{
		Format:  logging.Format(a.Config.LogFormat),
		Level:   a.Config.LogLevel,
		NoColor: a.Config.NoColor,
		Fields:  []logging.Field{logging.String("run_id", a.RunID)},
	})
	return nil
}

func (a *Application) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout())
		},
	}
}

func (a *Application) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the normalized configuration without building anything",
		Long: `Print every option after defaults have been applied, as YAML, followed by
the comparison command that would run. Revisions that are not supplied are
resolved with git in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConfig(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
