package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logiflow-io/logiflow/pkg/log"
)

// NamedFlagSetOptions is implemented by command option aggregates. Flags
// returns the grouped flag sets to register, Complete fills in derived
// values after parsing, and Validate reports every configuration problem.
type NamedFlagSetOptions interface {
	Flags() NamedFlagSets
	Complete() error
	Validate() error
}

// RunFunc is the business logic of an application.
type RunFunc func() error

// Option configures an App during construction.
type Option func(*App)

// WithOptions attaches the command line options to the application.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc sets the function executed after flags are parsed and the
// configuration is loaded and validated.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithDescription sets the long help text of the command.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithDefaultValidArgs rejects any positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.noArgs = true
	}
}

// App assembles a cobra command with named flag groups, optional config
// file loading through viper, and validated options.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	noArgs      bool
	cmd         *cobra.Command
}

// NewApp builds an application with the given name and short description.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()

	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runCommand,
	}
	if a.noArgs {
		cmd.Args = cobra.NoArgs
	}

	fs := cmd.Flags()
	if a.options != nil {
		nfs := a.options.Flags()
		for _, set := range nfs.sets() {
			fs.AddFlagSet(set)
		}
	}
	addConfigFlag(a.name, fs)

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if a.options != nil {
		if err := applyConfig(a.name, cmd.Flags(), a.options); err != nil {
			return err
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.runFunc != nil {
		return a.runFunc()
	}

	return nil
}

// Command exposes the underlying cobra command, mainly for tests.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the application and exits the process on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		log.Error(err, "Application run failed", "name", a.name)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
