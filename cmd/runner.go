package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/engine"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	notes      services.NotesStore
	target     services.RemindersStore
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Notes and Target override the stores built from the configuration.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Notes      services.NotesStore
	Target     services.RemindersStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.HTTPTimeout()}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		notes:      opts.Notes,
		target:     opts.Target,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, serveCommand, listsCommand, browseCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by commands and the services they build.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// sourceStore returns the configured note store, building the Keep gateway client on first use.
func (r *Runner) sourceStore() services.NotesStore {
	if r.notes == nil {
		r.notes = services.NewKeepService(r.config.Keep, r.httpClient, shared.WithLogger(r.logger, "service", "keep"))
	}
	return r.notes
}

// targetStore returns the configured reminders store for the selected backend.
func (r *Runner) targetStore(ctx context.Context) (services.RemindersStore, error) {
	if r.target != nil {
		return r.target, nil
	}

	switch r.config.Target.Backend {
	case "", shared.BackendReminders:
		r.target = services.NewRemindersService(r.config.Reminders, r.httpClient, shared.WithLogger(r.logger, "service", "reminders"))
	case shared.BackendGoogleTasks:
		svc, err := services.NewGoogleTasksService(ctx, r.config.GoogleTasks.SessionDir, r.config.HTTPTimeout())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		r.target = svc
	default:
		return nil, fmt.Errorf("%w: unknown target backend %q", shared.ErrInvalidConfig, r.config.Target.Backend)
	}
	return r.target, nil
}

// login authenticates both stores. Credentials are validated before any network call.
func (r *Runner) login(ctx context.Context, stores ...any) error {
	if err := r.config.ValidateSource(); err != nil {
		return err
	}
	if err := r.config.ValidateTarget(); err != nil {
		return err
	}

	for _, store := range stores {
		auth, ok := store.(services.Authenticator)
		if !ok {
			continue
		}
		if err := auth.Authenticate(ctx); err != nil {
			return fmt.Errorf("%s login failed: %w", auth.Name(), err)
		}
		r.logger.Debug("logged in", "service", auth.Name())
	}
	return nil
}

// openHistory opens the run history database and applies migrations.
// An empty database path disables history and returns a nil repository.
func (r *Runner) openHistory() (*repositories.RunRepository, func(), error) {
	path := r.config.Database.Path
	if path == "" {
		return nil, func() {}, nil
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewRunRepository(db), closer(r.logger, db), nil
}

func closer(logger *log.Logger, db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
}

// newReconciler wires the source reader, target adapter, history recorder and metrics into a reconciler.
func (r *Runner) newReconciler(ctx context.Context, recorder engine.RunRecorder, metrics *engine.SyncMetrics) (*engine.Reconciler, error) {
	notes := r.sourceStore()
	target, err := r.targetStore(ctx)
	if err != nil {
		return nil, err
	}

	opts := engine.ReconcilerOpts{
		Source:   engine.NewSourceReader(notes, shared.WithLogger(r.logger, "component", "source")),
		Target:   engine.NewTarget(target, r.config.Sync.WritesPerSecond, shared.WithLogger(r.logger, "component", "target")),
		Pairs:    r.config.Pairs(),
		Prepare:  func(ctx context.Context) error { return r.login(ctx, notes, target) },
		Recorder: recorder,
		Metrics:  metrics,
		Logger:   r.logger,
	}
	return engine.NewReconciler(opts), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
