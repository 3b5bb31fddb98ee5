package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/config"
	"github.com/roach88/reel/internal/logging"
	"github.com/roach88/reel/internal/source"
	"github.com/roach88/reel/internal/store"
	"github.com/roach88/reel/internal/vault"
)

// session is the per-invocation wiring shared by every vault command.
type session struct {
	cfg       *config.Config
	log       *logrus.Logger
	vault     *vault.Vault
	registry  *prometheus.Registry
	formatter *OutputFormatter
}

// openSession resolves configuration and builds a vault. The database itself
// is opened lazily by the first vault operation.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = source.NewHTTPFetcher(cfg.FetchTimeout)
	}

	reg := prometheus.NewRegistry()
	vopts := []vault.Option{
		vault.WithLogger(log),
		vault.WithFetcher(fetcher),
		vault.WithMetrics(vault.MustNewMetrics(reg)),
	}
	if opts.Clock != nil {
		vopts = append(vopts, vault.WithClock(opts.Clock))
	}

	formatter.VerboseLog("Using database %s", cfg.DatabasePath)
	return &session{
		cfg:       cfg,
		log:       log,
		vault:     vault.New(store.NewHandle(cfg.DatabasePath), nil, vopts...),
		registry:  reg,
		formatter: formatter,
	}, nil
}

// close releases the database and flushes metrics to the configured textfile.
func (s *session) close() {
	if err := s.vault.Close(); err != nil {
		s.log.WithError(err).Error("error closing database")
	}
	if s.cfg.MetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(s.cfg.MetricsTextfile, s.registry); err != nil {
		s.log.WithError(err).WithField("path", s.cfg.MetricsTextfile).Error("error writing metrics textfile")
	}
}

// fail reports err through the formatter and maps it to an exit code.
// Storage and input problems are command errors; everything else is a failure.
func (s *session) fail(message string, err error) error {
	code := string(vault.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}
	_ = s.formatter.Error(code, err.Error(), nil)

	exit := ExitFailure
	if vault.IsStorageUnavailable(err) || vault.CodeOf(err) == vault.ErrCodeInvalidInput {
		exit = ExitCommandError
	}
	return WrapExitError(exit, message, err)
}

// usageError reports a flag or argument problem.
func (s *session) usageError(message string) error {
	_ = s.formatter.Error(ErrCodeUsage, message, nil)
	return NewExitError(ExitCommandError, message)
}
