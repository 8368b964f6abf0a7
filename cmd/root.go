package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rook-computer/rendersettings/internal/logging"
	"github.com/rook-computer/rendersettings/internal/metrics"
	"github.com/rook-computer/rendersettings/internal/profile"
	"github.com/rook-computer/rendersettings/internal/settings"
)

var version = "dev"

const defaultProfileName = "rendersettings.yaml"

// session is what every subcommand works against: one registry with the
// profile applied, and the logger it reports to.
type session struct {
	cfgFile  string
	logLevel string
	logFile  string
	stdioLog string

	profilePath string
	reg         *settings.Registry
	logger      logging.Logger
	closers     []io.Closer
}

func newRootCmd() *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:           "rendersettings",
		Short:         "Inspect and preview symbol render settings",
		Long:          `Loads a render settings profile, applies it to a settings registry and shows, previews or watches the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	root.PersistentFlags().StringVarP(&s.cfgFile, "config", "c", "",
		"profile file (default: ./"+defaultProfileName+" or ~/.config/rendersettings/profile.yaml)")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "",
		"log level (debug, info, warn, error); also RENDERSETTINGS_LOG_LEVEL")
	root.PersistentFlags().StringVar(&s.logFile, "log-file", "",
		"append log entries to this file instead of stderr")
	root.PersistentFlags().StringVar(&s.stdioLog, "stdio-log", "",
		"redirect stdout+stderr (including panics) to this file; also RENDERSETTINGS_STDIO_LOG")

	root.AddCommand(newShowCmd(s), newPreviewCmd(s), newWatchCmd(s), newServeCmd(s), newFontsCmd())
	return root
}

func (s *session) open(cmd *cobra.Command) error {
	stdioLog := s.stdioLog
	if stdioLog == "" {
		stdioLog = os.Getenv("RENDERSETTINGS_STDIO_LOG")
	}
	if err := redirectStdIO(stdioLog); err != nil {
		return fmt.Errorf("redirect stdio: %w", err)
	}

	cfg := logging.Config{Level: s.logLevel, Output: cmd.ErrOrStderr()}
	if s.logFile != "" {
		f, err := os.OpenFile(s.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, f)
		cfg.Output = f
	}
	logging.Configure(cfg)
	s.logger = logging.New(cfg)
	s.reg = settings.New(settings.WithLogger(metrics.CountingLogger{Next: s.logger}))

	path, err := s.resolveProfile()
	if err != nil {
		return err
	}
	s.profilePath = path
	if path == "" {
		s.logger.Infof("main", "no profile found, using defaults")
		return nil
	}
	p, err := profile.Load(path)
	if err != nil {
		return err
	}
	err = profile.Apply(s.reg, p)
	metrics.ObserveProfileApply("startup", err)
	if err != nil {
		return fmt.Errorf("apply %s: %w", path, err)
	}
	s.logger.Infof("main", "applied profile %s", path)
	return nil
}

// resolveProfile returns the explicit --config path, or the first default
// location that exists, or "" when there is none.
func (s *session) resolveProfile() (string, error) {
	if s.cfgFile != "" {
		return s.cfgFile, nil
	}
	candidates := []string{defaultProfileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "rendersettings", "profile.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", c, err)
		}
	}
	return "", nil
}

func (s *session) close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
}
