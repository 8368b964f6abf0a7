package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rook-computer/rendersettings/internal/profile"
)

func newWatchCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the profile whenever it changes",
		Long: `Keep the registry in sync with the profile file until interrupted.
A profile that fails to load or validate is reported and leaves the
previous settings in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.profilePath == "" {
				return errors.New("no profile to watch; pass --config")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &profile.Watcher{
				Path:     s.profilePath,
				Registry: s.reg,
				Logger:   s.logger,
			}
			return w.Run(ctx)
		},
	}
}
