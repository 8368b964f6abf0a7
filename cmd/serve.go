package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rook-computer/rendersettings/internal/metrics"
	"github.com/rook-computer/rendersettings/internal/profile"
	"github.com/rook-computer/rendersettings/internal/web"
)

func newServeCmd(s *session) *cobra.Command {
	var (
		listen    string
		watch     bool
		rateLimit int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the settings API",
		Long: `Serve the registry over HTTP until interrupted:

  GET  /api/v1/settings         effective settings (?format=yaml for YAML)
  PUT  /api/v1/settings         apply a partial profile (JSON or YAML)
  GET  /api/v1/settings/qr      settings as a QR code PNG
  GET  /api/v1/fonts            font families and aliases
  GET  /api/v1/fonts/resolved   label fonts as resolved, with fallbacks
  GET  /api/v1/preview?text=    label preview PNG
  GET  /metrics                 Prometheus metrics

The listen address defaults to $` + web.EnvListenAddr + ` or ` + web.DefaultListenAddr + `,
the preview rate to $` + web.EnvPreviewRate + `.
With --watch the profile file is re-applied whenever it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := web.DefaultServerConfigFromEnv(web.DefaultListenAddr)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			srv := web.NewHTTPServer(cfg, web.APIV1Deps{Registry: s.reg, Logger: s.logger})
			if cmd.Flags().Changed("preview-rate") {
				srv.PreviewRequestsPerMinute = rateLimit
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			g.Go(srv.Wait)

			if watch && s.profilePath != "" {
				w := &profile.Watcher{
					Path:     s.profilePath,
					Registry: s.reg,
					Logger:   s.logger,
					OnApply: func(_ *profile.Profile, err error) {
						metrics.ObserveProfileApply("watch", err)
					},
				}
				g.Go(func() error { return w.Run(ctx) })
			} else if watch {
				s.logger.Infof("main", "--watch ignored: no profile file")
			}

			g.Go(func() error {
				<-ctx.Done()
				return srv.Stop()
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", web.DefaultListenAddr, "address to listen on")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-apply the profile file when it changes")
	cmd.Flags().IntVar(&rateLimit, "preview-rate", web.DefaultPreviewRequestsPerMinute, "preview requests per minute per client; negative disables the limit")
	return cmd
}
