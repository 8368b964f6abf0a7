package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rook-computer/rendersettings/internal/profile"
	"github.com/rook-computer/rendersettings/internal/render"
)

func newShowCmd(s *session) *cobra.Command {
	var qrPath string
	var qrSize int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as a profile",
		Long: `Print every setting of the registry, after the profile is applied, in
the same YAML form the profile file uses. The output can be saved and
loaded back with --config.

With --qr the settings are also written as a QR code holding the
profile in compact JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profile.FromSnapshot(s.reg.Snapshot())
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("encode profile: %w", err)
			}
			if err := enc.Close(); err != nil {
				return err
			}
			if qrPath == "" {
				return nil
			}
			return writeProfileQR(qrPath, p, qrSize)
		},
	}
	cmd.Flags().StringVar(&qrPath, "qr", "", "also write the settings as a QR code PNG to this file")
	cmd.Flags().IntVar(&qrSize, "qr-size", 0, "QR code size in pixels (default 256)")
	return cmd
}

func writeProfileQR(path string, p *profile.Profile, sizePx int) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	img, err := render.QRCode(payload, sizePx)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.WritePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
