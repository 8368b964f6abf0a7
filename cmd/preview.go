package cmd

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/spf13/cobra"

	"github.com/rook-computer/rendersettings/internal/profile"
	"github.com/rook-computer/rendersettings/internal/render"
)

func newPreviewCmd(s *session) *cobra.Command {
	var (
		output    string
		scale     int
		padding   int
		lineColor string
		canvas    string
		fbDevice  string
	)
	cmd := &cobra.Command{
		Use:   "preview TEXT",
		Short: "Render a label with the current settings to a PNG",
		Long: `Render TEXT the way a modifier label is drawn with the current
settings: label font, text background policy and outline width, label
colors, text render method and device DPI.

Examples:
  rendersettings preview "HQ" -o hq.png
  rendersettings preview "1-23 INF" -o label.png --scale 4 --canvas "#808080"
  rendersettings preview "HQ" --framebuffer /dev/fb0 --scale 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" && fbDevice == "" {
				return errors.New("nothing to do: pass -o FILE or --framebuffer DEVICE")
			}
			line, err := profile.ParseColor(lineColor)
			if err != nil {
				return fmt.Errorf("--line-color: %w", err)
			}
			bg, err := profile.ParseColor(canvas)
			if err != nil {
				return fmt.Errorf("--canvas: %w", err)
			}
			opts := render.Options{Padding: padding}
			if line != nil {
				opts.LineColor = *line
			}
			if bg != nil {
				opts.Canvas = *bg
			}

			r := render.NewLabelRenderer(s.reg)
			r.Logger = s.logger
			img, err := r.Render(args[0], opts)
			if err != nil {
				return err
			}
			out := render.Scale(img, scale)

			if fbDevice != "" {
				if err := render.ShowOnFramebuffer(fbDevice, out, opts.Canvas); err != nil {
					return fmt.Errorf("framebuffer %s: %w", fbDevice, err)
				}
				s.logger.Infof("main", "preview shown on %s", fbDevice)
			}
			if output == "" {
				return nil
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := render.WritePNG(f, out); err != nil {
				return errors.Join(err, f.Close())
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", output, out.Bounds().Dx(), out.Bounds().Dy())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	cmd.Flags().IntVar(&scale, "scale", 1, "integer zoom factor")
	cmd.Flags().IntVar(&padding, "padding", render.DefaultPadding, "clear margin around the label in pixels")
	cmd.Flags().StringVar(&lineColor, "line-color", hexColor(render.DefaultLineColor), "symbol line color the label inherits when it has no foreground color")
	cmd.Flags().StringVar(&canvas, "canvas", "none", "color behind the label, or none for transparent")
	cmd.Flags().StringVar(&fbDevice, "framebuffer", "", "also show the preview on this Linux framebuffer device, e.g. /dev/fb0")
	return cmd
}

func hexColor(c color.RGBA) string {
	return profile.FormatColor(&c)
}
