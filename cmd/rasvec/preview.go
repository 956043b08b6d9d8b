package main

import (
	"github.com/wgdzlh/rasvec"

	"github.com/spf13/cobra"
)

func newPreviewCommand() *cobra.Command {
	var (
		out        string
		band, side int
	)
	cmd := &cobra.Command{
		Use:   "preview <raster>",
		Short: "Render a grayscale PNG quick-look of a raster band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if _, err = loadConfig(); err != nil {
				return
			}
			g := newToolbox()
			r, err := g.OpenRaster(args[0])
			if err != nil {
				return
			}
			defer r.Close()
			img, err := g.RenderPreview(r, band, side)
			if err != nil {
				return
			}
			return rasvec.SavePNG(out, img)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "output PNG")
	cmd.Flags().IntVar(&band, "band", 1, "1-based band index")
	cmd.Flags().IntVar(&side, "size", rasvec.DefaultPreviewSide, "longest side in pixels")
	return cmd
}
