package main

import (
	"errors"
	"fmt"

	"github.com/wgdzlh/rasvec/utils"

	"github.com/spf13/cobra"
)

var errMissingPath = errors.New("raster, vector and out paths are required")

func newMaskCommand() *cobra.Command {
	var (
		raster, vector, out, preview, bands string
		layer, previewSide                  int
		nodata, simplify                    float64
		crop, allTouched, invert, pad       bool
		fillHoles, dissolve, compress       bool
	)
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Mask (and optionally crop) a raster by vector polygons",
		Example: "  rasvec mask --raster in.tif --vector zone.gpkg --out out.tif --nodata 9999 --crop\n" +
			"  rasvec mask -c rasvec.yaml --preview fig.png",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			w := &c.Workflow
			flags := cmd.Flags()
			// 命令行参数覆盖配置文件
			if flags.Changed("raster") {
				w.Raster = raster
			}
			if flags.Changed("vector") {
				w.Vector = vector
			}
			if flags.Changed("layer") {
				w.Layer = layer
			}
			if flags.Changed("out") {
				w.Out = out
			}
			if flags.Changed("nodata") {
				w.NoData = &nodata
			}
			if flags.Changed("crop") {
				w.Crop = crop
			}
			if flags.Changed("all-touched") {
				w.AllTouched = allTouched
			}
			if flags.Changed("invert") {
				w.Invert = invert
			}
			if flags.Changed("pad") {
				w.Pad = pad
			}
			if flags.Changed("bands") {
				if w.Bands, err = utils.ParseBands(bands); err != nil {
					return err
				}
			}
			if flags.Changed("simplify") {
				w.Simplify = simplify
			}
			if flags.Changed("fill-holes") {
				w.FillHoles = fillHoles
			}
			if flags.Changed("dissolve") {
				w.Dissolve = dissolve
			}
			if flags.Changed("compress") {
				w.Compress = compress
			}
			if flags.Changed("preview") {
				w.Preview = preview
			}
			if flags.Changed("preview-side") {
				w.PreviewSide = previewSide
			}
			if w.Raster == "" || w.Vector == "" || w.Out == "" {
				return errMissingPath
			}
			res, err := newToolbox().RunMaskWorkflow(w.Options())
			if err != nil {
				return err
			}
			defer res.Output.Close()
			fmt.Fprintln(cmd.OutOrStdout(), res.Output.Meta)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&raster, "raster", "", "input raster")
	f.StringVar(&vector, "vector", "", "input vector (gpkg, shp, geojson or zipped shp)")
	f.IntVar(&layer, "layer", 0, "vector layer index")
	f.StringVarP(&out, "out", "o", "", "output GeoTIFF")
	f.Float64Var(&nodata, "nodata", 0, "nodata value for masked pixels (unset: source nodata, else 0; e.g. 9999)")
	f.BoolVar(&crop, "crop", false, "crop to the polygons' extent")
	f.BoolVar(&allTouched, "all-touched", false, "include every pixel touched by a polygon")
	f.BoolVar(&invert, "invert", false, "mask pixels inside the polygons instead")
	f.BoolVar(&pad, "pad", false, "pad the crop window by half a pixel")
	f.StringVar(&bands, "bands", "", "comma separated 1-based band indexes, default all")
	f.Float64Var(&simplify, "simplify", 0, "simplify polygons with this tolerance first")
	f.BoolVar(&fillHoles, "fill-holes", false, "remove polygon holes first")
	f.BoolVar(&dissolve, "dissolve", false, "merge all polygons first")
	f.BoolVar(&compress, "compress", false, "LZW-compress the output")
	f.StringVar(&preview, "preview", "", "write an Original/Crop/Mask PNG panel")
	f.IntVar(&previewSide, "preview-side", 0, "longest side of each preview panel")
	return cmd
}
