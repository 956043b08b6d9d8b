package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/rasvec"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--tmp-dir", t.TempDir(), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func writeInputs(t *testing.T) (raster, vector string) {
	t.Helper()
	g := rasvec.NewGdalToolbox(t.TempDir())
	crs, err := g.SridToWkt(32650)
	require.NoError(t, err)
	dir := t.TempDir()
	raster = filepath.Join(dir, "in.tif")
	meta := rasvec.RasterMeta{
		DataType:  godal.UInt16,
		Width:     4,
		Height:    4,
		Count:     1,
		CRS:       crs,
		Transform: rasvec.GeoTransform{500000, 10, 0, 4000000, 0, -10},
	}
	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i + 1)
	}
	require.NoError(t, g.WriteRaster(raster, meta, [][]float64{data}))

	wkb, err := g.WktToWkb(rasvec.BoundsToWkt([4]float64{500010, 3999970, 500030, 3999990}))
	require.NoError(t, err)
	vector = filepath.Join(dir, "zone.gpkg")
	require.NoError(t, g.WriteVectorLayer(vector, &rasvec.VectorLayer{Name: "zone", CRS: crs, Geoms: []rasvec.GdalGeo{wkb}}))
	return
}

func TestInfoCommand(t *testing.T) {
	raster, _ := writeInputs(t)
	out, err := run(t, "info", raster)
	require.NoError(t, err)
	assert.Contains(t, out, "'dtype': 'uint16'")
	assert.Contains(t, out, "bounds: [500000 3.99996e+06 500040 4e+06]")

	_, err = run(t, "info")
	assert.Error(t, err)
}

func TestMaskCommand(t *testing.T) {
	raster, vector := writeInputs(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.tif")
	cfg := filepath.Join(dir, "rasvec.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workflow:\n  nodata: 0\n  crop: false\n"), 0o644))

	stdout, err := run(t, "mask", "-c", cfg, "--raster", raster, "--vector", vector, "-o", out, "--crop", "--compress",
		"--preview", filepath.Join(dir, "fig.png"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "'nodata': 0,")
	assert.Contains(t, stdout, "'width': 2, 'height': 2")
	assert.FileExists(t, filepath.Join(dir, "fig.png"))

	_, err = run(t, "mask", "--raster", raster)
	assert.ErrorIs(t, err, errMissingPath)

	_, err = run(t, "mask", "--raster", raster, "--vector", vector, "-o", out, "--bands", "x")
	assert.Error(t, err)
}

func TestPreviewCommand(t *testing.T) {
	raster, _ := writeInputs(t)
	png := filepath.Join(t.TempDir(), "p.png")
	_, err := run(t, "preview", raster, "-o", png, "--size", "2")
	require.NoError(t, err)
	assert.FileExists(t, png)

	_, err = run(t, "preview", raster, "-o", png, "--band", "2")
	assert.ErrorIs(t, err, rasvec.ErrWrongBand)
}

// 未指定--nodata时沿用源栅格NoData，源栅格未设置则为0
func TestMaskCommandDefaultNoData(t *testing.T) {
	raster, vector := writeInputs(t)
	out := filepath.Join(t.TempDir(), "out.tif")
	stdout, err := run(t, "mask", "--raster", raster, "--vector", vector, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "'nodata': 0,")
	assert.Contains(t, stdout, "'width': 4, 'height': 4")
}
