package rasvec

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 矢量以WGS84保存，流程中转换到栅格坐标系
func writeWgs84Zone(t *testing.T, g *GdalToolbox) string {
	t.Helper()
	utm := newTestLayer(t, g, testCRS(t, g, testSrid), BoundsToWkt([4]float64{500021, 3999931, 500059, 3999969}))
	geo, err := utm.ToCRS(g, testCRS(t, g, 4326))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "zone.gpkg")
	require.NoError(t, g.WriteVectorLayer(path, geo))
	return path
}

func TestRunMaskWorkflow(t *testing.T) {
	g := newTestToolbox(t)
	dir := t.TempDir()
	opts := WorkflowOptions{
		RasterPath:    writeTestRaster(t, g, defaultFixture()),
		VectorPath:    writeWgs84Zone(t, g),
		OutPath:       filepath.Join(dir, "masked.tif"),
		NoData:        ptr(DefaultNoData),
		CreateOptions: []string{COMPRESS_OPTION},
		PreviewPath:   filepath.Join(dir, "fig.png"),
	}
	res, err := g.RunMaskWorkflow(opts)
	require.NoError(t, err)
	defer res.Output.Close()

	same, err := g.SameCRS(res.Source.CRS, res.Vector.CRS)
	require.NoError(t, err)
	assert.True(t, same, "vector reprojected to raster crs")

	out := res.Output.Meta
	assert.Equal(t, res.Source.Width, out.Width)
	assert.Equal(t, res.Source.Height, out.Height)
	assert.Equal(t, res.Source.Transform, out.Transform)
	require.NotNil(t, out.NoData)
	assert.Equal(t, float64(DefaultNoData), *out.NoData)
	assert.Nil(t, res.Source.NoData)

	data, err := res.Output.ReadBand(1)
	require.NoError(t, err)
	assert.Equal(t, res.Mask.Data[0], data)
	for i, v := range data {
		row, col := i/out.Width, i%out.Width
		if inWindow(testBoxWindow, row, col) {
			assert.Equal(t, testPixel(0, row, col), v)
		} else {
			assert.Equal(t, float64(DefaultNoData), v)
		}
	}

	f, err := os.Open(opts.PreviewPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, panelGap+2*(10+panelGap)+4+panelGap, cfg.Width, "original, crop, mask")
}

func TestRunMaskWorkflowCrop(t *testing.T) {
	g := newTestToolbox(t)
	opts := WorkflowOptions{
		RasterPath: writeTestRaster(t, g, defaultFixture()),
		VectorPath: writeWgs84Zone(t, g),
		OutPath:    filepath.Join(t.TempDir(), "cropped.tif"),
		NoData:     ptr(DefaultNoData),
		Crop:       true,
		Dissolve:   true,
		FillHoles:  true,
	}
	res, err := g.RunMaskWorkflow(opts)
	require.NoError(t, err)
	defer res.Output.Close()
	assert.Equal(t, 4, res.Output.Meta.Width)
	assert.Equal(t, 4, res.Output.Meta.Height)
	assert.Equal(t, res.Source.Transform.ForWindow(testBoxWindow), res.Output.Meta.Transform)
	assert.Equal(t, res.OutMeta, res.Mask.Meta(res.Source))
}

func TestRunMaskWorkflowErrors(t *testing.T) {
	g := newTestToolbox(t)
	dir := t.TempDir()
	raster := writeTestRaster(t, g, defaultFixture())
	vector := writeWgs84Zone(t, g)

	_, err := g.RunMaskWorkflow(WorkflowOptions{RasterPath: filepath.Join(dir, "missing.tif"), VectorPath: vector, OutPath: filepath.Join(dir, "a.tif")})
	assert.ErrorIs(t, err, ErrInvalidTif)

	_, err = g.RunMaskWorkflow(WorkflowOptions{RasterPath: raster, VectorPath: filepath.Join(dir, "missing.gpkg"), OutPath: filepath.Join(dir, "b.tif")})
	assert.ErrorIs(t, err, ErrGdalDriverOpen)

	_, err = g.RunMaskWorkflow(WorkflowOptions{RasterPath: raster, VectorPath: vector, OutPath: filepath.Join(dir, "c.tif"), NoData: ptr(1e9)})
	assert.ErrorIs(t, err, ErrNoDataNotRepresentable)
	_, statErr := os.Stat(filepath.Join(dir, "c.tif"))
	assert.True(t, os.IsNotExist(statErr))
}

// 矢量与栅格不相交时仍输出全NoData结果与三联图
func TestRunMaskWorkflowDisjointWithPreview(t *testing.T) {
	g := newTestToolbox(t)
	crs := testCRS(t, g, testSrid)
	zone := newTestLayer(t, g, crs, BoundsToWkt([4]float64{600000, 3000000, 600100, 3000100}))
	vector := filepath.Join(t.TempDir(), "far.gpkg")
	require.NoError(t, g.WriteVectorLayer(vector, zone))

	dir := t.TempDir()
	opts := WorkflowOptions{
		RasterPath:  writeTestRaster(t, g, defaultFixture()),
		VectorPath:  vector,
		OutPath:     filepath.Join(dir, "masked.tif"),
		NoData:      ptr(DefaultNoData),
		PreviewPath: filepath.Join(dir, "fig.png"),
	}
	res, err := g.RunMaskWorkflow(opts)
	require.NoError(t, err)
	defer res.Output.Close()

	data, err := res.Output.ReadBand(1)
	require.NoError(t, err)
	for _, v := range data {
		assert.Equal(t, float64(DefaultNoData), v)
	}

	f, err := os.Open(opts.PreviewPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, panelGap+3*(10+panelGap), cfg.Width, "crop panel falls back to full grid")
}
