package rasvec

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/require"
)

const testSrid = 32650

// 10m像元，左上角(500000, 4000000)
var testGT = GeoTransform{500000, 10, 0, 4000000, 0, -10}

// 覆盖第2~5列、第3~6行像元的矩形
const testBoxWkt = "POLYGON((500020 3999930,500060 3999930,500060 3999970,500020 3999970,500020 3999930))"

var testBoxWindow = Window{ColOff: 2, RowOff: 3, Width: 4, Height: 4}

func newTestToolbox(t *testing.T) *GdalToolbox {
	t.Helper()
	return NewGdalToolbox(t.TempDir())
}

func testCRS(t *testing.T, g *GdalToolbox, srid int) string {
	t.Helper()
	wkt, err := g.SridToWkt(srid)
	require.NoError(t, err)
	return wkt
}

// 像元值为 band*1000 + row*10 + col + 1
func testPixel(band, row, col int) float64 {
	return float64(band*1000 + row*10 + col + 1)
}

type rasterFixture struct {
	width, height, bands int
	dt                   godal.DataType
	nodata               *float64
	noCRS                bool
}

func defaultFixture() rasterFixture {
	return rasterFixture{width: 10, height: 10, bands: 1, dt: godal.Int16}
}

func writeTestRaster(t *testing.T, g *GdalToolbox, fx rasterFixture) string {
	t.Helper()
	meta := RasterMeta{
		Driver:    GTIFF_DRIVER_NAME,
		DataType:  fx.dt,
		Width:     fx.width,
		Height:    fx.height,
		Count:     fx.bands,
		Transform: testGT,
		NoData:    fx.nodata,
	}
	if !fx.noCRS {
		meta.CRS = testCRS(t, g, testSrid)
	}
	data := make([][]float64, fx.bands)
	for b := range data {
		data[b] = make([]float64, fx.width*fx.height)
		for i := range data[b] {
			data[b][i] = testPixel(b, i/fx.width, i%fx.width)
		}
	}
	path := filepath.Join(t.TempDir(), "src.tif")
	require.NoError(t, g.WriteRaster(path, meta, data))
	return path
}

func openTestRaster(t *testing.T, g *GdalToolbox, fx rasterFixture) *Raster {
	t.Helper()
	r, err := g.OpenRaster(writeTestRaster(t, g, fx))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func newTestLayer(t *testing.T, g *GdalToolbox, crs string, wkts ...string) *VectorLayer {
	t.Helper()
	layer := &VectorLayer{Name: "zone", CRS: crs}
	for i, wkt := range wkts {
		wkb, err := g.WktToWkb(wkt)
		require.NoError(t, err)
		layer.Geoms = append(layer.Geoms, wkb)
		layer.Attrs = append(layer.Attrs, map[string]string{"id": string(rune('a' + i))})
	}
	return layer
}

func ptr(v float64) *float64 {
	return &v
}
