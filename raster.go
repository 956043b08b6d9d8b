package rasvec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/rasvec/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// 已打开的栅格数据集，除显式写出外只读
type Raster struct {
	Path string
	Meta RasterMeta
	ds   *godal.Dataset
}

func rasterDriverName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return GTIFF_DRIVER_NAME
	case FILE_EXT_GPKG:
		return GPKG_DRIVER_NAME
	}
	return ""
}

// 打开栅格并读取元数据
func (g *GdalToolbox) OpenRaster(path string) (r *Raster, err error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", path), zap.Error(err))
		err = fmt.Errorf("%w: %s: %v", ErrInvalidTif, path, err)
		return
	}
	bands := ds.Bands()
	if len(bands) == 0 {
		ds.Close()
		log.Error(g.logTag+"tif without bands", zap.String("tif", path))
		err = fmt.Errorf("%w: %s has no band", ErrInvalidTif, path)
		return
	}
	st := ds.Structure()
	meta := RasterMeta{
		Driver:   rasterDriverName(path),
		DataType: bands[0].Structure().DataType,
		Width:    st.SizeX,
		Height:   st.SizeY,
		Count:    st.NBands,
		CRS:      ds.Projection(),
	}
	gt, e := ds.GeoTransform()
	if e != nil {
		log.Warn(g.logTag+"tif not georeferenced, use identity transform", zap.String("tif", path))
		gt = [6]float64{0, 1, 0, 0, 0, 1}
	}
	meta.Transform = GeoTransform(gt)
	if nd, ok := bands[0].NoData(); ok {
		meta.NoData = &nd
	}
	log.Info(g.logTag+"tif opened", zap.String("tif", path), zap.Int("width", meta.Width), zap.Int("height", meta.Height),
		zap.Int("bands", meta.Count), zap.String("dt", meta.DataType.String()))
	r = &Raster{Path: path, Meta: meta, ds: ds}
	return
}

// 仅读取栅格元数据
func (g *GdalToolbox) RasterInfo(path string) (meta RasterMeta, err error) {
	r, err := g.OpenRaster(path)
	if err != nil {
		return
	}
	meta = r.Meta
	err = r.Close()
	return
}

func (r *Raster) Close() error {
	if r.ds == nil {
		return nil
	}
	err := r.ds.Close()
	r.ds = nil
	return err
}

// 校验并补全波段序号（从1开始），空为全部波段
func (r *Raster) bandIndexes(bands []int) ([]int, error) {
	if len(bands) == 0 {
		bands = make([]int, r.Meta.Count)
		for i := range bands {
			bands[i] = i + 1
		}
		return bands, nil
	}
	for _, b := range bands {
		if b < 1 || b > r.Meta.Count {
			return nil, fmt.Errorf("%w: %d of %d", ErrWrongBand, b, r.Meta.Count)
		}
	}
	return bands, nil
}

// 读取窗口内指定波段的数据
func (r *Raster) ReadWindow(w Window, bands []int) (buf [][]float64, err error) {
	if r.ds == nil {
		err = fmt.Errorf("%w: %s is closed", ErrTifReadFailed, r.Path)
		return
	}
	if bands, err = r.bandIndexes(bands); err != nil {
		return
	}
	if w.Empty() || w.Intersect(FullWindow(r.Meta.Width, r.Meta.Height)) != w {
		err = fmt.Errorf("%w: window %+v", ErrWrongBufferSize, w)
		return
	}
	tifBands := r.ds.Bands()
	buf = make([][]float64, len(bands))
	for i, b := range bands {
		buf[i] = make([]float64, w.Size())
		if e := tifBands[b-1].Read(w.ColOff, w.RowOff, buf[i], w.Width, w.Height); e != nil {
			log.Error(r.Path+": read band failed", zap.Int("band", b), zap.Error(e))
			err = fmt.Errorf("%w: band %d: %v", ErrTifReadFailed, b, e)
			buf = nil
			return
		}
	}
	return
}

func (r *Raster) ReadBand(band int) ([]float64, error) {
	buf, err := r.ReadWindow(FullWindow(r.Meta.Width, r.Meta.Height), []int{band})
	if err != nil {
		return nil, err
	}
	return buf[0], nil
}

func (r *Raster) ReadAll() ([][]float64, error) {
	return r.ReadWindow(FullWindow(r.Meta.Width, r.Meta.Height), nil)
}
