package rasvec

import (
	"fmt"

	"github.com/wgdzlh/rasvec/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// 按meta写出栅格文件，data为各波段按行存储的数据；createOpts为驱动创建参数（如COMPRESS=LZW）
func (g *GdalToolbox) WriteRaster(path string, meta RasterMeta, data [][]float64, createOpts ...string) (err error) {
	if len(data) != meta.Count || meta.Count == 0 {
		err = fmt.Errorf("%w: %d bands for count %d", ErrWrongBufferSize, len(data), meta.Count)
		return
	}
	for i, band := range data {
		if len(band) != meta.Width*meta.Height {
			err = fmt.Errorf("%w: band %d has %d values for %dx%d", ErrWrongBufferSize, i+1, len(band), meta.Width, meta.Height)
			return
		}
	}
	if meta.NoData != nil {
		if err = CheckNoData(meta.DataType, *meta.NoData); err != nil {
			log.Error(g.logTag+"bad nodata for output", zap.Float64("nodata", *meta.NoData), zap.String("dt", meta.DataType.String()))
			return
		}
	}
	driver := godal.GTiff
	if meta.Driver != "" {
		driver = godal.DriverName(meta.Driver)
	}
	log.Info(g.logTag+"start write tif", zap.String("out", path), zap.String("driver", string(driver)), zap.Int("bands", meta.Count))
	ds, err := godal.Create(driver, path, meta.Count, meta.DataType, meta.Width, meta.Height, godal.CreationOption(createOpts...))
	if err != nil {
		log.Error(g.logTag+"create tif failed", zap.String("out", path), zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrGdalDriverCreate, err)
		return
	}
	// 无论成功与否都要关闭数据集（关闭时才真正落盘）
	defer func() {
		if e := ds.Close(); e != nil {
			log.Error(g.logTag+"close tif failed", zap.String("out", path), zap.Error(e))
			err = multierr.Append(err, fmt.Errorf("%w: close: %v", ErrTifWriteFailed, e))
		}
	}()
	if !meta.Transform.IsIdentity() {
		if err = ds.SetGeoTransform(meta.Transform); err != nil {
			return
		}
	}
	if meta.CRS != "" {
		if err = ds.SetProjection(meta.CRS); err != nil {
			return
		}
	}
	for i, band := range ds.Bands() {
		if meta.NoData != nil {
			if err = band.SetNoData(*meta.NoData); err != nil {
				return
			}
		}
		if e := band.Write(0, 0, data[i], meta.Width, meta.Height); e != nil {
			log.Error(g.logTag+"write tif band failed", zap.Int("band", i+1), zap.Error(e))
			err = fmt.Errorf("%w: band %d: %v", ErrTifWriteFailed, i+1, e)
			return
		}
	}
	log.Info(g.logTag+"tif written", zap.String("out", path))
	return
}

// 将掩膜结果按源栅格meta（覆盖NoData）写出
func (g *GdalToolbox) WriteMaskResult(path string, src RasterMeta, res *MaskResult, createOpts ...string) error {
	return g.WriteRaster(path, res.Meta(src), res.Data, createOpts...)
}
