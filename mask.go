package rasvec

import (
	"fmt"

	"github.com/wgdzlh/rasvec/log"

	"github.com/airbusgeo/godal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 掩膜使用的NoData：参数指定 > 源栅格NoData > 0
func (opts MaskOptions) resolveNoData(meta RasterMeta) float64 {
	if opts.NoData != nil {
		return *opts.NoData
	}
	if meta.NoData != nil {
		return *meta.NoData
	}
	return 0
}

// 栅格与矢量坐标系都已知时必须一致，任一未知时仅告警
func (g *GdalToolbox) checkCRS(r *Raster, layer *VectorLayer) error {
	if r.Meta.CRS == "" || layer.CRS == "" {
		log.Warn(g.logTag+"crs unknown, assume vector in raster crs",
			zap.Bool("rasterCrs", r.Meta.CRS != ""), zap.Bool("vectorCrs", layer.CRS != ""))
		return nil
	}
	same, err := g.SameCRS(r.Meta.CRS, layer.CRS)
	if err != nil {
		return err
	}
	if !same {
		log.Error(g.logTag+"vector not reprojected to raster crs", zap.String("layer", layer.Name))
		return ErrCrsMismatch
	}
	return nil
}

// 按矢量面掩膜栅格：矢量外（Invert时为矢量内）像元置为NoData，Crop时裁剪到矢量范围
func (g *GdalToolbox) MaskRaster(r *Raster, layer *VectorLayer, opts MaskOptions) (res *MaskResult, err error) {
	if layer == nil || layer.Len() == 0 {
		err = ErrEmptyGeometries
		return
	}
	meta := r.Meta
	nd := opts.resolveNoData(meta)
	if err = CheckNoData(meta.DataType, nd); err != nil {
		log.Error(g.logTag+"bad nodata for raster", zap.Float64("nodata", nd), zap.String("dt", meta.DataType.String()))
		return
	}
	if err = g.checkCRS(r, layer); err != nil {
		return
	}
	bands, err := r.bandIndexes(opts.Bands)
	if err != nil {
		return
	}
	bnds, err := g.LayerBounds(layer)
	if err != nil {
		return
	}
	overlap, err := meta.Transform.WindowForBounds(bnds, meta.Width, meta.Height, opts.Pad)
	if err != nil {
		return
	}
	win := FullWindow(meta.Width, meta.Height)
	if opts.Crop {
		if overlap.Empty() {
			log.Error(g.logTag+"nothing to crop", zap.Float64s("bounds", bnds[:]))
			err = ErrNoOverlap
			return
		}
		win = overlap
	} else if overlap.Empty() {
		log.Warn(g.logTag+"geometries do not overlap raster, result is all nodata", zap.Float64s("bounds", bnds[:]))
	}
	log.Info(g.logTag+"start mask raster", zap.String("tif", r.Path), zap.Int("geoms", layer.Len()),
		zap.Bool("crop", opts.Crop), zap.Float64("nodata", nd), zap.Any("window", win))
	res = &MaskResult{
		Width:     win.Width,
		Height:    win.Height,
		Transform: meta.Transform.ForWindow(win),
		NoData:    nd,
		DataType:  meta.DataType,
		Window:    win,
	}
	burnt, err := g.rasterizeMask(layer, meta.CRS, res.Transform, win.Width, win.Height, opts.AllTouched)
	if err != nil {
		res = nil
		return
	}
	if res.Data, err = r.ReadWindow(win, bands); err != nil {
		res = nil
		return
	}
	res.Mask = make([]bool, len(burnt))
	kept := 0
	for i, v := range burnt {
		res.Mask[i] = (v == maskBurnValue) != opts.Invert
		if res.Mask[i] {
			kept++
		}
	}
	for _, data := range res.Data {
		for i, keep := range res.Mask {
			if !keep {
				data[i] = nd
			}
		}
	}
	log.Info(g.logTag+"mask raster done", zap.Int("kept", kept), zap.Int("total", len(res.Mask)))
	return
}

// 在与窗口同尺寸的MEM数据集中烧录矢量面，返回逐像元掩膜（1为矢量内）
func (g *GdalToolbox) rasterizeMask(layer *VectorLayer, crs string, gt GeoTransform, width, height int, allTouched bool) (buf []byte, err error) {
	mds, err := godal.Create(godal.Memory, fmt.Sprintf(MEM_MASK, uuid.NewString()), 1, godal.Byte, width, height)
	if err != nil {
		log.Error(g.logTag+"create mem mask failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrGdalDriverCreate, err)
		return
	}
	defer mds.Close()
	if err = mds.SetGeoTransform(gt); err != nil {
		return
	}
	if crs != "" {
		if err = mds.SetProjection(crs); err != nil {
			return
		}
	}
	opts := []godal.RasterizeGeometryOption{godal.Values(maskBurnValue)}
	if allTouched {
		opts = append(opts, godal.AllTouched())
	}
	var geo *godal.Geometry
	for i, wkb := range layer.Geoms {
		if geo, err = godal.NewGeometryFromWKB(wkb, nil); err != nil {
			log.Error(g.logTag+"parse wkb failed", zap.Int("idx", i), zap.Error(err))
			return
		}
		err = mds.RasterizeGeometry(geo, opts...)
		geo.Close()
		if err != nil {
			log.Error(g.logTag+"rasterize geometry failed", zap.Int("idx", i), zap.Error(err))
			return
		}
	}
	buf = make([]byte, width*height)
	err = mds.Bands()[0].Read(0, 0, buf, width, height)
	return
}
