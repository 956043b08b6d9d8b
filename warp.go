package rasvec

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/wgdzlh/rasvec/log"
	"github.com/wgdzlh/rasvec/utils"

	"github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// 以gdalwarp的cutline方式裁剪并掩膜栅格，结果写入out（GTiff）
// 图层需已在栅格坐标系下；与MaskRaster(Crop)不同，输出网格由gdalwarp对齐到cutline范围
func (g *GdalToolbox) WarpToCutline(r *Raster, layer *VectorLayer, out string, nd float64) (err error) {
	if layer == nil || layer.Len() == 0 {
		err = ErrEmptyGeometries
		return
	}
	if err = CheckNoData(r.Meta.DataType, nd); err != nil {
		return
	}
	if err = g.checkCRS(r, layer); err != nil {
		return
	}
	tmpDir, err := utils.GetUniqSubDir(g.tmpDir)
	if err != nil {
		log.Error(g.logTag+"create tmp dir failed", zap.Error(err))
		return
	}
	defer os.RemoveAll(tmpDir)
	cutline := filepath.Join(tmpDir, "cutline"+FILE_EXT_SHP)
	// 单要素cutline，避免重叠面在gdalwarp中重复处理
	cut, err := g.DissolveLayer(layer)
	if err != nil {
		return
	}
	if cut.CRS == "" {
		cut.CRS = r.Meta.CRS
	}
	if err = g.WriteVectorLayer(cutline, cut); err != nil {
		return
	}
	opts := []string{
		"-cutline", cutline,
		"-crop_to_cutline",
		"-dstnodata", strconv.FormatFloat(nd, 'g', -1, 64),
		"-overwrite",
		"-of", GTIFF_DRIVER_NAME,
	}
	log.Info(g.logTag+"warp raster to cutline", zap.String("tif", r.Path), zap.String("out", out), zap.Strings("opts", opts))
	ods, err := godal.Warp(out, []*godal.Dataset{r.ds}, opts)
	if err != nil {
		log.Error(g.logTag+"failed to warp raster", zap.Error(err))
		return
	}
	err = ods.Close()
	return
}
