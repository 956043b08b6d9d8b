package rasvec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/wgdzlh/rasvec/log"
	"github.com/wgdzlh/rasvec/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

func vectorDriverName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case FILE_EXT_SHP:
		return SHP_DRIVER_NAME
	case FILE_EXT_GPKG:
		return GPKG_DRIVER_NAME
	case FILE_EXT_JSON, FILE_EXT_GEOJSON:
		return GEOJSON_DRIVER_NAME
	}
	return ""
}

func isPolygonal(gt gdal.GeometryType) bool {
	switch gt {
	case gdal.GT_Polygon, gdal.GT_MultiPolygon, gdal.GT_Polygon25D, gdal.GT_MultiPolygon25D:
		return true
	}
	return false
}

// shp的属性是否需要按GBK解码（cpg缺失或不为UTF-8）
func needGbkDecode(path string) bool {
	if vectorDriverName(path) != SHP_DRIVER_NAME {
		return false
	}
	enc, err := os.ReadFile(strings.TrimSuffix(path, filepath.Ext(path)) + FILE_EXT_CPG)
	if err != nil {
		return true
	}
	encStr := strings.ToUpper(strings.TrimSpace(string(enc)))
	return encStr != SHAPE_ENCODING && encStr != UTF8_ENC
}

// 读取矢量文件中第layerIdx个图层的面要素，支持zip压缩的shp
func (g *GdalToolbox) OpenVectorLayer(path string, layerIdx int) (ret *VectorLayer, err error) {
	log.Info(g.logTag+"open vector layer", zap.String("path", path), zap.Int("layer", layerIdx))
	if utils.IsZip(path) {
		var tmpDir string
		if tmpDir, err = utils.GetUniqSubDir(g.tmpDir); err != nil {
			log.Error(g.logTag+"create tmp dir failed", zap.Error(err))
			return
		}
		defer os.RemoveAll(tmpDir)
		shp, utf8Cpg, e := utils.GetShpInZip(path, tmpDir)
		if e != nil {
			log.Error(g.logTag+"unzip shp failed", zap.String("zip", path), zap.Error(e))
			err = fmt.Errorf("%w: %s: %v", ErrGdalDriverOpen, path, e)
			return
		}
		log.Info(g.logTag+"shp extracted", zap.String("shp", shp), zap.Bool("utf8", utf8Cpg))
		path = shp
	}
	name := vectorDriverName(path)
	if name == "" {
		err = fmt.Errorf("%w: unknown vector format %s", ErrGdalDriverOpen, path)
		return
	}
	driver := gdal.OGRDriverByName(name)
	ds, ok := driver.Open(path, 0)
	if !ok {
		log.Error(g.logTag+"open vector failed", zap.String("path", path))
		err = fmt.Errorf("%w: %s", ErrGdalDriverOpen, path)
		return
	}
	defer ds.Destroy()
	if n := ds.LayerCount(); layerIdx < 0 || layerIdx >= n {
		log.Error(g.logTag+"layer index out of range", zap.Int("layers", n))
		err = fmt.Errorf("%w: layer %d of %d", ErrGdalDriverOpen, layerIdx, n)
		return
	}
	layer := ds.LayerByIndex(layerIdx)
	ret = &VectorLayer{Name: layer.Name()}
	if sp := layer.SpatialReference(); sp != (gdal.SpatialReference{}) {
		if ret.CRS, err = sp.ToWKT(); err != nil {
			log.Error(g.logTag+"export layer srs failed", zap.Error(err))
			return
		}
		if srid, e := g.getSrid(sp); e == nil {
			log.Info(g.logTag+"vector layer srid", zap.Int("srid", srid))
		}
	} else {
		log.Warn(g.logTag+"vector layer without srs", zap.String("path", path))
	}
	var (
		def     = layer.Definition()
		nField  = def.FieldCount()
		names   = make([]string, nField)
		gbk     = needGbkDecode(path)
		feature *gdal.Feature
		geo     gdal.Geometry
		wkb     []byte
		e       error
		gc      []destroyable
	)
	for i := range names {
		names[i] = def.FieldDefinition(i).Name()
	}
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		geo = feature.Geometry()
		if geo.IsEmpty() || !isPolygonal(geo.Type()) {
			log.Error(g.logTag+"skip non-polygon feature", zap.Int64("fid", feature.FID()))
			continue
		}
		if wkb, e = geo.ToWKB(); e != nil {
			log.Error(g.logTag+"err in wkb convert", zap.Int64("fid", feature.FID()), zap.Error(e))
			continue
		}
		attrs := make(map[string]string, nField)
		for i, name := range names {
			v := feature.FieldAsString(i)
			if gbk && !utf8.ValidString(v) {
				if d, e := utils.GbkStrToUtf8(v); e == nil {
					v = d
				}
			}
			attrs[name] = v
		}
		ret.Geoms = append(ret.Geoms, wkb)
		ret.Attrs = append(ret.Attrs, attrs)
	}
	log.Info(g.logTag+"vector layer loaded", zap.String("layer", ret.Name), zap.Int("features", ret.Len()))
	return
}

// 将图层转换到目标坐标系（WKT），坐标系一致时直接返回原图层
func (g *GdalToolbox) TransformLayer(layer *VectorLayer, wkt string) (ret *VectorLayer, err error) {
	if layer.CRS == "" || wkt == "" {
		err = ErrVoidSrid
		return
	}
	same, err := g.SameCRS(layer.CRS, wkt)
	if err != nil {
		return
	}
	if same {
		log.Info(g.logTag+"layer already in target crs", zap.String("layer", layer.Name))
		ret = layer
		return
	}
	ref, err := g.getWktRef(layer.CRS)
	if err != nil {
		return
	}
	tRef, err := g.getWktRef(wkt)
	if err != nil {
		return
	}
	ret = &VectorLayer{
		Name:  layer.Name,
		CRS:   wkt,
		Geoms: make([]GdalGeo, len(layer.Geoms)),
		Attrs: layer.Attrs,
	}
	for i, wkb := range layer.Geoms {
		if ret.Geoms[i], err = g.transformWkb(wkb, ref, tRef); err != nil {
			ret = nil
			return
		}
	}
	log.Info(g.logTag+"layer reprojected", zap.String("layer", layer.Name), zap.Int("features", len(layer.Geoms)))
	return
}

func (l *VectorLayer) ToCRS(g *GdalToolbox, wkt string) (*VectorLayer, error) {
	return g.TransformLayer(l, wkt)
}

// 图层总范围 [minX, minY, maxX, maxY]
func (g *GdalToolbox) LayerBounds(layer *VectorLayer) ([4]float64, error) {
	if layer.Len() == 0 {
		return [4]float64{}, ErrEmptyGeometries
	}
	return g.WkbBounds(layer.Geoms)
}

func (g *GdalToolbox) createVectorDs(path string, ref gdal.SpatialReference, layerName string) (ds gdal.DataSource, layer gdal.Layer, err error) {
	name := vectorDriverName(path)
	if name == "" {
		err = fmt.Errorf("%w: unknown vector format %s", ErrGdalDriverCreate, path)
		return
	}
	log.Info(g.logTag+"output vector file", zap.String("path", path), zap.String("driver", name))
	driver := gdal.OGRDriverByName(name)
	ds, ok := driver.Create(path, nil)
	if !ok {
		err = ErrGdalDriverCreate
		return
	}
	var opts []string
	if name == SHP_DRIVER_NAME {
		opts = []string{"ENCODING=" + SHAPE_ENCODING}
	}
	layer = ds.CreateLayer(layerName, ref, gdal.GT_Unknown, opts)
	return
}

// 将图层写入矢量文件（按扩展名选择驱动），属性均写为字符串字段
func (g *GdalToolbox) WriteVectorLayer(path string, layer *VectorLayer) (err error) {
	ref := gdal.SpatialReference{}
	if layer.CRS != "" {
		if ref, err = g.getWktRef(layer.CRS); err != nil {
			return
		}
	}
	name := layer.Name
	if name == "" {
		name = utils.GetFilenameWithoutExt(path)
	}
	ds, out, err := g.createVectorDs(path, ref, name)
	if err != nil {
		return
	}
	defer ds.Destroy() // 生成文件 + 释放资源
	fields := layer.FieldNames()
	for _, f := range fields {
		fd := gdal.CreateFieldDefinition(f, gdal.FT_String)
		fd.SetWidth(254)
		err = out.CreateField(fd, false)
		fd.Destroy()
		if err != nil {
			log.Error(g.logTag+"create field failed", zap.String("field", f), zap.Error(err))
			return
		}
	}
	var (
		def     = out.Definition()
		feature gdal.Feature
		geo     gdal.Geometry
		valid   int
		e       error
		gc      = make([]destroyable, 0, layer.Len())
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	for i, wkb := range layer.Geoms {
		feature = def.Create()
		gc = append(gc, feature)
		if geo, e = g.parseWKB(wkb, ref); e != nil {
			continue
		}
		if e = feature.SetGeometryDirectly(geo); e != nil {
			// 失败时GDAL已释放geo
			log.Error(g.logTag+"err in set geom of feature", zap.Error(e))
			continue
		}
		if i < len(layer.Attrs) {
			for j, f := range fields {
				feature.SetFieldString(j, layer.Attrs[i][f])
			}
		}
		if e = out.Create(feature); e != nil {
			log.Error(g.logTag+"err in create feature of layer", zap.Error(e))
			continue
		}
		valid++
	}
	log.Info(g.logTag+"vector file created", zap.String("path", path), zap.Int("total", layer.Len()), zap.Int("valid", valid))
	if valid == 0 && layer.Len() > 0 {
		err = fmt.Errorf("%w: %s", ErrNoValidFeature, path)
	}
	return
}
