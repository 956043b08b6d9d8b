package rasvec

import (
	"github.com/wgdzlh/rasvec/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 对图层中每个面做处理，返回新图层（坐标系与属性不变）
func (g *GdalToolbox) mapLayer(layer *VectorLayer, fn func(geo gdal.Geometry) (gdal.Geometry, error)) (ret *VectorLayer, err error) {
	ret = &VectorLayer{
		Name:  layer.Name,
		CRS:   layer.CRS,
		Geoms: make([]GdalGeo, 0, layer.Len()),
		Attrs: make([]map[string]string, 0, layer.Len()),
	}
	var geo, out gdal.Geometry
	for i, wkb := range layer.Geoms {
		if geo, err = g.parseWKB(wkb, gdal.SpatialReference{}); err != nil {
			return nil, err
		}
		out, err = fn(geo)
		geo.Destroy()
		if err != nil {
			return nil, err
		}
		if out.IsEmpty() {
			log.Warn(g.logTag+"geometry vanished, dropped", zap.Int("idx", i))
			out.Destroy()
			continue
		}
		wkb, err = out.ToWKB()
		out.Destroy()
		if err != nil {
			return nil, err
		}
		ret.Geoms = append(ret.Geoms, wkb)
		if i < len(layer.Attrs) {
			ret.Attrs = append(ret.Attrs, layer.Attrs[i])
		}
	}
	return
}

// 保持拓扑的简化，t为容差（图层坐标系单位）
func (g *GdalToolbox) SimplifyLayer(layer *VectorLayer, t float64) (*VectorLayer, error) {
	if t <= 0 {
		return layer, nil
	}
	log.Info(g.logTag+"simplify layer", zap.String("layer", layer.Name), zap.Float64("tolerance", t))
	return g.mapLayer(layer, func(geo gdal.Geometry) (gdal.Geometry, error) {
		return geo.SimplifyPreservingTopology(t), nil
	})
}

// 去除面的内环（洞）
func (g *GdalToolbox) FillHoles(layer *VectorLayer) (*VectorLayer, error) {
	log.Info(g.logTag+"fill holes of layer", zap.String("layer", layer.Name))
	return g.mapLayer(layer, func(geo gdal.Geometry) (ret gdal.Geometry, err error) {
		ret = geo.Clone()
		switch ret.Type() {
		case gdal.GT_Polygon, gdal.GT_Polygon25D:
			err = removeHolesInPolygon(ret)
		case gdal.GT_MultiPolygon, gdal.GT_MultiPolygon25D:
			for i, n := 0, ret.GeometryCount(); i < n && err == nil; i++ {
				err = removeHolesInPolygon(ret.Geometry(i))
			}
		default:
			err = ErrGdalWrongGeoType
		}
		if err != nil {
			ret.Destroy()
		}
		return
	})
}

// 将所有面合并为一个（重叠部分融合），属性丢弃
func (g *GdalToolbox) DissolveLayer(layer *VectorLayer) (ret *VectorLayer, err error) {
	if layer.Len() == 0 {
		err = ErrEmptyGeometries
		return
	}
	merged := gdal.Create(gdal.GT_MultiPolygon)
	defer merged.Destroy()
	var geo gdal.Geometry
	for _, wkb := range layer.Geoms {
		if geo, err = g.parseWKB(wkb, gdal.SpatialReference{}); err != nil {
			return
		}
		switch geo.Type() {
		case gdal.GT_Polygon, gdal.GT_Polygon25D:
			err = merged.AddGeometry(geo)
		case gdal.GT_MultiPolygon, gdal.GT_MultiPolygon25D:
			for i, n := 0, geo.GeometryCount(); i < n && err == nil; i++ {
				err = merged.AddGeometry(geo.Geometry(i))
			}
		default:
			err = ErrGdalWrongGeoType
		}
		geo.Destroy()
		if err != nil {
			log.Error(g.logTag+"merge geometry failed", zap.Error(err))
			return
		}
	}
	union := merged.UnionCascaded() // 消除重叠
	defer union.Destroy()
	wkb, err := union.ToWKB()
	if err != nil {
		return
	}
	ret = &VectorLayer{Name: layer.Name, CRS: layer.CRS, Geoms: []GdalGeo{wkb}}
	log.Info(g.logTag+"layer dissolved", zap.String("layer", layer.Name), zap.Int("from", layer.Len()))
	return
}

func removeHolesInPolygon(geo gdal.Geometry) (err error) {
	for i, n := 1, geo.GeometryCount(); i < n; i++ {
		if err = geo.RemoveGeometry(1, true); err != nil {
			return
		}
	}
	return
}
