package rasvec

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/rasvec/log"

	"github.com/airbusgeo/godal"
	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

type GdalToolbox struct {
	refMap map[string]gdal.SpatialReference
	rLock  sync.Mutex
	tmpDir string
	logTag string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

var registerOnce sync.Once

// 初始化GDAL工具箱，tmpDir为可选的临时目录路径（未提供的话为当前目录）
func NewGdalToolbox(tmpDir ...string) *GdalToolbox {
	registerOnce.Do(godal.RegisterAll)
	g := &GdalToolbox{
		refMap: map[string]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
	if len(tmpDir) > 0 && tmpDir[0] != "" {
		g.tmpDir = tmpDir[0]
	}
	return g
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	key := "EPSG:" + strconv.Itoa(srid)
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[key]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil {
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 固定为(经度,纬度)的传统GIS坐标序，避免转换坐标系时出现次序倒置
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[key] = ref
	return
}

// 获取WKT对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getWktRef(wkt string) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[wkt]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromWKT(wkt); err != nil {
		log.Error(g.logTag+"parse ref wkt failed", zap.Error(err))
		ref.Destroy()
		err = ErrInvalidWKT
		return
	}
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[wkt] = ref
	return
}

func (g *GdalToolbox) getSrid(sp gdal.SpatialReference) (srid int, err error) {
	wkt, _ := sp.ToWKT()
	rawId, ok := sp.AttrValue("AUTHORITY", 1)
	if !ok {
		if strings.Contains(wkt, "CGCS_2000") {
			rawId = "4490"
		} else {
			err = ErrVoidSrid
			return
		}
	}
	srid, err = strconv.Atoi(rawId)
	log.Debug(g.logTag+"got srid from sp", zap.String("id", rawId))
	return
}

// EPSG代码转WKT
func (g *GdalToolbox) SridToWkt(srid int) (wkt string, err error) {
	ref, err := g.getSridRef(srid)
	if err != nil {
		return
	}
	return ref.ToWKT()
}

// 判断两个WKT坐标系是否一致，任一为空时返回false
func (g *GdalToolbox) SameCRS(a, b string) (same bool, err error) {
	if a == "" || b == "" {
		return
	}
	if a == b {
		same = true
		return
	}
	refA, err := g.getWktRef(a)
	if err != nil {
		return
	}
	refB, err := g.getWktRef(b)
	if err != nil {
		return
	}
	same = refA.IsSame(refB)
	return
}

func (g *GdalToolbox) parseWKB(wkb GdalGeo, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	ret, err = gdal.CreateFromWKB(wkb, ref, len(wkb))
	if err != nil {
		log.Error(g.logTag+"parse wkb failed", zap.Error(err))
	}
	return
}

// 转换WKB坐标系
func (g *GdalToolbox) transformWkb(wkb GdalGeo, ref, tRef gdal.SpatialReference) (ret GdalGeo, err error) {
	geo, err := g.parseWKB(wkb, ref)
	if err != nil {
		return
	}
	defer geo.Destroy()
	if err = geo.TransformTo(tRef); err != nil {
		log.Error(g.logTag+"geo transform failed", zap.Error(err))
		return
	}
	ret, err = geo.ToWKB()
	return
}

// 转换WKB坐标系（EPSG代码）
func (g *GdalToolbox) TransformWkb(wkb GdalGeo, srid, tSrid int) (ret GdalGeo, err error) {
	if tSrid == srid {
		ret = wkb
		return
	}
	ref, err := g.getSridRef(srid)
	if err != nil {
		return
	}
	tRef, err := g.getSridRef(tSrid)
	if err != nil {
		return
	}
	return g.transformWkb(wkb, ref, tRef)
}

// WKT转WKB
func (g *GdalToolbox) WktToWkb(wkt string) (wkb GdalGeo, err error) {
	geo, err := gdal.CreateFromWKT(wkt, gdal.SpatialReference{})
	if err != nil {
		log.Error(g.logTag+"parse wkt failed", zap.Error(err))
		err = ErrInvalidWKT
		return
	}
	wkb, err = geo.ToWKB()
	geo.Destroy()
	return
}

// 获取多个WKB的总范围 [minX, minY, maxX, maxY]
func (g *GdalToolbox) WkbBounds(gs []GdalGeo) (bnds [4]float64, err error) {
	var geo gdal.Geometry
	for i, wkb := range gs {
		if geo, err = g.parseWKB(wkb, gdal.SpatialReference{}); err != nil {
			return
		}
		env := geo.Envelope()
		geo.Destroy()
		if i == 0 {
			bnds = [4]float64{env.MinX(), env.MinY(), env.MaxX(), env.MaxY()}
			continue
		}
		bnds[0] = min(bnds[0], env.MinX())
		bnds[1] = min(bnds[1], env.MinY())
		bnds[2] = max(bnds[2], env.MaxX())
		bnds[3] = max(bnds[3], env.MaxY())
	}
	return
}
