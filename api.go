package rasvec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/airbusgeo/godal"
)

type GdalGeo = []byte

// 栅格元数据（对应写出新文件时需要复制的meta）
type RasterMeta struct {
	Driver    string
	DataType  godal.DataType
	Width     int
	Height    int
	Count     int
	CRS       string // WKT，可能为空
	Transform GeoTransform
	NoData    *float64 // 未设置时为nil
}

// 复制meta并覆盖NoData值，不修改原meta
func (m RasterMeta) WithNoData(nd float64) RasterMeta {
	m.NoData = &nd
	return m
}

// 复制meta并按窗口调整尺寸与仿射变换
func (m RasterMeta) WithWindow(w Window) RasterMeta {
	m.Width = w.Width
	m.Height = w.Height
	m.Transform = m.Transform.ForWindow(w)
	return m
}

// 栅格范围 [minX, minY, maxX, maxY]
func (m RasterMeta) Bounds() [4]float64 {
	return m.Transform.Bounds(m.Width, m.Height)
}

func (m RasterMeta) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	fmt.Fprintf(&sb, "'driver': '%s', 'dtype': '%s', ", m.Driver, strings.ToLower(m.DataType.String()))
	if m.NoData != nil {
		fmt.Fprintf(&sb, "'nodata': %v, ", *m.NoData)
	} else {
		sb.WriteString("'nodata': None, ")
	}
	fmt.Fprintf(&sb, "'width': %d, 'height': %d, 'count': %d, ", m.Width, m.Height, m.Count)
	crs := m.CRS
	if len(crs) > 48 {
		crs = crs[:45] + "..."
	}
	fmt.Fprintf(&sb, "'crs': '%s', 'transform': %s}", crs, m.Transform)
	return sb.String()
}

// 矢量图层（几何以WKB保存，坐标系为WKT）
type VectorLayer struct {
	Name  string
	CRS   string
	Geoms []GdalGeo
	Attrs []map[string]string
}

func (l *VectorLayer) Len() int {
	return len(l.Geoms)
}

// 所有要素属性字段名（排序后）
func (l *VectorLayer) FieldNames() []string {
	set := map[string]struct{}{}
	for _, attrs := range l.Attrs {
		for k := range attrs {
			set[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// 掩膜参数
type MaskOptions struct {
	NoData     *float64 // nil时使用源栅格NoData，源栅格未设置则为0
	Crop       bool     // 是否裁剪到矢量范围
	AllTouched bool     // 与矢量接触的像元均视为在内
	Invert     bool     // 反向掩膜：矢量内像元置为NoData
	Pad        bool     // 裁剪窗口外扩半个像元
	Bands      []int    // 从1开始的波段序号，空为全部波段
}

// 掩膜结果
type MaskResult struct {
	Data      [][]float64 // 各波段数据，按行存储
	Width     int
	Height    int
	Transform GeoTransform
	NoData    float64
	DataType  godal.DataType
	Window    Window // 结果在源栅格中对应的窗口
	Mask      []bool // true为保留原值的像元
}

// 结果中第band个波段(row, col)位置的值
func (r *MaskResult) At(band, row, col int) float64 {
	return r.Data[band][row*r.Width+col]
}

// 结果对应的写出meta
func (r *MaskResult) Meta(src RasterMeta) RasterMeta {
	m := src.WithWindow(r.Window).WithNoData(r.NoData)
	m.Count = len(r.Data)
	return m
}
