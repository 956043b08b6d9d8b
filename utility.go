package rasvec

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
)

const snapEps = 1e-9

// GDAL仿射变换系数：
// x = gt[0] + col*gt[1] + row*gt[2]
// y = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

// 像元窗口（列偏移、行偏移、宽、高）
type Window struct {
	ColOff int
	RowOff int
	Width  int
	Height int
}

func FullWindow(width, height int) Window {
	return Window{Width: width, Height: height}
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

func (w Window) Size() int {
	return w.Width * w.Height
}

// 两窗口的交集，无交集时返回空窗口
func (w Window) Intersect(o Window) Window {
	c0 := max(w.ColOff, o.ColOff)
	r0 := max(w.RowOff, o.RowOff)
	c1 := min(w.ColOff+w.Width, o.ColOff+o.Width)
	r1 := min(w.RowOff+w.Height, o.RowOff+o.Height)
	if c1 <= c0 || r1 <= r0 {
		return Window{}
	}
	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}
}

// 栅格坐标(col, row)转地理坐标
func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return
}

func (gt GeoTransform) Invert() (inv GeoTransform, err error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if math.Abs(det) < 1e-15 || math.IsNaN(det) {
		err = ErrSingularTransform
		return
	}
	inv[1] = gt[5] / det
	inv[2] = -gt[2] / det
	inv[4] = -gt[4] / det
	inv[5] = gt[1] / det
	inv[0] = (gt[2]*gt[3] - gt[0]*gt[5]) / det
	inv[3] = (-gt[1]*gt[3] + gt[0]*gt[4]) / det
	return
}

// 窗口对应的仿射变换（原点平移到窗口左上角）
func (gt GeoTransform) ForWindow(w Window) GeoTransform {
	out := gt
	out[0], out[3] = gt.Apply(float64(w.ColOff), float64(w.RowOff))
	return out
}

// width*height栅格的范围 [minX, minY, maxX, maxY]
func (gt GeoTransform) Bounds(width, height int) [4]float64 {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = gt.Apply(0, 0)
	xs[1], ys[1] = gt.Apply(float64(width), 0)
	xs[2], ys[2] = gt.Apply(0, float64(height))
	xs[3], ys[3] = gt.Apply(float64(width), float64(height))
	return [4]float64{minOf(xs), minOf(ys), maxOf(xs), maxOf(ys)}
}

// 地理范围在width*height栅格中对应的窗口，pad时向外扩展半个像元
func (gt GeoTransform) WindowForBounds(bnds [4]float64, width, height int, pad bool) (w Window, err error) {
	inv, err := gt.Invert()
	if err != nil {
		return
	}
	var cols, rows [4]float64
	cols[0], rows[0] = inv.Apply(bnds[0], bnds[1])
	cols[1], rows[1] = inv.Apply(bnds[0], bnds[3])
	cols[2], rows[2] = inv.Apply(bnds[2], bnds[1])
	cols[3], rows[3] = inv.Apply(bnds[2], bnds[3])
	p := 0.0
	if pad {
		p = 0.5
	}
	c0 := int(math.Floor(snap(minOf(cols) - p)))
	c1 := int(math.Ceil(snap(maxOf(cols) + p)))
	r0 := int(math.Floor(snap(minOf(rows) - p)))
	r1 := int(math.Ceil(snap(maxOf(rows) + p)))
	w = Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}.Intersect(FullWindow(width, height))
	return
}

func (gt GeoTransform) IsIdentity() bool {
	return gt == GeoTransform{0, 1, 0, 0, 0, 1}
}

func (gt GeoTransform) String() string {
	return fmt.Sprintf("Affine(%v, %v, %v, %v, %v, %v)", gt[1], gt[2], gt[0], gt[4], gt[5], gt[3])
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEps {
		return r
	}
	return v
}

func minOf(vs [4]float64) float64 {
	return math.Min(math.Min(vs[0], vs[1]), math.Min(vs[2], vs[3]))
}

func maxOf(vs [4]float64) float64 {
	return math.Max(math.Max(vs[0], vs[1]), math.Max(vs[2], vs[3]))
}

// 检查NoData值能否以栅格数据类型无损表示
func CheckNoData(dt godal.DataType, nd float64) error {
	isInt := !math.IsNaN(nd) && !math.IsInf(nd, 0) && nd == math.Trunc(nd)
	var ok bool
	switch dt {
	case godal.Byte:
		ok = isInt && nd >= 0 && nd <= math.MaxUint8
	case godal.UInt16:
		ok = isInt && nd >= 0 && nd <= math.MaxUint16
	case godal.Int16:
		ok = isInt && nd >= math.MinInt16 && nd <= math.MaxInt16
	case godal.UInt32:
		ok = isInt && nd >= 0 && nd <= math.MaxUint32
	case godal.Int32:
		ok = isInt && nd >= math.MinInt32 && nd <= math.MaxInt32
	case godal.Float32:
		ok = math.IsNaN(nd) || math.IsInf(nd, 0) || math.Abs(nd) <= math.MaxFloat32
	case godal.Float64:
		ok = true
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDataType, dt)
	}
	if !ok {
		return fmt.Errorf("%w: %v as %s", ErrNoDataNotRepresentable, nd, dt)
	}
	return nil
}

func PointsToWkt(x1, x2, y1, y2 float64) string {
	return fmt.Sprintf("POLYGON((%[1]f %[3]f, %[1]f %[4]f, %[2]f %[4]f, %[2]f %[3]f, %[1]f %[3]f))", x1, x2, y1, y2)
}

// 范围 [minX, minY, maxX, maxY] 转WKT矩形
func BoundsToWkt(bnds [4]float64) string {
	return PointsToWkt(bnds[0], bnds[2], bnds[1], bnds[3])
}
