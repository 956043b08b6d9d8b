package rasvec

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/wgdzlh/rasvec/log"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	panelGap    = 8
	panelTitleH = 18
)

// 按有效值最小/最大值线性拉伸为灰度图，NoData像元透明；最长边不超过maxSide（<=0时不缩放）
func RenderBand(data []float64, width, height int, nodata *float64, maxSide int) (image.Image, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrWrongBufferSize, len(data), width, height)
	}
	valid := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0) && (nodata == nil || v != *nodata)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if valid(v) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, v := range data {
		if !valid(v) {
			continue
		}
		gray := uint8(math.Round((v - lo) * scale))
		img.SetNRGBA(i%width, i/width, color.NRGBA{R: gray, G: gray, B: gray, A: 0xff})
	}
	if maxSide <= 0 || max(width, height) <= maxSide {
		return img, nil
	}
	ratio := float64(maxSide) / float64(max(width, height))
	w := max(1, int(math.Round(float64(width)*ratio)))
	h := max(1, int(math.Round(float64(height)*ratio)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// 单个栅格波段的预览图
func (g *GdalToolbox) RenderPreview(r *Raster, band, maxSide int) (img image.Image, err error) {
	data, err := r.ReadBand(band)
	if err != nil {
		return
	}
	img, err = RenderBand(data, r.Meta.Width, r.Meta.Height, r.Meta.NoData, maxSide)
	if err == nil {
		log.Info(g.logTag+"preview rendered", zap.String("tif", r.Path), zap.Int("band", band), zap.Stringer("size", img.Bounds().Size()))
	}
	return
}

// 掩膜结果第band个波段（从0开始）的预览图
func (r *MaskResult) Preview(band, maxSide int) (image.Image, error) {
	if band < 0 || band >= len(r.Data) {
		return nil, fmt.Errorf("%w: %d", ErrWrongBand, band)
	}
	nd := r.NoData
	return RenderBand(r.Data[band], r.Width, r.Height, &nd, maxSide)
}

// 带标题的预览面板
type Panel struct {
	Title string
	Image image.Image
}

// 将多张预览图横向拼接，每张上方绘制标题
func RenderPanels(panels ...Panel) image.Image {
	w, h := panelGap, 0
	for _, p := range panels {
		b := p.Image.Bounds()
		w += b.Dx() + panelGap
		h = max(h, b.Dy())
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h+panelTitleH+2*panelGap))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	x := panelGap
	for _, p := range panels {
		b := p.Image.Bounds()
		d := font.Drawer{
			Dst:  out,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(x, panelGap+13),
		}
		d.DrawString(p.Title)
		top := panelGap + panelTitleH
		draw.Draw(out, image.Rect(x, top, x+b.Dx(), top+b.Dy()), p.Image, b.Min, draw.Over)
		x += b.Dx() + panelGap
	}
	return out
}

func SavePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	err = png.Encode(f, img)
	return
}
