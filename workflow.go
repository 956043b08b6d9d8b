package rasvec

import (
	"errors"
	"image"

	"github.com/wgdzlh/rasvec/log"

	"go.uber.org/zap"
)

// 栅格-矢量掩膜流程参数
type WorkflowOptions struct {
	RasterPath    string
	VectorPath    string
	VectorLayer   int
	OutPath       string
	NoData        *float64
	Crop          bool
	AllTouched    bool
	Invert        bool
	Pad           bool
	Bands         []int
	Simplify      float64 // >0时先按该容差简化矢量
	FillHoles     bool
	Dissolve      bool
	CreateOptions []string
	PreviewPath   string // 非空时输出 Original / Crop / Mask 对比图
	PreviewSide   int
}

func (o WorkflowOptions) maskOptions() MaskOptions {
	return MaskOptions{
		NoData:     o.NoData,
		Crop:       o.Crop,
		AllTouched: o.AllTouched,
		Invert:     o.Invert,
		Pad:        o.Pad,
		Bands:      o.Bands,
	}
}

type WorkflowResult struct {
	Source  RasterMeta
	Vector  *VectorLayer // 已转换到栅格坐标系
	Mask    *MaskResult
	OutMeta RasterMeta
	Output  *Raster // 重新打开的输出栅格，由调用方Close
}

// 打开栅格与矢量 -> 矢量转到栅格坐标系 -> 掩膜 -> 写出 -> 重新打开输出
func (g *GdalToolbox) RunMaskWorkflow(opts WorkflowOptions) (res *WorkflowResult, err error) {
	log.Info(g.logTag+"start mask workflow", zap.String("raster", opts.RasterPath), zap.String("vector", opts.VectorPath),
		zap.String("out", opts.OutPath), zap.Bool("crop", opts.Crop))
	src, err := g.OpenRaster(opts.RasterPath)
	if err != nil {
		return
	}
	defer src.Close()
	layer, err := g.OpenVectorLayer(opts.VectorPath, opts.VectorLayer)
	if err != nil {
		return
	}
	if src.Meta.CRS != "" && layer.CRS != "" {
		if layer, err = layer.ToCRS(g, src.Meta.CRS); err != nil {
			return
		}
	} else {
		log.Warn(g.logTag+"skip reprojection, crs unknown", zap.String("vector", opts.VectorPath))
	}
	if layer, err = g.prepareLayer(layer, opts); err != nil {
		return
	}
	masked, err := g.MaskRaster(src, layer, opts.maskOptions())
	if err != nil {
		return
	}
	outMeta := masked.Meta(src.Meta)
	if err = g.WriteRaster(opts.OutPath, outMeta, masked.Data, opts.CreateOptions...); err != nil {
		return
	}
	out, err := g.OpenRaster(opts.OutPath)
	if err != nil {
		return
	}
	res = &WorkflowResult{
		Source:  src.Meta,
		Vector:  layer,
		Mask:    masked,
		OutMeta: outMeta,
		Output:  out,
	}
	if opts.PreviewPath != "" {
		if err = g.savePanels(opts, src, layer, out); err != nil {
			out.Close()
			res = nil
			return
		}
	}
	log.Info(g.logTag+"mask workflow done", zap.String("out", opts.OutPath))
	return
}

// 掩膜前的矢量预处理：简化、去洞、融合
func (g *GdalToolbox) prepareLayer(layer *VectorLayer, opts WorkflowOptions) (ret *VectorLayer, err error) {
	ret = layer
	if ret, err = g.SimplifyLayer(ret, opts.Simplify); err != nil {
		return
	}
	if opts.FillHoles {
		if ret, err = g.FillHoles(ret); err != nil {
			return
		}
	}
	if opts.Dissolve {
		ret, err = g.DissolveLayer(ret)
	}
	return
}

// Original / Crop / Mask 三联图
func (g *GdalToolbox) savePanels(opts WorkflowOptions, src *Raster, layer *VectorLayer, out *Raster) (err error) {
	side := opts.PreviewSide
	if side <= 0 {
		side = DefaultPreviewSide
	}
	var orig, crop, mask image.Image
	if orig, err = g.RenderPreview(src, 1, side); err != nil {
		return
	}
	cropOpts := opts.maskOptions()
	cropOpts.Crop = true
	cropOpts.Bands = []int{1}
	cropped, err := g.MaskRaster(src, layer, cropOpts)
	if errors.Is(err, ErrNoOverlap) {
		// 矢量与栅格不相交时无法裁剪，以整幅（全NoData）结果代替
		log.Warn(g.logTag+"nothing to crop, crop panel uses full grid")
		cropOpts.Crop = false
		cropped, err = g.MaskRaster(src, layer, cropOpts)
	}
	if err != nil {
		return
	}
	if crop, err = cropped.Preview(0, side); err != nil {
		return
	}
	if mask, err = g.RenderPreview(out, 1, side); err != nil {
		return
	}
	img := RenderPanels(
		Panel{Title: "Original", Image: orig},
		Panel{Title: "Crop", Image: crop},
		Panel{Title: "Mask", Image: mask},
	)
	if err = SavePNG(opts.PreviewPath, img); err != nil {
		log.Error(g.logTag+"save preview failed", zap.String("png", opts.PreviewPath), zap.Error(err))
		return
	}
	log.Info(g.logTag+"preview saved", zap.String("png", opts.PreviewPath))
	return
}
