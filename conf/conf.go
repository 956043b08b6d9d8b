package conf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/rasvec"
	"github.com/wgdzlh/rasvec/log"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrUnknownConfigFormat = errors.New("unknown config format")

// 配置文件，yaml或toml
type Config struct {
	Workflow Workflow   `yaml:"workflow" toml:"workflow"`
	Log      log.Config `yaml:"log" toml:"log"`
}

// 掩膜流程配置，字段含义同rasvec.WorkflowOptions
type Workflow struct {
	Raster      string   `yaml:"raster" toml:"raster"`
	Vector      string   `yaml:"vector" toml:"vector"`
	Layer       int      `yaml:"layer" toml:"layer"`
	Out         string   `yaml:"out" toml:"out"`
	NoData      *float64 `yaml:"nodata" toml:"nodata"` // 未配置时使用源栅格NoData，源栅格也未设置则为0
	Crop        bool     `yaml:"crop" toml:"crop"`
	AllTouched  bool     `yaml:"all_touched" toml:"all_touched"`
	Invert      bool     `yaml:"invert" toml:"invert"`
	Pad         bool     `yaml:"pad" toml:"pad"`
	Bands       []int    `yaml:"bands" toml:"bands"`
	Simplify    float64  `yaml:"simplify" toml:"simplify"`
	FillHoles   bool     `yaml:"fill_holes" toml:"fill_holes"`
	Dissolve    bool     `yaml:"dissolve" toml:"dissolve"`
	Compress    bool     `yaml:"compress" toml:"compress"`
	Preview     string   `yaml:"preview" toml:"preview"`
	PreviewSide int      `yaml:"preview_side" toml:"preview_side"`
}

func Default() *Config {
	return &Config{
		Workflow: Workflow{
			PreviewSide: rasvec.DefaultPreviewSide,
		},
		Log: log.Config{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// 按扩展名解析配置文件，未配置的项保留默认值
func Load(path string) (c *Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	c = Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err = dec.Decode(c); errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml":
		var md toml.MetaData
		if md, err = toml.Decode(string(b), c); err == nil {
			if keys := md.Undecoded(); len(keys) > 0 {
				err = fmt.Errorf("unknown config keys: %v", keys)
			}
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	if err != nil {
		c = nil
	}
	return
}

func (w *Workflow) Options() rasvec.WorkflowOptions {
	opts := rasvec.WorkflowOptions{
		RasterPath:  w.Raster,
		VectorPath:  w.Vector,
		VectorLayer: w.Layer,
		OutPath:     w.Out,
		NoData:      w.NoData,
		Crop:        w.Crop,
		AllTouched:  w.AllTouched,
		Invert:      w.Invert,
		Pad:         w.Pad,
		Bands:       w.Bands,
		Simplify:    w.Simplify,
		FillHoles:   w.FillHoles,
		Dissolve:    w.Dissolve,
		PreviewPath: w.Preview,
		PreviewSide: w.PreviewSide,
	}
	if w.Compress {
		opts.CreateOptions = []string{rasvec.COMPRESS_OPTION}
	}
	return opts
}
