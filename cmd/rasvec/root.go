package main

import (
	"fmt"
	"os"

	"github.com/wgdzlh/rasvec"
	"github.com/wgdzlh/rasvec/conf"
	"github.com/wgdzlh/rasvec/log"

	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
	tmpDir   string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rasvec",
		Short:         "Mask and crop rasters with vector polygons",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&tmpDir, "tmp-dir", os.TempDir(), "directory for temporary files")

	rootCmd.AddCommand(newMaskCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newPreviewCommand())
	return rootCmd
}

func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// 读取配置（未指定文件时使用默认值）并初始化日志
func loadConfig() (c *conf.Config, err error) {
	if cfgPath == "" {
		c = conf.Default()
	} else if c, err = conf.Load(cfgPath); err != nil {
		return
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	log.Init(&c.Log)
	return
}

func newToolbox() *rasvec.GdalToolbox {
	return rasvec.NewGdalToolbox(tmpDir)
}
