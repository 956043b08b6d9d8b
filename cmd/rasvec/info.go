package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <raster>",
		Short: "Print raster metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			meta, err := newToolbox().RasterInfo(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), meta)
			fmt.Fprintf(cmd.OutOrStdout(), "bounds: %v\n", meta.Bounds())
			return nil
		},
	}
}
