package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/pkg/vision"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "显示版本信息",
		Annotations: map[string]string{annotationSkipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("osim v%s\n", Version)
			fmt.Printf("  构建时间: %s\n", BuildTime)
			fmt.Printf("  Git 提交: %s\n", GitCommit)
			fmt.Printf("  vision:   v%s\n", vision.Version)
			fmt.Printf("  OpenCV:   %s\n", gocv.OpenCVVersion())
			fmt.Printf("  Go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
