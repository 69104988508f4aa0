package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zoeyai/osim/pkg/vision"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

func newKeypointsCmd() *cobra.Command {
	var (
		out  string
		show bool
	)

	cmd := &cobra.Command{
		Use:   "keypoints <image>",
		Short: "检测并绘制单张图像的特征点",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if show && out == "" {
				out = "keypoints.png"
			}
			if out != "" {
				out = outputPath(out)
			}

			n, err := vision.Keypoints(args[0], out)
			if err != nil {
				return err
			}
			fmt.Printf("[INFO] %s: %d 个特征点 (%s)\n", args[0], n, vision.GetOptions().Detector)
			if out == "" {
				return nil
			}
			fmt.Printf("[INFO] 特征点绘制结果已保存到 %s\n", out)

			if show {
				img, err := cv.ReadImage(out, cv.ReadColor)
				if err != nil {
					return err
				}
				defer img.Close()
				cv.Show("osim - "+filepath.Base(args[0]), img)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "绘制结果保存路径")
	cmd.Flags().BoolVar(&show, "show", false, "在窗口中显示结果")
	return cmd
}
