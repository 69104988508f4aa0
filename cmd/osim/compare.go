package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/plot"
	"github.com/zoeyai/osim/pkg/vision"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

const stdinName = "-"

func newCompareCmd() *cobra.Command {
	var (
		draw     string
		out      string
		hist     string
		show     bool
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "compare <reference> <candidate>",
		Short: "比对两张图像并输出 Lowe 评分",
		Long:  "候选图像为 - 时从标准输入读取 (png, jpeg, gif, webp, bmp, tiff)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []vision.Option
			if draw != "" {
				sel, err := match.ParseSelection(draw)
				if err != nil {
					return err
				}
				opts = append(opts, vision.WithSelection(sel))
			}
			if show && out == "" {
				out = "match.png"
			}
			if out != "" {
				out = outputPath(out)
				opts = append(opts, vision.WithDrawOutput(out))
			}

			res, err := runCompare(cmd, args[0], args[1], opts)
			if err != nil {
				return err
			}

			if hist != "" {
				title := fmt.Sprintf("%s vs %s", filepath.Base(res.Reference), filepath.Base(res.Candidate))
				if err := plot.DistanceHistogram(res.Matches, title, outputPath(hist)); err != nil {
					fmt.Printf("[WARN] 绘制直方图失败: %v\n", err)
				}
			}

			if jsonMode {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printComparison(res)

			if show && res.Output != "" {
				img, err := cv.ReadImage(res.Output, cv.ReadColor)
				if err != nil {
					return err
				}
				defer img.Close()
				cv.Show("osim - "+filepath.Base(res.Candidate), img)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&draw, "draw", "", "绘制条件: 整数表示前 N 个匹配, 小数表示距离阈值")
	f.StringVarP(&out, "out", "o", "", "匹配绘制结果保存路径")
	f.StringVar(&hist, "hist", "", "距离直方图保存路径")
	f.BoolVar(&show, "show", false, "在窗口中显示匹配结果")
	f.BoolVar(&jsonMode, "json", false, "以 JSON 格式输出")
	return cmd
}

// runCompare 候选图像为 "-" 时从标准输入解码
func runCompare(cmd *cobra.Command, reference, candidate string, opts []vision.Option) (*vision.Comparison, error) {
	if candidate != stdinName {
		return vision.Compare(reference, candidate, opts...)
	}
	img, err := cv.DecodeImage(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("读取标准输入失败: %w", err)
	}
	return vision.CompareImage(reference, "stdin", img, opts...)
}

func printComparison(res *vision.Comparison) {
	fmt.Println("========================================")
	fmt.Printf("参考图像: %s\n", res.Reference)
	fmt.Printf("候选图像: %s\n", res.Candidate)
	fmt.Println("========================================")
	fmt.Printf("算法:     %s / %s (ratio=%.2f)\n", res.Detector, res.Matcher, res.Ratio)
	fmt.Printf("特征点:   %d / %d\n", res.Keypoints[0], res.Keypoints[1])
	fmt.Printf("评分:     %d / %d\n", res.Score, res.Correspondences)
	fmt.Printf("内点:     %d (%.1f%%)\n", res.Inliers, res.InlierRate*100)
	fmt.Printf("距离:     mean=%.2f std=%.2f min=%.2f max=%.2f\n",
		res.Distances.Mean, res.Distances.StdDev, res.Distances.Min, res.Distances.Max)
	if res.Output != "" {
		fmt.Printf("[INFO] 匹配结果已保存到 %s\n", res.Output)
	}
	fmt.Printf("耗时:     %.0fms\n", res.Time)
}
