package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/zoeyai/osim/pkg/plot"
	"github.com/zoeyai/osim/pkg/vision"
)

func newRankCmd() *cobra.Command {
	var (
		chart    string
		drawBest string
		jsonMode bool
		noBar    bool
	)

	cmd := &cobra.Command{
		Use:   "rank <reference> <candidates...>",
		Short: "将参考图像与多张候选图像比对并按评分排名",
		Long:  "候选图像支持通配符，例如 osim rank ref.png 'samples/*.png'",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := expandPaths(args[1:])
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return fmt.Errorf("没有找到候选图像: %v", args[1:])
			}

			var opts []vision.Option
			if drawBest != "" {
				opts = append(opts, vision.WithDrawOutput(outputPath(drawBest)))
			}
			if !noBar && !jsonMode {
				bar := progressbar.NewOptions(len(candidates),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("比对中"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				defer bar.Finish()
				opts = append(opts, vision.WithProgress(func(done, total int, name string) {
					bar.Describe(filepath.Base(name))
					_ = bar.Set(done)
				}))
			}

			ranking, err := vision.Rank(args[0], candidates, opts...)
			if err != nil {
				return err
			}

			if chart != "" {
				title := "Lowe score vs " + filepath.Base(ranking.Reference)
				if err := plot.ScoreChart(ranking.Candidates(), title, outputPath(chart)); err != nil {
					fmt.Printf("[WARN] 绘制评分图失败: %v\n", err)
				} else if !jsonMode {
					fmt.Printf("[INFO] 评分图已保存到 %s\n", outputPath(chart))
				}
			}

			if jsonMode {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(ranking)
			}
			printRanking(ranking)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&chart, "chart", "", "评分柱状图保存路径")
	f.StringVar(&drawBest, "draw-best", "", "最相似候选的匹配绘制结果保存路径")
	f.BoolVar(&jsonMode, "json", false, "以 JSON 格式输出")
	f.BoolVar(&noBar, "no-progress", false, "不显示进度条")
	return cmd
}

// expandPaths 展开通配符，不含通配符的参数原样保留
func expandPaths(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("无效的通配符 %q: %w", p, err)
		}
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func printRanking(r *vision.Ranking) {
	fmt.Println("========================================")
	fmt.Printf("参考图像: %s\n", r.Reference)
	fmt.Println("========================================")
	for i, res := range r.Results {
		fmt.Printf("%3d. %-40s %6d  (内点 %d)\n", i+1, res.Candidate, res.Score, res.Inliers)
	}
	if r.Best != nil {
		fmt.Printf("[INFO] 最相似: %s (评分 %d)\n", r.Best.Candidate, r.Best.Score)
		if r.Best.Output != "" {
			fmt.Printf("[INFO] 匹配结果已保存到 %s\n", r.Best.Output)
		}
	}
}
