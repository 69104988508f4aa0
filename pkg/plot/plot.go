// Package plot 使用 gonum/plot 绘制比对结果图表
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/zoeyai/osim/pkg/match"
)

var (
	barColor  = color.RGBA{R: 46, G: 134, B: 193, A: 255}
	bestColor = color.RGBA{R: 39, G: 174, B: 96, A: 255}
	histColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

const (
	chartHeight = 5 * vg.Inch
	minWidth    = 6 * vg.Inch
	barWidth    = 20
)

// ErrNoData 没有可绘制的数据
var ErrNoData = errors.New("没有可绘制的数据")

// ScoreChart 绘制候选图像评分柱状图，最高分高亮
func ScoreChart(cands []match.Candidate, title, path string) error {
	if len(cands) == 0 {
		return ErrNoData
	}

	values := make(plotter.Values, len(cands))
	names := make([]string, len(cands))
	for i, c := range cands {
		values[i] = float64(c.Score)
		names[i] = filepath.Base(c.Name)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Lowe score"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return fmt.Errorf("创建柱状图失败: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)

	if _, idx, ok := match.Top(cands); ok {
		best := make(plotter.Values, len(cands))
		best[idx] = values[idx]
		hl, err := plotter.NewBarChart(best, vg.Points(barWidth))
		if err != nil {
			return fmt.Errorf("创建柱状图失败: %w", err)
		}
		hl.Color = bestColor
		hl.LineStyle.Width = 0
		p.Add(hl)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.1

	width := vg.Length(len(cands)) * vg.Points(barWidth*2)
	return save(p, max(width, minWidth), path)
}

// DistanceHistogram 绘制匹配距离分布直方图
func DistanceHistogram(matches []match.Match, title, path string) error {
	if len(matches) == 0 {
		return ErrNoData
	}

	values := plotter.Values(match.Distances(matches))

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "distance"
	p.Y.Label.Text = "count"

	bins := min(max(len(values)/10, 5), 50)
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("创建直方图失败: %w", err)
	}
	h.FillColor = histColor
	p.Add(h)

	return save(p, minWidth, path)
}

func save(p *plot.Plot, width vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := p.Save(width, chartHeight, path); err != nil {
		return fmt.Errorf("保存图表失败: %w", err)
	}
	return nil
}
