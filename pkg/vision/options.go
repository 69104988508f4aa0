package vision

import (
	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

// Options 全局配置选项
type Options struct {
	// 特征点配置
	Detector    cv.DetectorKind // 特征点算法，默认 sift
	ORBFeatures int             // ORB 最大特征点数，默认 15000
	ReadMode    cv.ReadMode     // 图像读取模式，默认彩色

	// 匹配配置
	Matcher        cv.MatcherKind // 匹配器，默认 bf
	RatioThreshold float64        // Lowe 比率阈值，默认 0.7
	K              int            // KNN 近邻数，默认 2

	// 绘图配置
	PlotMatches int // 绘制的匹配数量，默认 15
	PlotWidth   int // 输出图像最大宽度，0 表示不缩放
}

// DefaultOptions 默认配置
var DefaultOptions = Options{
	Detector:    cv.DefaultDetector,
	ORBFeatures: 15000,
	ReadMode:    cv.ReadColor,

	Matcher:        cv.DefaultMatcher,
	RatioThreshold: match.DefaultRatio,
	K:              cv.DefaultK,

	PlotMatches: match.DefaultPlotMatches,
	PlotWidth:   0,
}

// globalOptions 全局配置实例
var globalOptions = DefaultOptions

// GetOptions 获取当前全局配置
func GetOptions() *Options {
	return &globalOptions
}

// SetOptions 设置全局配置
func SetOptions(opts Options) {
	globalOptions = opts
}

// ResetOptions 重置为默认配置
func ResetOptions() {
	globalOptions = DefaultOptions
}

// Option 配置选项函数类型
type Option func(*compareConfig)

// ProgressFunc 批量比对进度回调
type ProgressFunc func(done, total int, name string)

// compareConfig 比对时的临时配置
type compareConfig struct {
	Options
	selection  *match.Selection
	drawOutput string
	progress   ProgressFunc
}

// defaultCompareConfig 默认比对配置
func defaultCompareConfig() *compareConfig {
	return &compareConfig{Options: globalOptions}
}

func (c *compareConfig) plotSelection() match.Selection {
	if c.selection != nil {
		return *c.selection
	}
	return match.Count(c.PlotMatches)
}

// WithDetector 设置特征点算法
func WithDetector(kind cv.DetectorKind) Option {
	return func(c *compareConfig) {
		c.Detector = kind
	}
}

// WithMatcher 设置匹配器
func WithMatcher(kind cv.MatcherKind) Option {
	return func(c *compareConfig) {
		c.Matcher = kind
	}
}

// WithThreshold 设置 Lowe 比率阈值
func WithThreshold(threshold float64) Option {
	return func(c *compareConfig) {
		c.RatioThreshold = threshold
	}
}

// WithK 设置 KNN 近邻数
func WithK(k int) Option {
	return func(c *compareConfig) {
		c.K = k
	}
}

// WithORBFeatures 设置 ORB 最大特征点数
func WithORBFeatures(n int) Option {
	return func(c *compareConfig) {
		c.ORBFeatures = n
	}
}

// WithReadMode 设置图像读取模式
func WithReadMode(mode cv.ReadMode) Option {
	return func(c *compareConfig) {
		c.ReadMode = mode
	}
}

// WithSelection 设置绘制时的匹配筛选条件
func WithSelection(sel match.Selection) Option {
	return func(c *compareConfig) {
		c.selection = &sel
	}
}

// WithPlotWidth 设置输出图像最大宽度
func WithPlotWidth(width int) Option {
	return func(c *compareConfig) {
		c.PlotWidth = width
	}
}

// WithDrawOutput 将匹配绘制结果保存到文件
func WithDrawOutput(path string) Option {
	return func(c *compareConfig) {
		c.drawOutput = path
	}
}

// WithProgress 设置批量比对进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(c *compareConfig) {
		c.progress = fn
	}
}
