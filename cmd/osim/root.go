package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zoeyai/osim/internal/logger"
	"github.com/zoeyai/osim/pkg/config"
	"github.com/zoeyai/osim/pkg/vision"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configFile string
	logLevel   string
	detector   string
	matcher    string
	threshold  float64
	k          int
	grayscale  bool
}

var (
	flags globalFlags
	cfg   *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "osim",
		Short: "基于特征点的图像相似度比对工具",
		Long: `osim 使用 SIFT / SURF / ORB 特征点和 Lowe 比率测试
计算图像之间的相似度评分，可与多张候选图像比对并排名。`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Default().Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "配置文件路径 (默认 ~/.osim/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "日志级别 (DEBUG, INFO, WARN, ERROR)")
	pf.StringVarP(&flags.detector, "detector", "d", "", "特征点算法 (sift, surf, orb)")
	pf.StringVarP(&flags.matcher, "matcher", "m", "", "匹配器 (bf, flann)")
	pf.Float64VarP(&flags.threshold, "threshold", "t", 0, "Lowe 比率阈值")
	pf.IntVarP(&flags.k, "k", "k", 0, "KNN 近邻数")
	pf.BoolVar(&flags.grayscale, "gray", false, "以灰度模式读取图像")

	root.AddCommand(
		newCompareCmd(),
		newRankCmd(),
		newKeypointsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// initConfig 合并配置文件、环境变量与命令行参数
// 命令行参数优先级最高
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Printf("[WARN] 加载 .env 失败: %v\n", err)
	}

	skip := skipsSetup(cmd)

	var err error
	cfg, err = configManager().Resolve()
	if err != nil {
		if !skip {
			return err
		}
		fmt.Printf("[WARN] %v\n", err)
	}

	pf := cmd.Root().PersistentFlags()
	if pf.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if pf.Changed("detector") {
		cfg.Detector = flags.detector
	}
	if pf.Changed("matcher") {
		cfg.Matcher = flags.matcher
	}
	if pf.Changed("threshold") {
		cfg.RatioThreshold = flags.threshold
	}
	if pf.Changed("k") {
		cfg.K = flags.k
	}
	if skip {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.File != "" {
		if err := log.SetFile(true, cfg.Log.File); err != nil {
			fmt.Printf("[WARN] 打开日志文件失败: %v\n", err)
		}
	}

	opts, err := visionOptions(cfg)
	if err != nil {
		return err
	}
	vision.SetOptions(opts)
	return nil
}

// annotationSkipSetup 标记无需校验配置的命令（含子命令）
const annotationSkipSetup = "osim/skip-setup"

// skipsSetup 配置损坏时 config 与 version 仍需可用
func skipsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipSetup] == "true" {
			return true
		}
	}
	return false
}

func visionOptions(c *config.Config) (vision.Options, error) {
	detector, err := cv.ParseDetectorKind(c.Detector)
	if err != nil {
		return vision.Options{}, err
	}
	matcher, err := cv.ParseMatcherKind(c.Matcher)
	if err != nil {
		return vision.Options{}, err
	}

	opts := vision.DefaultOptions
	opts.Detector = detector
	opts.Matcher = matcher
	opts.RatioThreshold = c.RatioThreshold
	opts.K = c.K
	opts.PlotMatches = c.PlotMatches
	opts.ORBFeatures = c.ORBFeatures
	opts.PlotWidth = c.PlotWidth
	if flags.grayscale {
		opts.ReadMode = cv.ReadGrayscale
	}
	return opts, nil
}

// outputPath 相对路径放到输出目录下
func outputPath(name string) string {
	if name == "" || filepath.IsAbs(name) || cfg == nil || cfg.OutputDir == "" {
		return name
	}
	if dir := filepath.Dir(name); dir != "." {
		return name
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return name
	}
	return filepath.Join(cfg.OutputDir, name)
}
