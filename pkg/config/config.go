// Package config 管理 osim 的本地配置
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 环境变量
const (
	EnvDetector    = "OSIM_DETECTOR"
	EnvMatcher     = "OSIM_MATCHER"
	EnvRatio       = "OSIM_RATIO_THRESHOLD"
	EnvK           = "OSIM_K"
	EnvPlotMatches = "OSIM_PLOT_MATCHES"
	EnvORBFeatures = "OSIM_ORB_FEATURES"
	EnvOutputDir   = "OSIM_OUTPUT_DIR"
	EnvLogLevel    = "OSIM_LOG_LEVEL"
	EnvLogFile     = "OSIM_LOG_FILE"
)

// Config 比对配置
type Config struct {
	// Detector 特征点算法 (sift, surf, orb)
	Detector string `yaml:"detector"`
	// Matcher 匹配器 (bf, flann)
	Matcher string `yaml:"matcher"`
	// RatioThreshold Lowe 比率阈值 (0, 1]
	RatioThreshold float64 `yaml:"ratio_threshold"`
	// K KNN 近邻数
	K int `yaml:"k"`
	// PlotMatches 绘制的匹配数量
	PlotMatches int `yaml:"plot_matches"`
	// ORBFeatures ORB 最大特征点数
	ORBFeatures int `yaml:"orb_features"`
	// PlotWidth 输出图像最大宽度，0 表示不缩放
	PlotWidth int `yaml:"plot_width"`
	// OutputDir 输出目录
	OutputDir string `yaml:"output_dir"`

	Log LogConfig `yaml:"log"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Detector:       "sift",
		Matcher:        "bf",
		RatioThreshold: 0.7,
		K:              2,
		PlotMatches:    15,
		ORBFeatures:    15000,
		PlotWidth:      1600,
		OutputDir:      "output",
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Validate 校验数值范围，算法名称由 cv 包校验
func (c *Config) Validate() error {
	var errs []error
	if !(c.RatioThreshold > 0 && c.RatioThreshold <= 1) {
		errs = append(errs, fmt.Errorf("ratio_threshold 必须在 (0, 1] 范围内, 实际为 %v", c.RatioThreshold))
	}
	if c.K < 2 {
		errs = append(errs, fmt.Errorf("k 至少为 2, 实际为 %d", c.K))
	}
	if c.PlotMatches < 0 {
		errs = append(errs, fmt.Errorf("plot_matches 不能为负数, 实际为 %d", c.PlotMatches))
	}
	if c.ORBFeatures <= 0 {
		errs = append(errs, fmt.Errorf("orb_features 必须为正数, 实际为 %d", c.ORBFeatures))
	}
	if c.Detector == "" || c.Matcher == "" {
		errs = append(errs, errors.New("detector 和 matcher 不能为空"))
	}
	return errors.Join(errs...)
}

// ApplyEnv 使用 OSIM_* 环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDetector); v != "" {
		c.Detector = v
	}
	if v := os.Getenv(EnvMatcher); v != "" {
		c.Matcher = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}

	var errs []error
	if v := os.Getenv(EnvRatio); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s 解析失败: %w", EnvRatio, err))
		} else {
			c.RatioThreshold = f
		}
	}
	for _, e := range []struct {
		name string
		dst  *int
	}{
		{EnvK, &c.K},
		{EnvPlotMatches, &c.PlotMatches},
		{EnvORBFeatures, &c.ORBFeatures},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s 解析失败: %w", e.name, err))
			continue
		}
		*e.dst = n
	}
	return errors.Join(errs...)
}

// LoadDotEnv 加载 .env 文件，文件不存在时忽略
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("加载 .env 失败: %w", err)
	}
	return nil
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置位于 ~/.osim
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".osim"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.yaml"),
	}
}

// NewManagerWithFile 使用指定配置文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// Load 加载配置，文件不存在时返回默认配置
// 文件中缺省的字段保留默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.configFile)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	return cfg, nil
}

// Save 保存配置
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// Resolve 依次合并默认值、配置文件与环境变量
func (m *Manager) Resolve() (*Config, error) {
	cfg, err := m.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
