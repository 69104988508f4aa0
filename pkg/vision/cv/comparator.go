package cv

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/internal/logger"
	"github.com/zoeyai/osim/pkg/match"
)

const (
	// DefaultK KNN 匹配的近邻数
	DefaultK = 2

	minHomographyPoints = 4
	ransacReprojThresh  = 5.0
	ransacMaxIters      = 2000
	ransacConfidence    = 0.995
)

// Comparator 图像比对器
// 持有匹配器与比对状态，同一时刻只对应一组图像
type Comparator struct {
	matcher   *Matcher
	threshold float64
	session   *match.Session
	query     *Image
	train     *Image
}

// ComparatorOption 比对器选项
type ComparatorOption func(*Comparator)

// WithRatio 设置默认比率阈值
func WithRatio(threshold float64) ComparatorOption {
	return func(c *Comparator) {
		c.threshold = threshold
	}
}

// NewComparator 创建比对器
func NewComparator(kind MatcherKind, opts ...ComparatorOption) (*Comparator, error) {
	matcher, err := NewMatcher(kind)
	if err != nil {
		return nil, err
	}

	c := &Comparator{
		matcher:   matcher,
		threshold: match.DefaultRatio,
		session:   match.NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.threshold <= 0 {
		return nil, fmt.Errorf("%w: 比率阈值必须为正数, 实际为 %v", match.ErrInvalidArgument, c.threshold)
	}
	return c, nil
}

// MatcherKind 匹配器类型
func (c *Comparator) MatcherKind() MatcherKind {
	return c.matcher.Kind()
}

// State 当前状态
func (c *Comparator) State() match.State {
	return c.session.State()
}

// Mode 当前匹配模式
func (c *Comparator) Mode() match.Mode {
	return c.session.Mode()
}

// Match 单一最佳匹配
func (c *Comparator) Match(query, train *Image) error {
	start := time.Now()
	if err := checkPair(query, train); err != nil {
		return err
	}

	matches := c.matcher.Match(query.Descriptors(), train.Descriptors(), query.Detector().NormType())
	c.session.SetMatches(matches)
	c.query, c.train = query, train

	logger.LogEvent("MAT", true, msSince(start),
		fmt.Sprintf("%s | %d 个匹配 | %s -> %s", c.matcher.Kind(), len(matches), query.Name(), train.Name()))
	return nil
}

// KnnMatch KNN 匹配，k 至少为 2
func (c *Comparator) KnnMatch(query, train *Image, k int) error {
	start := time.Now()
	if k < 2 {
		return fmt.Errorf("%w: KNN 的 k 至少为 2, 实际为 %d", match.ErrInvalidArgument, k)
	}
	if err := checkPair(query, train); err != nil {
		return err
	}

	rows := c.matcher.KnnMatch(query.Descriptors(), train.Descriptors(), query.Detector().NormType(), k)
	corrs := correspondences(rows)
	if skipped := len(rows) - len(corrs); skipped > 0 {
		logger.Debug("跳过 %d 个不足两个近邻的描述子", skipped)
	}
	c.session.SetCorrespondences(corrs)
	c.query, c.train = query, train

	logger.LogEvent("KNN", true, msSince(start),
		fmt.Sprintf("%s | k=%d | %d 组对应 | %s -> %s", c.matcher.Kind(), k, len(corrs), query.Name(), train.Name()))
	return nil
}

// Score 使用默认阈值计算 Lowe 评分
func (c *Comparator) Score() (int, error) {
	return c.ScoreWith(c.threshold)
}

// ScoreWith 使用指定阈值计算 Lowe 评分，仅支持 KNN 匹配结果
func (c *Comparator) ScoreWith(threshold float64) (int, error) {
	score, err := c.session.Score(threshold)
	if err != nil {
		return 0, err
	}
	logger.Debug("评分 %d / %d (ratio=%.2f)", score, len(c.session.Correspondences()), threshold)
	return score, nil
}

// Mask 已评分的置信掩码
func (c *Comparator) Mask() (match.Mask, error) {
	return c.session.Mask()
}

// Matches 按距离升序的匹配（KNN 模式下为最近邻）
func (c *Comparator) Matches() []match.Match {
	return c.session.Matches()
}

// Correspondences KNN 对应关系
func (c *Comparator) Correspondences() []match.Correspondence {
	return c.session.Correspondences()
}

// Select 按条件筛选匹配
func (c *Comparator) Select(sel match.Selection) ([]match.Match, error) {
	return c.session.Select(sel)
}

// Summary 最佳匹配的距离统计
func (c *Comparator) Summary() match.Summary {
	return match.Summarize(c.session.Matches())
}

// Inliers 对通过比率测试的匹配做 RANSAC 单应性校验
// 返回内点数与内点比例，匹配点不足 4 个时返回 0
func (c *Comparator) Inliers() (int, float64, error) {
	good, err := c.session.Good()
	if err != nil {
		return 0, 0, err
	}
	if len(good) < minHomographyPoints {
		return 0, 0, nil
	}

	kpQuery, kpTrain := c.query.Keypoints(), c.train.Keypoints()

	srcMat := gocv.NewMatWithSize(len(good), 1, gocv.MatTypeCV32FC2)
	dstMat := gocv.NewMatWithSize(len(good), 1, gocv.MatTypeCV32FC2)
	defer srcMat.Close()
	defer dstMat.Close()

	for i, m := range good {
		src := kpQuery[m.QueryIdx]
		dst := kpTrain[m.TrainIdx]
		srcMat.SetFloatAt(i, 0, float32(src.X))
		srcMat.SetFloatAt(i, 1, float32(src.Y))
		dstMat.SetFloatAt(i, 0, float32(dst.X))
		dstMat.SetFloatAt(i, 1, float32(dst.Y))
	}

	mask := gocv.NewMat()
	defer mask.Close()
	H := gocv.FindHomography(srcMat, dstMat, gocv.HomographyMethodRANSAC, ransacReprojThresh, &mask, ransacMaxIters, ransacConfidence)
	defer H.Close()

	if H.Empty() {
		return 0, 0, nil
	}

	inliers, rate := countInliers(mask, len(good))
	return inliers, rate, nil
}

func countInliers(mask gocv.Mat, total int) (int, float64) {
	if total == 0 || mask.Empty() {
		return 0, 0
	}
	inliers := 0
	for i := 0; i < mask.Rows(); i++ {
		if mask.GetUCharAt(i, 0) > 0 {
			inliers++
		}
	}
	return inliers, float64(inliers) / float64(total)
}

// checkPair 两张图必须已用同一算法计算特征点
func checkPair(query, train *Image) error {
	if query == nil || train == nil {
		return fmt.Errorf("%w: 图像为空", match.ErrInvalidArgument)
	}
	if !query.Fitted() {
		return fmt.Errorf("%w: %s", match.ErrNotFitted, query.Name())
	}
	if !train.Fitted() {
		return fmt.Errorf("%w: %s", match.ErrNotFitted, train.Name())
	}
	if query.Detector() != train.Detector() {
		return fmt.Errorf("%w: 特征点算法不一致 (%s / %s)", match.ErrInvalidArgument, query.Detector(), train.Detector())
	}
	return nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
