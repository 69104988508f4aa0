// Package vision 提供图像相似度比对功能
//
// 主要功能:
//   - 两张图像的 Lowe 评分比对
//   - 参考图像与多张候选图像的排名
//
// 基本用法:
//
//	// 两张图像比对
//	res, err := vision.Compare("ref.png", "test.png", vision.WithDetector(cv.DetectorSURF))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("相似度评分: %d\n", res.Score)
//
//	// 批量排名
//	ranking, err := vision.Rank("ref.png", []string{"a.png", "b.png"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("最相似: %s (%d)\n", ranking.Best.Candidate, ranking.Best.Score)
package vision

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/internal/logger"
	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

// Compare 比对两张图像
func Compare(reference, candidate string, opts ...Option) (*Comparison, error) {
	return compare(reference, func(det *cv.Detector, cfg *compareConfig) (*cv.Image, error) {
		return loadFitted(candidate, det, cfg)
	}, opts)
}

// CompareImage 比对参考图像与已解码的候选图像（例如来自标准输入）
func CompareImage(reference, name string, candidate image.Image, opts ...Option) (*Comparison, error) {
	return compare(reference, func(det *cv.Detector, cfg *compareConfig) (*cv.Image, error) {
		img, err := cv.NewImage(name, candidate, cfg.ReadMode)
		if err != nil {
			return nil, err
		}
		if err := fit(img, det); err != nil {
			img.Close()
			return nil, err
		}
		return img, nil
	}, opts)
}

func compare(reference string, load func(*cv.Detector, *compareConfig) (*cv.Image, error), opts []Option) (*Comparison, error) {
	cfg := defaultCompareConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	det, err := newDetector(cfg)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	ref, err := loadFitted(reference, det, cfg)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	cand, err := load(det, cfg)
	if err != nil {
		return nil, err
	}
	defer cand.Close()

	return compareImages(ref, cand, cfg, cfg.drawOutput)
}

// Rank 将参考图像与多张候选图像逐一比对并按评分排序
// 参考图像的特征点只计算一次，遇到错误立即返回
func Rank(reference string, candidates []string, opts ...Option) (*Ranking, error) {
	cfg := defaultCompareConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	det, err := newDetector(cfg)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	ref, err := loadFitted(reference, det, cfg)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	results := make([]*Comparison, 0, len(candidates))
	for i, path := range candidates {
		res, err := rankOne(ref, path, det, cfg)
		if err != nil {
			return nil, fmt.Errorf("比对 %s 失败: %w", path, err)
		}
		results = append(results, res)
		if cfg.progress != nil {
			cfg.progress(i+1, len(candidates), path)
		}
	}

	ranking := &Ranking{Reference: reference, Results: rankResults(results)}
	if len(results) == 0 {
		return ranking, nil
	}
	ranking.Best = results[0]
	logger.Info("最高评分: %s (%d)", ranking.Best.Candidate, ranking.Best.Score)

	if cfg.drawOutput != "" {
		best, err := loadFitted(ranking.Best.Candidate, det, cfg)
		if err != nil {
			return nil, err
		}
		defer best.Close()
		drawn, err := compareImages(ref, best, cfg, cfg.drawOutput)
		if err != nil {
			return nil, err
		}
		ranking.Best.Output = drawn.Output
	}
	return ranking, nil
}

// rankResults 按评分降序重排，评分相同时保持输入顺序
func rankResults(results []*Comparison) []*Comparison {
	ranked := match.Rank((&Ranking{Results: results}).Candidates())
	ordered := make([]*Comparison, len(ranked))
	for i, c := range ranked {
		ordered[i] = results[c.Index]
	}
	return ordered
}

func rankOne(ref *cv.Image, path string, det *cv.Detector, cfg *compareConfig) (*Comparison, error) {
	cand, err := loadFitted(path, det, cfg)
	if err != nil {
		return nil, err
	}
	defer cand.Close()
	return compareImages(ref, cand, cfg, "")
}

// Keypoints 计算单张图像的特征点，output 非空时保存绘制结果
func Keypoints(path, output string, opts ...Option) (int, error) {
	cfg := defaultCompareConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	det, err := newDetector(cfg)
	if err != nil {
		return 0, err
	}
	defer det.Close()

	img, err := loadFitted(path, det, cfg)
	if err != nil {
		return 0, err
	}
	defer img.Close()

	if output != "" {
		drawn, err := cv.DrawKeypoints(img)
		if err != nil {
			return 0, err
		}
		defer drawn.Close()
		if err := writeFitted(output, drawn, cfg.PlotWidth); err != nil {
			return 0, err
		}
	}
	return len(img.Keypoints()), nil
}

func newDetector(cfg *compareConfig) (*cv.Detector, error) {
	return cv.NewDetector(cfg.Detector, detectorConfig(cfg))
}

func detectorConfig(cfg *compareConfig) cv.DetectorConfig {
	dc := cv.DefaultDetectorConfig()
	if cfg.ORBFeatures > 0 {
		dc.ORBFeatures = cfg.ORBFeatures
	}
	return dc
}

func loadFitted(path string, det *cv.Detector, cfg *compareConfig) (*cv.Image, error) {
	img, err := cv.LoadImage(path, cfg.ReadMode)
	if err != nil {
		return nil, err
	}
	if err := fit(img, det); err != nil {
		img.Close()
		return nil, err
	}
	return img, nil
}

func fit(img *cv.Image, det *cv.Detector) error {
	start := time.Now()
	if err := img.FindKeypoints(det); err != nil {
		return err
	}
	w, h, _ := img.Size()
	logger.LogEvent("DET", true, float64(time.Since(start).Microseconds())/1000,
		fmt.Sprintf("%s | %dx%d | %d 个特征点 | %s", det.Kind(), w, h, len(img.Keypoints()), img.Name()))
	return nil
}

func compareImages(ref, cand *cv.Image, cfg *compareConfig, output string) (*Comparison, error) {
	start := time.Now()

	cmp, err := cv.NewComparator(cfg.Matcher, cv.WithRatio(cfg.RatioThreshold))
	if err != nil {
		return nil, err
	}
	if err := cmp.KnnMatch(ref, cand, cfg.K); err != nil {
		return nil, err
	}
	score, err := cmp.Score()
	if err != nil {
		return nil, err
	}
	inliers, rate, err := cmp.Inliers()
	if err != nil {
		return nil, err
	}

	res := &Comparison{
		Reference:       ref.Name(),
		Candidate:       cand.Name(),
		Detector:        ref.Detector(),
		Matcher:         cmp.MatcherKind(),
		Ratio:           cfg.RatioThreshold,
		Score:           score,
		Correspondences: len(cmp.Correspondences()),
		Keypoints:       [2]int{len(ref.Keypoints()), len(cand.Keypoints())},
		Inliers:         inliers,
		InlierRate:      rate,
		Distances:       cmp.Summary(),
		Matches:         cmp.Matches(),
	}

	if output != "" {
		drawn, err := cmp.DrawMatches(cfg.plotSelection())
		if err != nil {
			return nil, err
		}
		defer drawn.Close()
		if err := writeFitted(output, drawn, cfg.PlotWidth); err != nil {
			return nil, err
		}
		res.Output = output
	}

	res.Time = float64(time.Since(start).Milliseconds())
	logger.LogEvent("SCOR", true, res.Time,
		fmt.Sprintf("score=%d/%d inliers=%d | %s", res.Score, res.Correspondences, res.Inliers, res.Candidate))
	return res, nil
}

func writeFitted(path string, img gocv.Mat, width int) error {
	fitted := cv.FitWidth(img, width)
	defer fitted.Close()
	return cv.WriteImage(path, fitted)
}
