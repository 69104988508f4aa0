package cv

import (
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

const (
	defaultORBFeatures = 15000
	defaultORBScale    = 1.2
	defaultORBLevels   = 8
	defaultORBEdge     = 31
	defaultORBPatch    = 31
	defaultORBFast     = 20

	defaultSIFTEdgeThreshold = 20.0

	defaultSURFHessian      = 100.0
	defaultSURFOctaves      = 4
	defaultSURFOctaveLayers = 3
)

// featureDetector gocv 特征点算法接口
type featureDetector interface {
	DetectAndCompute(src gocv.Mat, mask gocv.Mat) ([]gocv.KeyPoint, gocv.Mat)
	Close() error
}

// DetectorConfig 特征点算法参数
type DetectorConfig struct {
	// ORBFeatures ORB 最大特征点数
	ORBFeatures int
	// SIFTEdgeThreshold SIFT 边缘响应阈值，<= 0 时使用 20
	SIFTEdgeThreshold float64
	// SURFExtended SURF 使用 128 维描述子
	SURFExtended bool
}

// DefaultDetectorConfig 默认参数
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ORBFeatures:       defaultORBFeatures,
		SIFTEdgeThreshold: defaultSIFTEdgeThreshold,
		SURFExtended:      true,
	}
}

// Detector 特征点检测器，由调用方创建并持有
type Detector struct {
	kind DetectorKind
	impl featureDetector
}

// NewDetector 创建特征点检测器
func NewDetector(kind DetectorKind, cfg DetectorConfig) (*Detector, error) {
	kind, err := ParseDetectorKind(string(kind))
	if err != nil {
		return nil, err
	}

	var impl featureDetector
	switch kind {
	case DetectorSURF:
		surf := contrib.NewSURFWithParams(defaultSURFHessian, defaultSURFOctaves, defaultSURFOctaveLayers,
			cfg.SURFExtended, false)
		impl = &surf
	case DetectorORB:
		features := cfg.ORBFeatures
		if features <= 0 {
			features = defaultORBFeatures
		}
		orb := gocv.NewORBWithParams(features, defaultORBScale, defaultORBLevels, defaultORBEdge,
			0, 2, gocv.ORBScoreTypeHarris, defaultORBPatch, defaultORBFast)
		impl = &orb
	default:
		edge := cfg.SIFTEdgeThreshold
		if edge <= 0 {
			edge = defaultSIFTEdgeThreshold
		}
		sift := gocv.NewSIFTWithParams(nil, nil, nil, &edge, nil)
		impl = &sift
	}

	return &Detector{kind: kind, impl: impl}, nil
}

// Kind 算法类型
func (d *Detector) Kind() DetectorKind {
	return d.kind
}

// Detect 检测特征点并计算描述子
// 返回的描述子需要调用方 Close
func (d *Detector) Detect(img gocv.Mat) ([]gocv.KeyPoint, gocv.Mat) {
	mask := gocv.NewMat()
	defer mask.Close()
	return d.impl.DetectAndCompute(img, mask)
}

// Close 释放资源
func (d *Detector) Close() {
	if d.impl != nil {
		d.impl.Close()
		d.impl = nil
	}
}
