package cv

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/pkg/match"
)

// DetectorKind 特征点算法枚举
type DetectorKind string

const (
	DetectorSIFT DetectorKind = "sift" // SIFT 特征点（默认）
	DetectorSURF DetectorKind = "surf" // SURF 特征点
	DetectorORB  DetectorKind = "orb"  // ORB 特征点（二进制描述子）
)

// DefaultDetector 默认特征点算法
const DefaultDetector = DetectorSIFT

// DetectorKinds 支持的特征点算法
var DetectorKinds = []DetectorKind{DetectorSIFT, DetectorSURF, DetectorORB}

// ParseDetectorKind 解析特征点算法名称
func ParseDetectorKind(name string) (DetectorKind, error) {
	kind := DetectorKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range DetectorKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: 仅支持 sift, surf 和 orb, 实际为 %q", match.ErrInvalidArgument, name)
}

// NormType 该算法描述子对应的距离类型
func (k DetectorKind) NormType() gocv.NormType {
	if k == DetectorORB {
		return gocv.NormHamming
	}
	return gocv.NormL1
}

// MatcherKind 匹配器枚举
type MatcherKind string

const (
	MatcherBF    MatcherKind = "bf"    // 暴力匹配（默认）
	MatcherFLANN MatcherKind = "flann" // FLANN 近似最近邻
)

// DefaultMatcher 默认匹配器
const DefaultMatcher = MatcherBF

// ParseMatcherKind 解析匹配器名称
func ParseMatcherKind(name string) (MatcherKind, error) {
	switch kind := MatcherKind(strings.ToLower(strings.TrimSpace(name))); kind {
	case MatcherBF, MatcherFLANN:
		return kind, nil
	}
	return "", fmt.Errorf("%w: 仅实现了暴力匹配 (bf) 和 FLANN 匹配 (flann), 实际为 %q", match.ErrNotImplemented, name)
}

// ReadMode 图像读取模式
type ReadMode int

const (
	ReadColor     ReadMode = iota // 彩色（忽略透明通道）
	ReadGrayscale                 // 灰度
	ReadUnchanged                 // 原样读取（包含透明通道）
)

func (m ReadMode) flag() gocv.IMReadFlag {
	switch m {
	case ReadGrayscale:
		return gocv.IMReadGrayScale
	case ReadUnchanged:
		return gocv.IMReadUnchanged
	default:
		return gocv.IMReadColor
	}
}

// fromDMatch 转换 gocv 匹配结果
func fromDMatch(m gocv.DMatch) match.Match {
	return match.Match{
		QueryIdx: m.QueryIdx,
		TrainIdx: m.TrainIdx,
		Distance: float64(m.Distance),
	}
}

// toDMatch 转换为 gocv 匹配结果
func toDMatch(m match.Match) gocv.DMatch {
	return gocv.DMatch{
		QueryIdx: m.QueryIdx,
		TrainIdx: m.TrainIdx,
		Distance: m.Distance,
	}
}
