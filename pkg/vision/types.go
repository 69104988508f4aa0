package vision

import (
	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

// Version 版本号
const Version = "1.0.0"

// Comparison 一组图像的比对结果
type Comparison struct {
	// Reference 参考图像
	Reference string `json:"reference"`
	// Candidate 候选图像
	Candidate string `json:"candidate"`
	// Detector 特征点算法
	Detector cv.DetectorKind `json:"detector"`
	// Matcher 匹配器
	Matcher cv.MatcherKind `json:"matcher"`
	// Ratio 比率阈值
	Ratio float64 `json:"ratio"`
	// Score Lowe 评分（通过比率测试的对应数量）
	Score int `json:"score"`
	// Correspondences KNN 对应关系总数
	Correspondences int `json:"correspondences"`
	// Keypoints 两张图的特征点数量
	Keypoints [2]int `json:"keypoints"`
	// Inliers 单应性内点数
	Inliers int `json:"inliers"`
	// InlierRate 内点比例
	InlierRate float64 `json:"inlier_rate"`
	// Distances 最近邻距离统计
	Distances match.Summary `json:"distances"`
	// Matches 按距离升序的最近邻匹配
	Matches []match.Match `json:"-"`
	// Output 匹配绘制结果路径
	Output string `json:"output,omitempty"`
	// Time 耗时（毫秒）
	Time float64 `json:"time,omitempty"`
}

// Ranking 参考图像与多张候选的比对结果
type Ranking struct {
	Reference string `json:"reference"`
	// Results 按评分降序
	Results []*Comparison `json:"results"`
	// Best 最高分结果，没有候选时为 nil
	Best *Comparison `json:"best,omitempty"`
}

// Candidates 转换为评分列表
func (r *Ranking) Candidates() []match.Candidate {
	out := make([]match.Candidate, len(r.Results))
	for i, c := range r.Results {
		out[i] = match.Candidate{Name: c.Candidate, Score: c.Score, Index: i}
	}
	return out
}
