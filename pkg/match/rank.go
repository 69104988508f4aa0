package match

import (
	"sort"
)

// Candidate 候选图像的评分
type Candidate struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	// Index 在输入序列中的位置
	Index int `json:"-"`
}

// Rank 按评分降序排列，评分相同时保持输入顺序
func Rank(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Top 返回第一个最高分候选及其下标
func Top(cands []Candidate) (Candidate, int, bool) {
	if len(cands) == 0 {
		return Candidate{}, -1, false
	}
	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Score > cands[best].Score {
			best = i
		}
	}
	return cands[best], best, true
}
