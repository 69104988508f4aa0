package match

import (
	"fmt"
	"sort"
)

// State 比对状态
type State int

const (
	// StateUnmatched 尚未匹配
	StateUnmatched State = iota
	// StateMatched 已匹配
	StateMatched
	// StateScored 已评分
	StateScored
)

func (s State) String() string {
	switch s {
	case StateUnmatched:
		return "unmatched"
	case StateMatched:
		return "matched"
	case StateScored:
		return "scored"
	default:
		return "unknown"
	}
}

// Mode 匹配模式
type Mode int

const (
	// ModeNone 未匹配
	ModeNone Mode = iota
	// ModeSingle 每个描述子只取最佳匹配
	ModeSingle
	// ModeKnn 每个描述子取最近邻与次近邻
	ModeKnn
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeKnn:
		return "knn"
	default:
		return "none"
	}
}

// Session 一次图像对比对的状态机
// Unmatched -> Matched -> Scored，重新匹配回到 Matched
type Session struct {
	state   State
	mode    Mode
	matches []Match
	corrs   []Correspondence
	mask    Mask
	ratio   float64
	score   int
}

// NewSession 创建比对会话
func NewSession() *Session {
	return &Session{ratio: DefaultRatio}
}

// State 当前状态
func (s *Session) State() State {
	return s.state
}

// Mode 当前匹配模式
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMatches 记录单一最佳匹配结果，按距离升序保存
func (s *Session) SetMatches(matches []Match) {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})

	s.reset()
	s.mode = ModeSingle
	s.matches = sorted
	s.state = StateMatched
}

// SetCorrespondences 记录 KNN 匹配结果，按最近邻距离升序保存
func (s *Session) SetCorrespondences(corrs []Correspondence) {
	sorted := make([]Correspondence, len(corrs))
	copy(sorted, corrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Best.Distance < sorted[j].Best.Distance
	})

	s.reset()
	s.mode = ModeKnn
	s.corrs = sorted
	s.state = StateMatched
}

// Matches 单一匹配结果；KNN 模式下返回最近邻
func (s *Session) Matches() []Match {
	if s.mode == ModeKnn {
		return Best(s.corrs)
	}
	return s.matches
}

// Correspondences KNN 匹配结果
func (s *Session) Correspondences() []Correspondence {
	return s.corrs
}

// Score 执行比率测试并评分
func (s *Session) Score(threshold float64) (int, error) {
	if err := s.requireKnn(); err != nil {
		return 0, err
	}

	mask, err := Evaluate(s.corrs, threshold)
	if err != nil {
		return 0, err
	}

	s.mask = mask
	s.ratio = threshold
	s.score = Score(mask)
	s.state = StateScored
	return s.score, nil
}

// Result 返回已计算的评分与掩码
func (s *Session) Result() (int, Mask, error) {
	if s.state != StateScored {
		return 0, nil, fmt.Errorf("%w: 当前状态 %s", ErrNotMatched, s.state)
	}
	return s.score, s.mask, nil
}

// Mask 已评分的置信掩码
func (s *Session) Mask() (Mask, error) {
	_, mask, err := s.Result()
	return mask, err
}

// Ratio 最近一次评分使用的比率阈值
func (s *Session) Ratio() float64 {
	return s.ratio
}

// Good 通过比率测试的匹配点
func (s *Session) Good() ([]Match, error) {
	if err := s.requireKnn(); err != nil {
		return nil, err
	}
	return Good(s.corrs, s.ratio)
}

// Select 单一匹配时返回匹配子集
func (s *Session) Select(sel Selection) ([]Match, error) {
	switch s.mode {
	case ModeSingle:
		return Select(s.matches, sel)
	case ModeKnn:
		mask, err := KnnMask(s.corrs, sel, s.ratio)
		if err != nil {
			return nil, err
		}
		out := make([]Match, 0, mask.Count())
		for i, ok := range mask {
			if ok {
				out = append(out, s.corrs[i].Best)
			}
		}
		return out, nil
	default:
		return nil, ErrNotMatched
	}
}

// DrawMask KNN 模式下返回与最近邻序列等长的绘图掩码
func (s *Session) DrawMask(sel Selection) (Mask, error) {
	switch s.mode {
	case ModeKnn:
		return KnnMask(s.corrs, sel, s.ratio)
	case ModeSingle:
		selected, err := Select(s.matches, sel)
		if err != nil {
			return nil, err
		}
		mask := make(Mask, len(selected))
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	default:
		return nil, ErrNotMatched
	}
}

func (s *Session) requireKnn() error {
	switch s.mode {
	case ModeNone:
		return ErrNotMatched
	case ModeSingle:
		return ErrNotKnn
	}
	return nil
}

func (s *Session) reset() {
	s.matches = nil
	s.corrs = nil
	s.mask = nil
	s.score = 0
	s.state = StateUnmatched
	s.mode = ModeNone
}
