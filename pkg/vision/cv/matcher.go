package cv

import (
	"sort"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/pkg/match"
)

// Matcher 描述子匹配器
type Matcher struct {
	kind MatcherKind
}

// NewMatcher 创建匹配器
func NewMatcher(kind MatcherKind) (*Matcher, error) {
	kind, err := ParseMatcherKind(string(kind))
	if err != nil {
		return nil, err
	}
	return &Matcher{kind: kind}, nil
}

// Kind 匹配器类型
func (m *Matcher) Kind() MatcherKind {
	return m.kind
}

// Match 每个查询描述子取最佳匹配，按距离升序
func (m *Matcher) Match(query, train gocv.Mat, norm gocv.NormType) []match.Match {
	if query.Empty() || train.Empty() {
		return nil
	}

	var raw []gocv.DMatch

	switch m.kind {
	case MatcherFLANN:
		for _, row := range m.flannKnn(query, train, 1) {
			if len(row) > 0 {
				raw = append(raw, row[0])
			}
		}
	default:
		bf := gocv.NewBFMatcherWithParams(norm, true)
		defer bf.Close()
		raw = bf.Match(query, train)
	}

	matches := make([]match.Match, len(raw))
	for i, d := range raw {
		matches[i] = fromDMatch(d)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// KnnMatch 每个查询描述子取 k 个最近邻，按最近邻距离升序
func (m *Matcher) KnnMatch(query, train gocv.Mat, norm gocv.NormType, k int) [][]match.Match {
	if query.Empty() || train.Empty() {
		return nil
	}

	var raw [][]gocv.DMatch

	switch m.kind {
	case MatcherFLANN:
		raw = m.flannKnn(query, train, k)
	default:
		// KNN 模式不能开启 crossCheck
		bf := gocv.NewBFMatcherWithParams(norm, false)
		defer bf.Close()
		raw = bf.KnnMatch(query, train, k)
	}

	rows := make([][]match.Match, 0, len(raw))
	for _, r := range raw {
		if len(r) == 0 {
			continue
		}
		row := make([]match.Match, len(r))
		for i, d := range r {
			row[i] = fromDMatch(d)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0].Distance < rows[j][0].Distance
	})
	return rows
}

// flannKnn FLANN 只支持浮点描述子，ORB 描述子需先转换
func (m *Matcher) flannKnn(query, train gocv.Mat, k int) [][]gocv.DMatch {
	// 候选描述子少于 k 时 FLANN 会报错
	k = min(k, train.Rows())
	if k <= 0 {
		return nil
	}

	q, qClose := asFloat32(query)
	defer qClose()
	t, tClose := asFloat32(train)
	defer tClose()

	flann := gocv.NewFlannBasedMatcher()
	defer flann.Close()
	return flann.KnnMatch(q, t, k)
}

func asFloat32(desc gocv.Mat) (gocv.Mat, func()) {
	if desc.Type() == gocv.MatTypeCV32F {
		return desc, func() {}
	}
	dst := gocv.NewMat()
	desc.ConvertTo(&dst, gocv.MatTypeCV32F)
	return dst, func() { dst.Close() }
}

// correspondences 提取最近邻与次近邻，跳过不足两个候选的行
func correspondences(rows [][]match.Match) []match.Correspondence {
	corrs := make([]match.Correspondence, 0, len(rows))
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		corrs = append(corrs, match.Correspondence{Best: r[0], SecondBest: r[1]})
	}
	return corrs
}
