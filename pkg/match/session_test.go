package match

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSessionStates(t *testing.T) {
	s := NewSession()
	if s.State() != StateUnmatched {
		t.Fatalf("初始状态应为 unmatched, got %s", s.State())
	}

	if _, err := s.Score(DefaultRatio); !errors.Is(err, ErrNotMatched) {
		t.Errorf("未匹配时评分应返回 ErrNotMatched, got %v", err)
	}
	if _, err := s.Mask(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("未评分时获取掩码应返回 ErrInvalidState, got %v", err)
	}

	s.SetCorrespondences([]Correspondence{corr(18, 20), corr(10, 20)})
	if s.State() != StateMatched || s.Mode() != ModeKnn {
		t.Fatalf("KNN 匹配后状态错误: %s/%s", s.State(), s.Mode())
	}

	score, err := s.Score(0.7)
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}
	if score != 1 {
		t.Errorf("评分错误: got %d, want 1", score)
	}
	if s.State() != StateScored {
		t.Errorf("评分后状态应为 scored, got %s", s.State())
	}

	// 按最近邻距离排序后, 10/20 在前
	mask, err := s.Mask()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Mask{true, false}, mask); diff != "" {
		t.Errorf("掩码不匹配 (-want +got):\n%s", diff)
	}

	// 可重复评分
	if score, _ := s.Score(1); score != 2 {
		t.Errorf("阈值 1 评分错误: got %d, want 2", score)
	}
}

func TestSessionSingleMatchCannotScore(t *testing.T) {
	s := NewSession()
	s.SetMatches([]Match{{Distance: 3}, {Distance: 1}, {Distance: 2}})

	if s.Mode() != ModeSingle {
		t.Fatalf("模式应为 single, got %s", s.Mode())
	}
	if _, err := s.Score(DefaultRatio); !errors.Is(err, ErrNotKnn) || !errors.Is(err, ErrInvalidState) {
		t.Errorf("单一匹配评分应返回 ErrNotKnn, got %v", err)
	}

	got := Distances(s.Matches())
	if diff := cmp.Diff([]float64{1, 2, 3}, got); diff != "" {
		t.Errorf("匹配应按距离升序 (-want +got):\n%s", diff)
	}

	top, err := s.Select(Count(2))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{1, 2}, Distances(top)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSessionRematchResets(t *testing.T) {
	s := NewSession()
	s.SetCorrespondences([]Correspondence{corr(1, 10)})
	if _, err := s.Score(DefaultRatio); err != nil {
		t.Fatal(err)
	}

	s.SetMatches([]Match{{Distance: 1}})
	if s.State() != StateMatched {
		t.Errorf("重新匹配后状态应为 matched, got %s", s.State())
	}
	if _, err := s.Mask(); err == nil {
		t.Error("重新匹配后旧掩码应失效")
	}
	if len(s.Correspondences()) != 0 {
		t.Error("重新匹配后不应保留 KNN 结果")
	}
}

func TestSessionSelectKnn(t *testing.T) {
	s := NewSession()
	s.SetCorrespondences([]Correspondence{
		{Best: Match{QueryIdx: 2, Distance: 9}, SecondBest: Match{Distance: 10}},
		{Best: Match{QueryIdx: 0, Distance: 1}, SecondBest: Match{Distance: 10}},
		{Best: Match{QueryIdx: 1, Distance: 5}, SecondBest: Match{Distance: 10}},
	})
	if _, err := s.Score(DefaultRatio); err != nil {
		t.Fatal(err)
	}

	got, err := s.Select(Count(1))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Match{{QueryIdx: 0, Distance: 1}}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	got, err = s.Select(AtLeast(0.55))
	if err != nil {
		t.Fatal(err)
	}
	want := []Match{{QueryIdx: 0, Distance: 1}, {QueryIdx: 1, Distance: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AtLeast(0.55) (-want +got):\n%s", diff)
	}

	got, err = s.Select(AtLeast(3))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AtLeast(3) (-want +got):\n%s", diff)
	}

	mask, err := s.DrawMask(Count(15))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Mask{true, true, false}, mask); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	good, err := s.Good()
	if err != nil {
		t.Fatal(err)
	}
	if len(good) != 2 {
		t.Errorf("Good 数量错误: got %d, want 2", len(good))
	}
}

func TestSessionSelectUnmatched(t *testing.T) {
	s := NewSession()
	if _, err := s.Select(Count(1)); !errors.Is(err, ErrNotMatched) {
		t.Errorf("未匹配时筛选应返回 ErrNotMatched, got %v", err)
	}
	if _, err := s.DrawMask(Count(1)); !errors.Is(err, ErrNotMatched) {
		t.Errorf("未匹配时获取绘图掩码应返回 ErrNotMatched, got %v", err)
	}
}
