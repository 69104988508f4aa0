package match

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		matches []Match
		want    Summary
	}{
		{"空输入", nil, Summary{}},
		{"单个匹配", []Match{{Distance: 4}}, Summary{Count: 1, Mean: 4, StdDev: 0, Min: 4, Max: 4}},
		{"多个匹配", []Match{{Distance: 2}, {Distance: 4}, {Distance: 6}}, Summary{Count: 3, Mean: 4, StdDev: 2, Min: 2, Max: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.matches)
			opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
			if diff := cmp.Diff(tt.want, got, opt); diff != "" {
				t.Errorf("统计结果不一致 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDistances(t *testing.T) {
	got := Distances([]Match{{Distance: 3}, {Distance: 1}})
	if diff := cmp.Diff([]float64{3, 1}, got); diff != "" {
		t.Errorf("距离序列不一致 (-want +got):\n%s", diff)
	}
}
