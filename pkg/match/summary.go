package match

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary 匹配距离统计
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize 统计匹配距离
func Summarize(matches []Match) Summary {
	if len(matches) == 0 {
		return Summary{}
	}

	d := Distances(matches)
	mean, std := stat.MeanStdDev(d, nil)
	if len(d) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(d),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(d),
		Max:    floats.Max(d),
	}
}

// Distances 提取距离序列
func Distances(matches []Match) []float64 {
	d := make([]float64, len(matches))
	for i, m := range matches {
		d[i] = m.Distance
	}
	return d
}
