package match

import (
	"fmt"
)

// Evaluate 对每个对应关系执行 Lowe 比率测试
// 当 best.Distance < threshold*second.Distance 时标记为 true
func Evaluate(corrs []Correspondence, threshold float64) (Mask, error) {
	if err := checkRatio(threshold); err != nil {
		return nil, err
	}

	mask := make(Mask, len(corrs))
	for i, c := range corrs {
		mask[i] = c.Best.Distance < threshold*c.SecondBest.Distance
	}
	return mask, nil
}

// Score 统计通过比率测试的对应关系数量
func Score(mask Mask) int {
	return mask.Count()
}

// Good 返回通过比率测试的最近邻匹配，保持输入顺序
func Good(corrs []Correspondence, threshold float64) ([]Match, error) {
	mask, err := Evaluate(corrs, threshold)
	if err != nil {
		return nil, err
	}

	good := make([]Match, 0, mask.Count())
	for i, ok := range mask {
		if ok {
			good = append(good, corrs[i].Best)
		}
	}
	return good, nil
}

// Best 提取每个对应关系的最近邻
func Best(corrs []Correspondence) []Match {
	out := make([]Match, len(corrs))
	for i, c := range corrs {
		out[i] = c.Best
	}
	return out
}

// checkRatio 阈值必须为正数（NaN 同样拒绝）
func checkRatio(threshold float64) error {
	if !(threshold > 0) {
		return fmt.Errorf("%w: 比率阈值必须为正数, 实际为 %v", ErrInvalidArgument, threshold)
	}
	return nil
}
