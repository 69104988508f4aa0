package match

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// SelectionKind 筛选方式
type SelectionKind int

const (
	// SelectCount 取前 N 个匹配
	SelectCount SelectionKind = iota
	// SelectAtLeast 取距离不小于给定值的匹配
	SelectAtLeast
)

func (k SelectionKind) String() string {
	switch k {
	case SelectCount:
		return "count"
	case SelectAtLeast:
		return "at-least"
	default:
		return "unknown"
	}
}

// Selection 绘图时的匹配筛选条件
type Selection struct {
	Kind  SelectionKind
	N     int
	Value float64
}

// Count 取前 n 个匹配
func Count(n int) Selection {
	return Selection{Kind: SelectCount, N: n}
}

// AtLeast 取距离 >= v 的匹配
func AtLeast(v float64) Selection {
	return Selection{Kind: SelectAtLeast, Value: v}
}

// NewSelection 从整数或浮点数构造筛选条件
// 任意整数类型为数量，浮点数为距离；超出 int 范围的整数视为非法
func NewSelection(v any) (Selection, error) {
	if sel, ok := v.(Selection); ok {
		if err := sel.Validate(); err != nil {
			return Selection{}, err
		}
		return sel, nil
	}

	var sel Selection
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > math.MaxInt || n < math.MinInt {
			return Selection{}, fmt.Errorf("%w: 匹配数量超出范围: %d", ErrInvalidArgument, n)
		}
		sel = Count(int(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt {
			return Selection{}, fmt.Errorf("%w: 匹配数量超出范围: %d", ErrInvalidArgument, n)
		}
		sel = Count(int(n))
	case reflect.Float32, reflect.Float64:
		sel = AtLeast(rv.Float())
	default:
		return Selection{}, fmt.Errorf("%w: %v 既不是整数也不是浮点数 (%T)", ErrTypeMismatch, v, v)
	}

	if err := sel.Validate(); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// ParseSelection 解析命令行参数，整数为数量，小数为距离
func ParseSelection(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return NewSelection(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewSelection(f)
	}
	return Selection{}, fmt.Errorf("%w: %q 既不是整数也不是浮点数", ErrTypeMismatch, s)
}

// Validate 校验筛选条件
func (s Selection) Validate() error {
	switch s.Kind {
	case SelectCount:
		if s.N < 0 {
			return fmt.Errorf("%w: 匹配数量不能为负数: %d", ErrInvalidArgument, s.N)
		}
	case SelectAtLeast:
		if math.IsNaN(s.Value) || s.Value < 0 {
			return fmt.Errorf("%w: 距离阈值不能为负数: %v", ErrInvalidArgument, s.Value)
		}
	default:
		return fmt.Errorf("%w: 未知筛选方式 %d", ErrTypeMismatch, s.Kind)
	}
	return nil
}

func (s Selection) String() string {
	if s.Kind == SelectCount {
		return strconv.Itoa(s.N)
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64)
}

// Select 从按距离升序排列的匹配中筛选
// 返回新切片，不修改输入
func Select(matches []Match, sel Selection) ([]Match, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	if sel.Kind == SelectCount {
		n := min(sel.N, len(matches))
		out := make([]Match, n)
		copy(out, matches[:n])
		return out, nil
	}

	// 阈值为下限，保留距离 >= 阈值的匹配
	var out []Match
	for _, m := range matches {
		if m.Distance >= sel.Value {
			out = append(out, m)
		}
	}
	return out, nil
}

// KnnMask 计算 KNN 结果的绘图掩码
//   - AtLeast(v), v < 1: 以 v 作为比率阈值
//   - Count(n): 以 ratio 为阈值，只保留前 n 个通过的对应关系
//   - AtLeast(v), v >= 1: 以 ratio 为阈值
func KnnMask(corrs []Correspondence, sel Selection, ratio float64) (Mask, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	if sel.Kind == SelectAtLeast && sel.Value < 1 {
		return Evaluate(corrs, sel.Value)
	}

	mask, err := Evaluate(corrs, ratio)
	if err != nil {
		return nil, err
	}
	if sel.Kind != SelectCount {
		return mask, nil
	}

	kept := 0
	for i, ok := range mask {
		if !ok {
			continue
		}
		if kept >= sel.N {
			mask[i] = false
			continue
		}
		kept++
	}
	return mask, nil
}
