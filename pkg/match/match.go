// Package match 提供与图像库无关的匹配评分逻辑
//
// 包含:
//   - Lowe 比率测试 (Evaluate)
//   - 相似度评分 (Score)
//   - 匹配点筛选 (Select / KnnMask)
//   - 比对状态机 (Session)
//
// 基本用法:
//
//	mask, err := match.Evaluate(corrs, match.DefaultRatio)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("相似度: %d\n", match.Score(mask))
package match

const (
	// DefaultRatio 默认比率阈值 (Lowe 1999)
	DefaultRatio = 0.7
	// DefaultPlotMatches 默认绘制的匹配数量
	DefaultPlotMatches = 15
)

// Match 单个描述子匹配
type Match struct {
	// QueryIdx 参考图中的描述子下标
	QueryIdx int `json:"query_idx"`
	// TrainIdx 候选图中的描述子下标
	TrainIdx int `json:"train_idx"`
	// Distance 描述子距离，越小越相似
	Distance float64 `json:"distance"`
}

// Correspondence 一个描述子的最近邻与次近邻
type Correspondence struct {
	Best       Match `json:"best"`
	SecondBest Match `json:"second_best"`
}

// Mask 置信掩码，与对应关系序列等长
type Mask []bool

// Count 返回掩码中 true 的数量
func (m Mask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// Bytes 转换为绘图使用的字节掩码
func (m Mask) Bytes() []byte {
	out := make([]byte, len(m))
	for i, ok := range m {
		if ok {
			out[i] = 1
		}
	}
	return out
}
