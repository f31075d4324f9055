package calc

import "math"

// 容差绝对值的上下限：小单也至少给50的余量，大单余量封顶2000
const (
	toleranceFloor   = 50
	toleranceCeiling = 2000
)

// Band 完工容差带：计划数量允许的上下绝对偏差
type Band struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CompletionState 完工状态
type CompletionState string

const (
	StateIncomplete  CompletionState = "INCOMPLETE"   // 未达下限
	StateWithinRange CompletionState = "WITHIN_RANGE" // 在容差带内
	StateOverLimit   CompletionState = "OVER_LIMIT"   // 超出上限
)

// Thresholds 按计划数量分档计算容差带：
// <1000 取10%，<5000 取7.5%，<10000 取5%，其余取3%，
// 四舍五入后钳制在 [50, 2000]。
func Thresholds(planned float64) Band {
	var pct float64
	switch {
	case planned < 1000:
		pct = 0.10
	case planned < 5000:
		pct = 0.075
	case planned < 10000:
		pct = 0.05
	default:
		pct = 0.03
	}

	tol := math.Round(planned * pct)
	if tol < toleranceFloor {
		tol = toleranceFloor
	}
	if tol > toleranceCeiling {
		tol = toleranceCeiling
	}
	return Band{Lower: tol, Upper: tol}
}

// LowerBound 完工下限，不低于0
func (b Band) LowerBound(planned float64) float64 {
	lower := planned - b.Lower
	if lower < 0 {
		return 0
	}
	return lower
}

// UpperBound 完工上限
func (b Band) UpperBound(planned float64) float64 {
	return planned + b.Upper
}

// State 判定产出数量相对容差带的完工状态
func (b Band) State(planned, produced float64) CompletionState {
	switch {
	case produced < b.LowerBound(planned):
		return StateIncomplete
	case produced > b.UpperBound(planned):
		return StateOverLimit
	default:
		return StateWithinRange
	}
}
