// Package calc 生产对账计算引擎：工序进度、容差阈值、报工分类、FIFO批次分配。
// 所有函数均为纯函数，不做任何I/O，调用方每次传入最新的完整报工列表。
package calc

import "strings"

// UOMKind 计量单位类别
type UOMKind int

const (
	UOMOther UOMKind = iota
	UOMSheet         // 大张（印刷投入单位）
	UOMCarton        // 彩盒/箱（包装产出单位）
)

// UOM 计量单位：类别 + 原始标签
type UOM struct {
	Kind  UOMKind
	Label string
}

// UOMLabelSheets 大张类单位的统一显示标签
const UOMLabelSheets = "sheets"

// ParseUOM 解析单位字符串，不区分大小写。
// "cartoon" 是历史数据中的旧拼写，继续兼容。
func ParseUOM(s string) UOM {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sht", "sheet", "sheets":
		return UOM{Kind: UOMSheet, Label: s}
	case "carton", "cartons", "cartoon", "ctn", "box", "boxes":
		return UOM{Kind: UOMCarton, Label: s}
	default:
		return UOM{Kind: UOMOther, Label: s}
	}
}

// IsSheet 是否为大张类单位
func (u UOM) IsSheet() bool { return u.Kind == UOMSheet }

// IsPackaging 是否为包装类单位
func (u UOM) IsPackaging() bool { return u.Kind == UOMCarton }

// ToOutputUnit 把投入单位数量换算为产出单位数量。
// 仅当大张→包装且拼版数大于0时乘以拼版数，其余情况原样返回；
// numberUp <= 0 视为未定义换算，按恒等处理。
func ToOutputUnit(qty float64, inputUnit, outputUnit UOM, numberUp float64) float64 {
	if inputUnit.IsSheet() && outputUnit.IsPackaging() && numberUp > 0 {
		return qty * numberUp
	}
	return qty
}

// ToInputUnit 把产出单位数量换算回投入单位数量，条件与 ToOutputUnit 相同。
func ToInputUnit(qty float64, inputUnit, outputUnit UOM, numberUp float64) float64 {
	if inputUnit.IsSheet() && outputUnit.IsPackaging() && numberUp > 0 {
		return qty / numberUp
	}
	return qty
}
