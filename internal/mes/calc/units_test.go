package calc

import (
	"math"
	"testing"
)

func TestParseUOM(t *testing.T) {
	tests := []struct {
		in   string
		kind UOMKind
	}{
		{"sheets", UOMSheet},
		{"Sheet", UOMSheet},
		{"SHT", UOMSheet},
		{"cartons", UOMCarton},
		{"Carton", UOMCarton},
		{"cartoon", UOMCarton}, // legacy spelling in old data
		{"boxes", UOMCarton},
		{"ctn", UOMCarton},
		{"pcs", UOMOther},
		{"", UOMOther},
		{"  sheets  ", UOMSheet},
	}
	for _, tt := range tests {
		if got := ParseUOM(tt.in); got.Kind != tt.kind {
			t.Errorf("ParseUOM(%q).Kind = %v, want %v", tt.in, got.Kind, tt.kind)
		}
	}
}

func TestToOutputUnit(t *testing.T) {
	sheets := ParseUOM("sheets")
	cartons := ParseUOM("cartons")
	pcs := ParseUOM("pcs")

	tests := []struct {
		name     string
		qty      float64
		in, out  UOM
		numberUp float64
		want     float64
	}{
		{"sheet to carton multiplies", 100, sheets, cartons, 8, 800},
		{"same unit is identity", 100, sheets, sheets, 8, 100},
		{"unknown unit is identity", 100, pcs, cartons, 8, 100},
		{"zero numberUp is identity", 100, sheets, cartons, 0, 100},
		{"negative numberUp is identity", 100, sheets, cartons, -3, 100},
		{"carton to sheet direction unchanged", 100, cartons, sheets, 8, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToOutputUnit(tt.qty, tt.in, tt.out, tt.numberUp); got != tt.want {
				t.Errorf("ToOutputUnit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToInputUnit(t *testing.T) {
	sheets := ParseUOM("sheets")
	cartons := ParseUOM("cartons")

	if got := ToInputUnit(800, sheets, cartons, 8); got != 100 {
		t.Errorf("ToInputUnit(800, sheets, cartons, 8) = %v, want 100", got)
	}
	// numberUp <= 0 must never divide by zero
	if got := ToInputUnit(800, sheets, cartons, 0); got != 800 {
		t.Errorf("ToInputUnit with numberUp=0 = %v, want 800", got)
	}
}

func TestUnitConversionRoundTrip(t *testing.T) {
	sheets := ParseUOM("sheets")
	cartons := ParseUOM("cartons")

	for _, qty := range []float64{0, 1, 37, 500, 99999.5} {
		for _, n := range []float64{1, 4, 8, 21} {
			out := ToOutputUnit(qty, sheets, cartons, n)
			back := ToInputUnit(out, sheets, cartons, n)
			if math.Abs(back-qty) > 1e-9 {
				t.Errorf("round trip qty=%v numberUp=%v: got %v back", qty, n, back)
			}
		}
	}
}
