package calc

import (
	"reflect"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func lotRun(id, stageID, lot string, qty float64, day int, sources ...string) entity.ProductionRun {
	return entity.ProductionRun{
		ID:           id,
		StageID:      stageID,
		Lot:          lot,
		QtyGood:      qty,
		SourceRunIDs: sources,
		ReportedAt:   time.Date(2024, 6, day, 8, 0, 0, 0, time.UTC),
	}
}

// Two lots transferred from print into diecut: A on day 1, B on day 2.
func twoLotRuns() []entity.ProductionRun {
	return []entity.ProductionRun{
		lotRun("sA", "print", "A", 100, 1),
		lotRun("sB", "print", "B", 100, 2),
		lotRun("tA", "diecut", "A", 100, 3, "sA"),
		lotRun("tB", "diecut", "B", 100, 3, "sB"),
	}
}

func TestAllocateFIFOOrdering(t *testing.T) {
	got := AllocateFIFO(150, twoLotRuns(), "diecut", "print", nil)
	if got.Shortage != 0 {
		t.Fatalf("unexpected shortage %v", got.Shortage)
	}
	want := []LotAllocation{{Lot: "A", Qty: 100}, {Lot: "B", Qty: 50}}
	if !reflect.DeepEqual(got.Allocations, want) {
		t.Errorf("allocations = %v, want %v (oldest lot exhausted first)", got.Allocations, want)
	}
}

func TestAllocateFIFOExactSum(t *testing.T) {
	for _, needed := range []float64{1, 50, 100, 150, 200} {
		got := AllocateFIFO(needed, twoLotRuns(), "diecut", "print", nil)
		var sum float64
		for _, a := range got.Allocations {
			sum += a.Qty
		}
		if got.Shortage == 0 && sum != needed {
			t.Errorf("needed %v: allocations sum to %v", needed, sum)
		}
	}
}

func TestAllocateFIFOShortage(t *testing.T) {
	runs := []entity.ProductionRun{
		lotRun("sA", "print", "A", 50, 1),
		lotRun("sB", "print", "B", 50, 2),
		lotRun("tA", "diecut", "A", 50, 3, "sA"),
		lotRun("tB", "diecut", "B", 50, 3, "sB"),
		lotRun("dA", "diecut", "A", 20, 4), // consumed 20 of A, 80 remaining overall
	}

	got := AllocateFIFO(100, runs, "diecut", "print", nil)
	if got.Shortage != 20 {
		t.Errorf("shortage = %v, want 20", got.Shortage)
	}
	if len(got.Allocations) != 0 {
		t.Errorf("shortage result must carry zero allocations, got %v", got.Allocations)
	}
}

func TestAllocateFIFOIdempotent(t *testing.T) {
	runs := twoLotRuns()
	first := AllocateFIFO(150, runs, "diecut", "print", nil)
	second := AllocateFIFO(150, runs, "diecut", "print", nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same snapshot must yield identical allocations: %v vs %v", first, second)
	}
}

// When only one lot was ever transferred into the stage, all genuine
// production counts against it regardless of the runs' own lot labels.
func TestLotStocksSingleLotAttribution(t *testing.T) {
	runs := []entity.ProductionRun{
		lotRun("s1", "print", "LOT-1", 200, 1),
		lotRun("t1", "diecut", "LOT-1", 200, 2, "s1"),
		lotRun("d1", "diecut", "", 50, 3),      // lot omitted by the operator
		lotRun("d2", "diecut", "LOT-1", 50, 3), // lot filled in
	}

	stocks := LotStocks(runs, "diecut", "print", nil)
	if len(stocks) != 1 {
		t.Fatalf("got %d lots, want 1", len(stocks))
	}
	if stocks[0].Consumed != 100 {
		t.Errorf("consumed = %v, want 100 (both runs attributed)", stocks[0].Consumed)
	}
	if stocks[0].Remaining != 100 {
		t.Errorf("remaining = %v, want 100", stocks[0].Remaining)
	}
}

func TestLotStocksMultiLotLabelsRespected(t *testing.T) {
	runs := append(twoLotRuns(),
		lotRun("d1", "diecut", "", 30, 4), // unlabeled consumption matches no lot
		lotRun("d2", "diecut", "B", 40, 4),
	)

	stocks := LotStocks(runs, "diecut", "print", nil)
	if len(stocks) != 2 {
		t.Fatalf("got %d lots, want 2", len(stocks))
	}
	if stocks[0].Lot != "A" || stocks[0].Remaining != 100 {
		t.Errorf("lot A = %+v, want remaining 100", stocks[0])
	}
	if stocks[1].Lot != "B" || stocks[1].Remaining != 60 {
		t.Errorf("lot B = %+v, want remaining 60", stocks[1])
	}
}

func TestLotStocksRemainingFlooredAtZero(t *testing.T) {
	runs := []entity.ProductionRun{
		lotRun("sA", "print", "A", 100, 1),
		lotRun("sB", "print", "B", 100, 2),
		lotRun("tA", "diecut", "A", 100, 3, "sA"),
		lotRun("tB", "diecut", "B", 100, 3, "sB"),
		lotRun("d1", "diecut", "A", 150, 4), // over-consumed lot A
	}

	stocks := LotStocks(runs, "diecut", "print", nil)
	if stocks[0].Lot != "A" || stocks[0].Remaining != 0 {
		t.Errorf("over-consumed lot A remaining = %v, want 0", stocks[0].Remaining)
	}
}

func TestLotStocksExtraConsumed(t *testing.T) {
	stocks := LotStocks(twoLotRuns(), "diecut", "print", map[string]float64{"A": 70})
	if stocks[0].Lot != "A" || stocks[0].Remaining != 30 {
		t.Errorf("lot A remaining = %v, want 30 after uncommitted consumption", stocks[0].Remaining)
	}
}

func TestLotStocksFIFOTieBreak(t *testing.T) {
	// same transfer timestamp: order falls back to the lot label
	runs := []entity.ProductionRun{
		lotRun("sB", "print", "B", 100, 1),
		lotRun("sA", "print", "A", 100, 1),
		lotRun("t1", "diecut", "", 200, 2, "sA", "sB"),
	}
	stocks := LotStocks(runs, "diecut", "print", nil)
	if len(stocks) != 2 || stocks[0].Lot != "A" || stocks[1].Lot != "B" {
		t.Errorf("tie break by lot label failed: %+v", stocks)
	}
}

func TestAllocateFIFOEmptyStage(t *testing.T) {
	got := AllocateFIFO(10, nil, "diecut", "print", nil)
	if got.Shortage != 10 || len(got.Allocations) != 0 {
		t.Errorf("empty stage should be a full shortage, got %+v", got)
	}
}

func TestAllocateFIFOZeroNeeded(t *testing.T) {
	got := AllocateFIFO(0, twoLotRuns(), "diecut", "print", nil)
	if got.Shortage != 0 || len(got.Allocations) != 0 {
		t.Errorf("zero needed should allocate nothing, got %+v", got)
	}
}
