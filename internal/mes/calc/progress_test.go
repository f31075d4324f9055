package calc

import (
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func testStages() []entity.WorkflowStage {
	return []entity.WorkflowStage{
		{ID: "print", Name: "印刷", InputUnit: "sheets", OutputUnit: "sheets", SortOrder: 1},
		{ID: "diecut", Name: "模切", InputUnit: "sheets", OutputUnit: "sheets", SortOrder: 2},
		{ID: "gluing", Name: "糊盒", InputUnit: "sheets", OutputUnit: "cartons", SortOrder: 3},
	}
}

func testJob() *entity.Job {
	return &entity.Job{
		ID:              "job1",
		JobCode:         "JOB-202406010001",
		OrderedQty:      1000,
		OrderedUOM:      "pcs",
		NumberUp:        10,
		PlannedStageIDs: entity.StringList{"print", "diecut", "gluing"},
		CurrentStageID:  "diecut",
		BOMItems: []entity.JobBOMItem{
			{MaterialCode: "INK-01", RequiredQty: 5, Unit: "kg"},
			{MaterialCode: "PAPER-157G", RequiredQty: 1000, Unit: "sht"},
		},
	}
}

func TestStageProgressUnknownStage(t *testing.T) {
	if got := StageProgressFor(testJob(), "nope", nil, testStages()); got != nil {
		t.Errorf("unknown stage should yield nil, got %+v", got)
	}
}

func TestStageProgressSheetStageBOMFallback(t *testing.T) {
	job := testJob()
	runs := []entity.ProductionRun{
		run("r1", "print", 400),
		run("r2", "print", 100),
		run("t1", "diecut", 450, "r1"), // transfer, must not count as print output
	}

	p := StageProgressFor(job, "print", runs, testStages())
	if p == nil {
		t.Fatal("expected progress for print stage")
	}
	if p.Produced != 500 {
		t.Errorf("produced = %v, want 500", p.Produced)
	}
	// planned comes from the sheet-equivalent BOM entry
	if p.Planned != 1000 {
		t.Errorf("planned = %v, want 1000 from BOM", p.Planned)
	}
	if p.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", p.Percentage)
	}
	if p.UOM != UOMLabelSheets {
		t.Errorf("uom = %q, want %q", p.UOM, UOMLabelSheets)
	}
	if p.IsCurrent {
		t.Error("print is not the current stage")
	}
}

func TestStageProgressSheetStageNoBOM(t *testing.T) {
	job := testJob()
	job.BOMItems = nil

	p := StageProgressFor(job, "print", nil, testStages())
	if p.Planned != 1000 {
		t.Errorf("planned = %v, want ordered qty 1000", p.Planned)
	}

	job.PlannedOutputQty = 800
	p = StageProgressFor(job, "print", nil, testStages())
	if p.Planned != 800 {
		t.Errorf("planned = %v, want explicit planned output 800", p.Planned)
	}
}

func TestStageProgressPackagingStage(t *testing.T) {
	job := testJob()

	// both packaging parameters set: plannedBoxes * pcsPerBox wins
	job.PlannedBoxes = 50
	job.PcsPerBox = 200
	p := StageProgressFor(job, "gluing", nil, testStages())
	if p.Planned != 10000 {
		t.Errorf("planned = %v, want 10000 from packaging params", p.Planned)
	}
	if p.UOM != "cartons" {
		t.Errorf("uom = %q, want cartons", p.UOM)
	}

	// packaging params unset: ordered qty * numberUp
	job.PlannedBoxes = 0
	p = StageProgressFor(job, "gluing", nil, testStages())
	if p.Planned != 10000 {
		t.Errorf("planned = %v, want 1000*10", p.Planned)
	}

	// no numberUp either: unconverted, but still reported in the packaging unit
	job.NumberUp = 0
	p = StageProgressFor(job, "gluing", nil, testStages())
	if p.Planned != 1000 {
		t.Errorf("planned = %v, want unconverted 1000", p.Planned)
	}
	if p.UOM != "cartons" {
		t.Errorf("uom = %q, fallback must still report the packaging unit", p.UOM)
	}
}

func TestStageProgressPercentageClamped(t *testing.T) {
	job := testJob()
	runs := []entity.ProductionRun{run("r1", "print", 2500)}

	p := StageProgressFor(job, "print", runs, testStages())
	if p.Percentage != 100 {
		t.Errorf("percentage = %v, want clamped to 100", p.Percentage)
	}
}

func TestStageProgressZeroPlanned(t *testing.T) {
	job := testJob()
	job.OrderedQty = 0
	job.BOMItems = nil
	runs := []entity.ProductionRun{run("r1", "print", 100)}

	p := StageProgressFor(job, "print", runs, testStages())
	if p.Percentage != 0 {
		t.Errorf("percentage = %v, want 0 when planned is 0", p.Percentage)
	}
}

func TestAllStageProgress(t *testing.T) {
	job := testJob()
	progress := AllStageProgress(job, nil, testStages())
	if len(progress) != 3 {
		t.Fatalf("got %d stages, want 3", len(progress))
	}
	if progress[0].StageID != "print" || progress[2].StageID != "gluing" {
		t.Errorf("stage order not preserved: %+v", progress)
	}
	if !progress[1].IsCurrent {
		t.Errorf("diecut should be flagged current")
	}
}

func TestPreviousStageID(t *testing.T) {
	job := testJob()
	tests := []struct {
		stageID string
		want    string
	}{
		{"print", ""},
		{"diecut", "print"},
		{"gluing", "diecut"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := PreviousStageID(job, tt.stageID); got != tt.want {
			t.Errorf("PreviousStageID(%q) = %q, want %q", tt.stageID, got, tt.want)
		}
	}
}
