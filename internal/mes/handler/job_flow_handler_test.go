package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupJobFlowTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	// Redis is intentionally unreachable: scan dedup degrades to allow
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	services := service.NewServices(repos, rdb, nil, "", zap.NewNop())
	handlers := NewHandlers(services)

	api := testutil.AuthGroup(router, "/api/v1/mes")
	jobs := api.Group("/jobs")
	jobs.POST("", handlers.Job.Create)
	jobs.GET("/:id", handlers.Job.Get)
	jobs.POST("/:id/release", handlers.Job.Release)
	jobs.POST("/:id/advance", handlers.Job.Advance)
	jobs.GET("/:id/progress", handlers.Job.Progress)
	jobs.GET("/:id/summary", handlers.Job.Summary)
	jobs.GET("/:id/lots", handlers.Run.LotStocks)
	jobs.GET("/:id/runs", handlers.Run.List)
	jobs.POST("/:id/runs/output", handlers.Run.RecordOutput)
	jobs.POST("/:id/runs/transfer", handlers.Run.Transfer)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestJobLifecycle walks a job through the full flow: create, release,
// record output at the first stage, advance, transfer WIP, consume it
// FIFO at the second stage, and check lot stocks along the way.
func TestJobLifecycle(t *testing.T) {
	env := setupJobFlowTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedWorkflow(t, env.DB, "wf-flow-001")

	// Create: BOM has a sheet line, so sheet stages plan against it (1000)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs",
		map[string]interface{}{
			"product_name": "彩盒A",
			"ordered_qty":  1000,
			"ordered_uom":  "pcs",
			"number_up":    10,
			"workflow_id":  "wf-flow-001",
			"bom_items": []map[string]interface{}{
				{"material_code": "PAPER-157G", "material_name": "157g铜版纸", "required_qty": 1000, "unit": "sht"},
			},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	jobID := data["id"].(string)
	if stageIDs := data["planned_stage_ids"].([]interface{}); len(stageIDs) != 3 {
		t.Errorf("Expected 3 planned stages, got %d", len(stageIDs))
	}

	// Release: current stage becomes the first planned stage
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/release", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on release, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["current_stage_id"] != "wf-flow-001-print" {
		t.Errorf("Expected current stage wf-flow-001-print, got %v", data["current_stage_id"])
	}

	// Record 950 at print: planned 1000, tolerance 75, within [925, 1075]
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 950, "lot": "L-0501"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on output, got %d: %s", w.Code, w.Body.String())
	}

	// Another 200 would land at 1150, over the 1075 upper bound
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 200, "lot": "L-0501"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on over-limit output, got %d: %s", w.Code, w.Body.String())
	}

	// Progress reflects the accepted run only
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/mes/jobs/"+jobID+"/progress", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on progress, got %d: %s", w.Code, w.Body.String())
	}
	stages := testutil.ParseResponse(w)["data"].(map[string]interface{})["stages"].([]interface{})
	printStage := stages[0].(map[string]interface{})
	if printStage["produced"].(float64) != 950 {
		t.Errorf("Expected produced 950 at print, got %v", printStage["produced"])
	}
	if printStage["percentage"].(float64) != 95 {
		t.Errorf("Expected percentage 95, got %v", printStage["percentage"])
	}

	// Advance to diecut
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/advance", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on advance, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["current_stage_id"] != "wf-flow-001-diecut" {
		t.Errorf("Expected current stage wf-flow-001-diecut, got %v", data["current_stage_id"])
	}

	// Output at diecut before any transfer: no lot stock, shortage rejected
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 100}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 before transfer, got %d: %s", w.Code, w.Body.String())
	}

	// Transfer WIP from print: one transfer run per lot
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/transfer", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on transfer, got %d: %s", w.Code, w.Body.String())
	}
	runs := testutil.ParseResponse(w)["data"].(map[string]interface{})["runs"].([]interface{})
	if len(runs) != 1 {
		t.Fatalf("Expected 1 transfer run, got %d", len(runs))
	}
	transfer := runs[0].(map[string]interface{})
	if transfer["lot"] != "L-0501" || transfer["qty_good"].(float64) != 950 {
		t.Errorf("Expected transfer of 950 from L-0501, got %v/%v", transfer["lot"], transfer["qty_good"])
	}

	// Re-transfer finds nothing: sources are already referenced
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/transfer", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on re-transfer, got %d: %s", w.Code, w.Body.String())
	}

	// Consume 500 at diecut: FIFO attributes it to the transferred lot
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 500}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on diecut output, got %d: %s", w.Code, w.Body.String())
	}
	runs = testutil.ParseResponse(w)["data"].(map[string]interface{})["runs"].([]interface{})
	if len(runs) != 1 || runs[0].(map[string]interface{})["lot"] != "L-0501" {
		t.Fatalf("Expected single run attributed to L-0501, got %s", w.Body.String())
	}

	// Lot stocks: 950 in, 500 consumed, 450 remaining
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/mes/jobs/"+jobID+"/lots", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on lots, got %d: %s", w.Code, w.Body.String())
	}
	lots := testutil.ParseResponse(w)["data"].(map[string]interface{})["lots"].([]interface{})
	if len(lots) != 1 {
		t.Fatalf("Expected 1 lot, got %d", len(lots))
	}
	stock := lots[0].(map[string]interface{})
	if stock["transferred"].(float64) != 950 || stock["consumed"].(float64) != 500 || stock["remaining"].(float64) != 450 {
		t.Errorf("Expected 950/500/450, got %v/%v/%v",
			stock["transferred"], stock["consumed"], stock["remaining"])
	}

	// Consuming 500 more exceeds the 450 remaining: shortage rejected
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 500}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on shortage, got %d: %s", w.Code, w.Body.String())
	}

	// Summary for the current stage
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/mes/jobs/"+jobID+"/summary", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on summary, got %d: %s", w.Code, w.Body.String())
	}
	summary := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if summary["stage_id"] != "wf-flow-001-diecut" {
		t.Errorf("Expected summary for diecut, got %v", summary["stage_id"])
	}
	if summary["produced"].(float64) != 500 {
		t.Errorf("Expected produced 500, got %v", summary["produced"])
	}
	if summary["transferred_in"].(float64) != 950 {
		t.Errorf("Expected transferred_in 950, got %v", summary["transferred_in"])
	}
}

// TestAdvanceRequiresStageOutput checks the gate on jobs that demand
// output before moving to the next stage.
func TestAdvanceRequiresStageOutput(t *testing.T) {
	env := setupJobFlowTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedWorkflow(t, env.DB, "wf-flow-002")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs",
		map[string]interface{}{
			"product_name":         "彩盒B",
			"ordered_qty":          1000,
			"workflow_id":          "wf-flow-002",
			"require_stage_output": true,
			"bom_items": []map[string]interface{}{
				{"material_name": "157g铜版纸", "required_qty": 1000, "unit": "sht"},
			},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	jobID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/release", nil, token)

	// No output yet: below completion threshold, advance refused
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/advance", nil, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on advance without output, got %d: %s", w.Code, w.Body.String())
	}

	// 930 clears the 925 lower bound, advance is allowed
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/runs/output",
		map[string]interface{}{"qty": 930, "lot": "L-0601"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on output, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/mes/jobs/"+jobID+"/advance", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on advance after output, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupJobFlowTest(t)
	w := testutil.DoRequest(env.Router, "GET", "/api/v1/mes/jobs/some-id", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}
