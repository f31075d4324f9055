package service

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-mes/internal/mes/calc"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService 报表导出服务
type ReportService struct {
	jobRepo *repository.JobRepository
	runRepo *repository.RunRepository
	wfRepo  *repository.WorkflowRepository
}

func NewReportService(jobRepo *repository.JobRepository, runRepo *repository.RunRepository, wfRepo *repository.WorkflowRepository) *ReportService {
	return &ReportService{jobRepo: jobRepo, runRepo: runRepo, wfRepo: wfRepo}
}

var runLogHeaders = []string{"工序", "类型", "良品数", "报废数", "批次", "来源记录", "报工人", "报工时间"}

// ExportJob 导出任务报工明细和工序进度xlsx
func (s *ReportService) ExportJob(jobID string) (*excelize.File, string, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, "", fmt.Errorf("任务不存在: %w", err)
	}
	runs, err := s.runRepo.ListByJob(jobID)
	if err != nil {
		return nil, "", fmt.Errorf("读取报工记录失败: %w", err)
	}
	stages, err := s.wfRepo.AllStages()
	if err != nil {
		return nil, "", fmt.Errorf("读取工序定义失败: %w", err)
	}

	stageName := func(id string) string {
		if st := calc.FindStage(stages, id); st != nil {
			return st.Name
		}
		return id
	}

	f := excelize.NewFile()
	runSheet := "报工明细"
	f.SetSheetName("Sheet1", runSheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})

	for i, h := range runLogHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(runSheet, cell, h)
		f.SetCellStyle(runSheet, cell, cell, boldStyle)
	}

	for i, r := range runs {
		row := i + 2
		kind := "产出"
		if r.IsTransfer() {
			kind = "转序"
		}
		f.SetCellValue(runSheet, fmt.Sprintf("A%d", row), stageName(r.StageID))
		f.SetCellValue(runSheet, fmt.Sprintf("B%d", row), kind)
		f.SetCellValue(runSheet, fmt.Sprintf("C%d", row), r.QtyGood)
		f.SetCellValue(runSheet, fmt.Sprintf("D%d", row), r.QtyScrap)
		f.SetCellValue(runSheet, fmt.Sprintf("E%d", row), r.Lot)
		f.SetCellValue(runSheet, fmt.Sprintf("F%d", row), strings.Join(r.SourceRunIDs, ","))
		f.SetCellValue(runSheet, fmt.Sprintf("G%d", row), r.ReportedBy)
		f.SetCellValue(runSheet, fmt.Sprintf("H%d", row), r.ReportedAt.Format("2006-01-02 15:04:05"))
	}

	// 工序进度sheet
	progressSheet := "工序进度"
	f.NewSheet(progressSheet)
	progressHeaders := []string{"工序", "已产出", "计划数", "完成率%", "单位", "当前工序"}
	for i, h := range progressHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(progressSheet, cell, h)
		f.SetCellStyle(progressSheet, cell, cell, boldStyle)
	}
	for i, p := range calc.AllStageProgress(job, runs, stages) {
		row := i + 2
		current := ""
		if p.IsCurrent {
			current = "是"
		}
		f.SetCellValue(progressSheet, fmt.Sprintf("A%d", row), p.StageName)
		f.SetCellValue(progressSheet, fmt.Sprintf("B%d", row), p.Produced)
		f.SetCellValue(progressSheet, fmt.Sprintf("C%d", row), p.Planned)
		f.SetCellValue(progressSheet, fmt.Sprintf("D%d", row), p.Percentage)
		f.SetCellValue(progressSheet, fmt.Sprintf("E%d", row), p.UOM)
		f.SetCellValue(progressSheet, fmt.Sprintf("F%d", row), current)
	}

	fileName := fmt.Sprintf("%s-报工.xlsx", job.JobCode)
	return f, fileName, nil
}
