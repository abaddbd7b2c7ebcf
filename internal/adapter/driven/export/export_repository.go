package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// ExportToCSV grava o resultado da análise como uma tabela CSV por período.
func (r *ExportRepositoryImpl) ExportToCSV(result entity.AnalysisResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Period Start", "Period End", "Group", "Cost", "Currency"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, series := range result.Series {
		for _, p := range series.Periods {
			row := []string{
				result.Spec.Granularity.Label(p.PeriodStart),
				result.Spec.Granularity.Label(p.PeriodEnd),
				p.GroupKey,
				fmt.Sprintf("%.2f", p.Cost),
				p.Currency,
			}
			if err := writer.Write(row); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	summary := []string{"TOTAL", "", "", fmt.Sprintf("%.2f", result.TotalCost), result.Currency}
	if err := writer.Write(summary); err != nil {
		return "", fmt.Errorf("error writing CSV summary: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON grava o resultado completo da análise como JSON.
func (r *ExportRepositoryImpl) ExportToJSON(result entity.AnalysisResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	report := map[string]interface{}{
		"start_date":         result.Spec.Granularity.Label(result.Spec.StartDate),
		"end_date":           result.Spec.Granularity.Label(result.Spec.EndDate),
		"granularity":        result.Spec.Granularity,
		"group_by":           result.Spec.GroupBy,
		"total_cost":         result.TotalCost,
		"average_daily_cost": result.AverageDailyCost,
		"currency":           result.Currency,
		"data":               result.Combined.Periods,
		"chart_data":         result.Chart,
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error serializing report to JSON: %w", err)
	}

	if err := os.WriteFile(outputFilename, jsonData, 0644); err != nil {
		return "", fmt.Errorf("error writing JSON file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF grava o resultado da análise como um relatório PDF simples.
func (r *ExportRepositoryImpl) ExportToPDF(result entity.AnalysisResult, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, "AWS Cost Analysis Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(190, 6, fmt.Sprintf("Period: %s to %s (%s)",
		result.Spec.Granularity.Label(result.Spec.StartDate),
		result.Spec.Granularity.Label(result.Spec.EndDate),
		result.Spec.Granularity))
	pdf.Ln(6)
	pdf.Cell(190, 6, fmt.Sprintf("Total cost: %.2f %s", result.TotalCost, result.Currency))
	pdf.Ln(6)
	pdf.Cell(190, 6, fmt.Sprintf("Average daily cost: %.2f %s", result.AverageDailyCost, result.Currency))
	pdf.Ln(10)

	// Cabeçalho da tabela
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	pdf.CellFormat(35, 7, "Period", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, "Group", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Cost", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, "Currency", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, series := range result.Series {
		label := series.GroupKey
		if label == "" {
			label = "All services"
		}
		for _, p := range series.Periods {
			pdf.CellFormat(35, 6, result.Spec.Granularity.Label(p.PeriodStart), "1", 0, "L", false, 0, "")
			pdf.CellFormat(95, 6, label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", p.Cost), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, p.Currency, "1", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
