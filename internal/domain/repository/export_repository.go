package repository

import (
	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
)

// ExportRepository defines the interface for writing analysis reports to disk.
type ExportRepository interface {
	ExportToCSV(result entity.AnalysisResult, filename, outputDir string) (string, error)
	ExportToJSON(result entity.AnalysisResult, filename, outputDir string) (string, error)
	ExportToPDF(result entity.AnalysisResult, filename, outputDir string) (string, error)
}
