package model

// Stage names in pipeline order. They appear verbatim in progress events,
// error messages and metrics labels.
const (
	StageWebScraping           = "Web Scraping"
	StageDocumentIngestion     = "Document Ingestion"
	StageInformationExtraction = "Information Extraction"
	StageCompetitiveResearch   = "Competitive Research"
	StageAnalysisComparison    = "Analysis Comparison"
	StageReportGeneration      = "Report Generation"
)

// Terminal event stages. Exactly one of them ends every progress stream.
const (
	StageComplete = "complete"
	StageError    = "error"
)

// Stages returns the six analysis stages in execution order.
func Stages() []string {
	return []string{
		StageWebScraping,
		StageDocumentIngestion,
		StageInformationExtraction,
		StageCompetitiveResearch,
		StageAnalysisComparison,
		StageReportGeneration,
	}
}
