// Package agent implements the six stage agents of a product analysis.
//
// Every agent has the same shape: Execute(ctx, Input) Output, where Output
// embeds Result. Agents never return Go errors. Invalid input or a failure
// of the work is reported as Result{Success: false} with a message and the
// original error, so the pipeline can both show and classify it.
//
//   - WebScrapingAgent: validate, fetch, classify and sanitize a page
//   - DocumentIngestionAgent: split the page text into overlapping documents
//   - InformationExtractionAgent: extract product facts with the model
//   - CompetitiveResearchAgent: describe the competitive landscape
//   - AnalysisComparisonAgent: compare the product with its competitors
//   - ReportGenerationAgent: write the report and fact-check it
//
// Model calls run inside the rate limit manager's retry policy when a
// manager is configured.
package agent
