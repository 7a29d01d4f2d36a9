package agent

import (
	"strings"
	"text/template"
)

var extractionPrompt = template.Must(template.New("extraction").Parse(`You are an expert product analyst. The documents below were scraped from {{.URL}}.
Extract the key product information they contain.

Documents:
{{range .Documents}}
[Document {{.Index}}]
{{.Content}}
{{end}}
Answer in exactly this format:

- **Product Name**:
- **Product Description**:
- **Key Features and Benefits**:
- **Price**:
- **Target Audience**:
- **Unique Selling Proposition (USP)**:
- **Additional Notes**:

Be thorough. Leave a field empty when the documents do not mention it.`))

var researchPrompt = template.Must(template.New("research").Parse(`You are a market researcher. Identify the main competitors of the product sold at {{.URL}} and describe them.

Product information:
{{.ProductInfo}}
{{if .Context}}
Additional context from the product page:
{{.Context}}
{{end}}
For each competitor give the product name, the company, its key features, its price range and how it is positioned against this product.
Finish with a short summary of the competitive landscape.`))

var comparisonPrompt = template.Must(template.New("comparison").Parse(`You are an expert business analyst.

Product information from {{.URL}}:
{{.ProductInfo}}

Competitor information:
{{.CompetitorInfo}}

Write a comparative analysis that covers:

1. **Feature Comparison**: how the features differ in detail.
2. **Pricing Strategies**: pricing models and value for money.
3. **Market Positioning**: branding, target markets and positioning.
4. **Strengths and Weaknesses**: advantages and drawbacks relative to the competitors.
5. **Customer Perception**: reviews, ratings and overall sentiment.

Conclude with concrete ways the product can improve its competitive advantage.`))

var reportPrompt = template.Must(template.New("report").Parse(`You are a senior business analyst writing for an executive audience.

Using the comparative analysis below for the product at {{.URL}}, write a complete report.

{{.Comparison}}

The report must contain these sections:

1. **Executive Summary**: purpose, approach, main findings and recommendation.
2. **Introduction**: background and objectives.
3. **Market Context**: relevant frameworks and prior observations.
4. **Methodology**: how the product and competitors were assessed.
5. **Analysis and Findings**: the detailed comparison.
6. **Discussion**: implications and limitations.
7. **Conclusion**: key points and next steps.
8. **References**: sources for any external data used.

Keep claims tied to the analysis and mark anything that needs verification.`))

var factCheckPrompt = template.Must(template.New("factcheck").Parse(`You are a meticulous fact-checker for business and competitive research. Review the report below for inaccuracies, inconsistencies and unsupported claims.

{{.Report}}

For every issue give:
- the claim in question
- why it is a problem
- how to fix or verify it

Then give an overall assessment of the report's accuracy and reliability.`))

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FactCheckedReport combines a draft and its fact-check annotations.
func FactCheckedReport(draft, annotations string) string {
	return "Original Report:\n----------------\n" + draft +
		"\n\nFact-Check Results:\n-------------------\n" + annotations
}
