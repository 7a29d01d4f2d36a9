package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/prodscout/internal/agent"
	"github.com/nao1215/prodscout/internal/pipeline"
	"github.com/nao1215/prodscout/internal/ratelimit"
	"github.com/nao1215/prodscout/internal/scrape"
)

// describeFailure turns a pipeline error into a message safe to show to
// clients. Internal details such as API keys or upstream bodies stay in
// the server log.
func describeFailure(err error) string {
	stage := "Analysis"
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}
	return fmt.Sprintf("%s failed: %s", stage, failureReason(err))
}

func failureReason(err error) string {
	var statusErr *scrape.StatusError
	switch {
	case ratelimit.IsQuotaError(err):
		return "the service is rate limited, please try again later"
	case errors.Is(err, agent.ErrInvalidInput), errors.Is(err, scrape.ErrInvalidURL):
		return "the product URL is not valid"
	case errors.Is(err, scrape.ErrURLUnreachable):
		return "the product URL could not be reached"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("the product page returned HTTP %d", statusErr.StatusCode)
	case errors.Is(err, context.Canceled):
		return "the analysis was cancelled"
	default:
		return "an error occurred during the analysis"
	}
}
