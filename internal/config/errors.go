package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidListenAddress is returned when no listen address is configured.
	ErrInvalidListenAddress = errors.New("invalid listen address: must not be empty")

	// ErrMissingModelName is returned when no model is configured.
	ErrMissingModelName = errors.New("missing model name: set model.name or OPENAI_MODEL_NAME")

	// ErrMissingModelBaseURL is returned when the model API root is empty.
	ErrMissingModelBaseURL = errors.New("missing model base URL: set model.baseURL or OPENAI_BASE_URL")

	// ErrInvalidModelRetries is returned when the model retry count is negative.
	ErrInvalidModelRetries = errors.New("invalid model max retries: must be non-negative")

	// ErrInvalidConcurrency is returned when the model concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid model max concurrency: must be positive")

	// ErrInvalidRequestsPerSecond is returned when the pacing rate is negative.
	ErrInvalidRequestsPerSecond = errors.New("invalid model requests per second: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidMaxContentLength is returned when the body limit is not positive.
	ErrInvalidMaxContentLength = errors.New("invalid max content length: must be positive")

	// ErrInvalidRateLimitWindow is returned when the throttle window is not positive.
	ErrInvalidRateLimitWindow = errors.New("invalid rate limit window: must be positive")

	// ErrInvalidRateLimitBudget is returned when the per-window budget is not positive.
	ErrInvalidRateLimitBudget = errors.New("invalid rate limit budget: must be positive")

	// ErrInvalidRetryPolicy is returned when the retry settings are inconsistent.
	ErrInvalidRetryPolicy = errors.New("invalid retry policy: retries must be non-negative and 0 < initial backoff <= max backoff")

	// ErrInvalidChunkConfig is returned when the splitter sizes are inconsistent.
	ErrInvalidChunkConfig = errors.New("invalid splitter config: chunk size must be positive and greater than the overlap")

	// ErrInvalidProxy is returned when a proxy entry lacks a host or port.
	ErrInvalidProxy = errors.New("invalid proxy: host and port are required")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")
)
