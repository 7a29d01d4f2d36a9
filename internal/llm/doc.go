// Package llm is the boundary to the language model.
//
// Callers depend on the Generator interface only. Client implements it for
// any OpenAI compatible chat completions endpoint; GeneratorFunc adapts a
// plain function, which is what tests use.
//
// Client retries server errors and network failures itself. Rate limit
// responses are returned as *APIError with status 429 so the shared rate
// limit manager can apply its own backoff policy.
package llm
