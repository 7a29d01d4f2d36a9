// Package pipeline runs the six analysis stages for a product URL in order.
//
// Each stage is a Step that reads what the earlier stages stored in a
// model.Analysis and stores its own output there. The first failing step
// stops the run; its name is reported through *StageError so callers can
// tell the user which stage failed.
//
// BatchProcessor runs independent pipelines for several URLs with a
// concurrency limit.
package pipeline
