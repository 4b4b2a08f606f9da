// Package pipeline runs listing jobs through a sequence of steps.
//
// A Job carries one listing through the stages it needs: fetching and
// normalizing a listing page (parse), or loading a stored record and asking
// the language model for a summary (summarize). Each stage is a Step.
//
// BatchProcessor runs many jobs with a concurrency limit. A failing job is
// logged with its index and never stops the others.
package pipeline
