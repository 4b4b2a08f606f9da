package pipeline

import "github.com/nao1215/aptscout/internal/model"

// Job is the unit of work passed through a Pipeline.
type Job struct {
	// Index is the job's position in its batch, used in log messages and
	// default output file names.
	Index int

	// URL is the listing URL.
	URL string

	// InputPath is a stored record to load instead of fetching URL.
	InputPath string

	// OutputPath is where the job's result is written. Empty means the
	// result is only echoed.
	OutputPath string

	// Body is the fetched page markup.
	Body []byte

	// Pairs are the tagged pairs extracted from Body.
	Pairs []model.TaggedPair

	// Record is the normalized listing.
	Record *model.AdRecord

	// Summary is the language model's answer for Record.
	Summary map[string]any

	// Skipped is set by a step that decides the job needs no further work.
	// The pipeline stops without error.
	Skipped bool

	// Err is the error that stopped the job, if any.
	Err error

	// Performed lists the names of the steps that ran.
	Performed []string
}

// Target returns the best identifier of the job for log messages.
func (j *Job) Target() string {
	if j.URL != "" {
		return j.URL
	}
	return j.InputPath
}
