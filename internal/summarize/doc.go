// Package summarize asks a language model to turn a normalized listing into
// a structured summary (see model.Summary).
//
// The OpenAI client is built explicitly from configuration; the package
// never reads credentials from the environment on its own.
package summarize
