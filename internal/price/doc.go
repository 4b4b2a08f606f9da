// Package price computes the total monthly cost of summarized listings and
// filters them against a budget.
//
// Summaries come from a language model, so price components may be numbers,
// numeric strings or free text. Sanitize coerces each component to a float
// and treats anything it cannot read as zero.
package price
