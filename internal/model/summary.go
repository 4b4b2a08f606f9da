package model

// Summary is the structured description the language model produces for a
// listing. Price components are kept as any because the model may answer
// with numbers, numeric strings or free text; consumers coerce them.
type Summary struct {
	Title    string       `json:"Title"`
	Location string       `json:"Location"`
	Size     any          `json:"Size"`
	Price    SummaryPrice `json:"Price"`
	URL      string       `json:"URL"`
	Pros     []string     `json:"Pros"`
	Cons     []string     `json:"Cons"`
	Comments string       `json:"Comments"`
}

// SummaryPrice is the monthly cost breakdown of a listing.
type SummaryPrice struct {
	Rent           any       `json:"Rent"`
	Administrative any       `json:"Administrative"`
	Media          MediaCost `json:"Media"`
	Parking        any       `json:"Parking"`
}

// MediaCost describes utilities: what the rent includes and what is extra.
type MediaCost struct {
	Included any `json:"included"`
	Extra    any `json:"extra"`
}

// NotAvailable is the placeholder used for unknown price components.
const NotAvailable = "N/A"

// FallbackSummary returns the summary shown for a listing that has not been
// summarized yet.
func FallbackSummary() Summary {
	return Summary{
		Title:    "Title not available",
		Location: "Location not available",
		Size:     "Size not available",
		Price: SummaryPrice{
			Rent:           NotAvailable,
			Administrative: NotAvailable,
			Media:          MediaCost{Included: NotAvailable, Extra: NotAvailable},
			Parking:        NotAvailable,
		},
		URL:      "#",
		Pros:     []string{},
		Cons:     []string{},
		Comments: "Details not available",
	}
}
