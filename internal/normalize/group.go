package normalize

import "github.com/nao1215/aptscout/internal/model"

// PairsToDict groups pairs by classification. Keys keep first-seen order and
// values keep document order.
func PairsToDict(pairs []model.TaggedPair) *model.GroupedMap[model.Classification, model.Payload] {
	grouped := model.NewGroupedMap[model.Classification, model.Payload]()
	for _, p := range pairs {
		grouped.Add(p.Classification, p.Payload)
	}
	return grouped
}

// Flatten collapses a single value to a scalar and leaves any other length
// as a list.
func Flatten(values []string) model.Field {
	return model.NewField(values)
}

// texts returns the text of every payload.
func texts(payloads []model.Payload) []string {
	out := make([]string, len(payloads))
	for i, p := range payloads {
		out[i] = p.Text
	}
	return out
}
