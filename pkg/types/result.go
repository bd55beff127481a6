package types

// SearchHit is one ranked search result: a document plus its raw distance
// from the query vector. Distance ordering (ascending) is the only ranking
// order; Relevance is a display transform.
type SearchHit struct {
	Document  Document
	Distance  float64
	Relevance float64 // 1/(1+Distance), in (0, 1]
}

// RelevanceFromDistance converts a non-negative distance into the bounded
// display score 1/(1+d). It is monotonic in distance and never used for
// internal ordering.
func RelevanceFromDistance(d float64) float64 {
	return 1.0 / (1.0 + d)
}

// NewSearchHit builds a hit with its relevance score attached.
func NewSearchHit(doc Document, distance float64) SearchHit {
	return SearchHit{
		Document:  doc,
		Distance:  distance,
		Relevance: RelevanceFromDistance(distance),
	}
}
