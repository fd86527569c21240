package gliner2

type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
	Start      int     `json:"start,omitempty"`
	End        int     `json:"end,omitempty"`
}

type Classification struct {
	Task       string   `json:"task"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence,omitempty"`
	Labels     []string `json:"labels,omitempty"` // For multi-label
}

// GLInER2 API request/response types
type ExtractRequest struct {
	Task      string  `json:"task"`
	Text      string  `json:"text"`
	Schema    any     `json:"schema"`
	Threshold float64 `json:"threshold,omitempty"`
}

type ExtractResponse struct {
	Result any `json:"result"`
}

type EntityResult struct {
	Entities map[string][]Entity `json:"entities"`
}

type ClassificationResult struct {
	Classifications map[string]Classification `json:"classifications"`
}
