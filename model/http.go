package model

// SegmentRequestBody is the payload of POST /segment.
type SegmentRequestBody struct {
	Title  string  `json:"title"`
	Events []Event `json:"events"`
}

type LabeledSpan struct {
	Label  string  `json:"label"`
	Onset  float64 `json:"onset"`
	Offset float64 `json:"offset"`
	Start  int     `json:"start"`
	Stop   int     `json:"stop"`
}

type SegmentResponse struct {
	ID    string        `json:"id"`
	Score float64       `json:"score"`
	Spans []LabeledSpan `json:"spans"`
	Tags  []string      `json:"tags"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
