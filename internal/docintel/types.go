package docintel

import "time"

// Status is the service-reported state of an analyze operation.
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusRunning    Status = "running"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further status transition will occur.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Operation is the response body of an analyzeResults status query.
type Operation struct {
	Status              Status         `json:"status"`
	CreatedDateTime     time.Time      `json:"createdDateTime"`
	LastUpdatedDateTime time.Time      `json:"lastUpdatedDateTime"`
	Error               *ServiceError  `json:"error,omitempty"`
	AnalyzeResult       *AnalyzeResult `json:"analyzeResult,omitempty"`
}

// ServiceError is the diagnostic payload the service attaches to a failed
// operation.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalyzeResult holds the structured output of a prebuilt-read analysis.
type AnalyzeResult struct {
	APIVersion string  `json:"apiVersion"`
	ModelID    string  `json:"modelId"`
	Content    string  `json:"content"`
	Pages      []Page  `json:"pages"`
	Styles     []Style `json:"styles,omitempty"`
}

// Page is a single analyzed page.
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Angle      float64 `json:"angle,omitempty"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Unit       string  `json:"unit"`
	Lines      []Line  `json:"lines"`
	Words      []Word  `json:"words,omitempty"`
}

// Line is a line of recognized text. Polygon is a flat sequence of x,y
// coordinate pairs tracing the bounding region; it may be empty.
type Line struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon,omitempty"`
}

// Word is a recognized word with its confidence score.
type Word struct {
	Content    string    `json:"content"`
	Polygon    []float64 `json:"polygon,omitempty"`
	Confidence float64   `json:"confidence"`
}

// Style describes a detected text style such as handwriting.
type Style struct {
	IsHandwritten bool    `json:"isHandwritten"`
	Confidence    float64 `json:"confidence,omitempty"`
}
