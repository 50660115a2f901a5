package hermes

import "time"

// ReportGeneratedEvent announces a computed report. Raw responses are never
// included.
type ReportGeneratedEvent struct {
	ReportID         string             `json:"report_id"`
	Source           string             `json:"source"`
	CompositeIndex   float64            `json:"composite_index"`
	CategoryAverages map[string]float64 `json:"category_averages"`
	Answered         int                `json:"answered"`
	Total            int                `json:"total"`
	Timestamp        time.Time          `json:"timestamp"`
}

// Report sources.
const (
	SourceAPI     = "api"
	SourceSession = "session"
)
