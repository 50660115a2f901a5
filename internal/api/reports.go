package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Circularity/internal/hermes"
	"github.com/MikeSquared-Agency/Circularity/internal/metrics"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
)

// ReportResponse wraps a computed report with the identifiers assigned when it
// was served.
type ReportResponse struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*scoring.Report
}

// publisher records metrics and emits events for generated reports.
type publisher struct {
	hermes  hermes.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func (p *publisher) generated(source string, report *scoring.Report) ReportResponse {
	resp := ReportResponse{
		ReportID:    uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Report:      report,
	}
	p.metrics.ObserveReport(source, report.CompositeIndex, report.Progress.Fraction)

	if p.hermes != nil {
		err := p.hermes.Publish(hermes.SubjectReportGenerated(resp.ReportID), hermes.ReportGeneratedEvent{
			ReportID:         resp.ReportID,
			Source:           source,
			CompositeIndex:   report.CompositeIndex,
			CategoryAverages: report.CategoryAverages,
			Answered:         report.Progress.Answered,
			Total:            report.Progress.Total,
			Timestamp:        resp.GeneratedAt,
		})
		if err != nil {
			p.logger.Warn("failed to publish report event", "report_id", resp.ReportID, "error", err)
		}
	}
	return resp
}

func (p *publisher) rejected(err error) {
	p.metrics.ReportRejected(rejectReason(err))
}

type ReportsHandler struct {
	scorer *scoring.Scorer
	pub    *publisher
}

func NewReportsHandler(s *scoring.Scorer, pub *publisher) *ReportsHandler {
	return &ReportsHandler{scorer: s, pub: pub}
}

type CreateReportRequest struct {
	Responses map[string]int `json:"responses"`
}

// Create scores a complete response set in one call. Keys may be factor
// names or DMF codes.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	responses, err := scoring.ResponsesFrom(h.scorer.Catalog(), req.Responses)
	if err != nil {
		h.pub.rejected(err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	report, err := h.scorer.ComputeReport(responses)
	if err != nil {
		h.pub.rejected(err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.pub.generated(hermes.SourceAPI, report))
}
