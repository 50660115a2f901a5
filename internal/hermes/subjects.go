package hermes

const (
	SubjectReportWildcard = "circularity.report.>"

	StreamName   = "CIRCULARITY_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectReportGenerated(reportID string) string {
	return "circularity.report." + reportID + ".generated"
}
