package hermes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectReportGenerated(t *testing.T) {
	id := "5b0c3f8e-7d0a-4c55-9d43-0a3d8f0e3c11"
	subject := SubjectReportGenerated(id)

	assert.Equal(t, "circularity.report."+id+".generated", subject)
	assert.True(t, strings.HasPrefix(subject, strings.TrimSuffix(SubjectReportWildcard, ">")))
}

func TestStreamMaxAgeParses(t *testing.T) {
	d, err := time.ParseDuration(StreamMaxAge)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, d)
}

func TestReportGeneratedEventJSON(t *testing.T) {
	ev := ReportGeneratedEvent{
		ReportID:         "r1",
		Source:           SourceAPI,
		CompositeIndex:   3.25,
		CategoryAverages: map[string]float64{"Phase of Integration": 3},
		Answered:         2,
		Total:            23,
		Timestamp:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["report_id"])
	assert.Equal(t, "api", decoded["source"])
	assert.Equal(t, 3.25, decoded["composite_index"])
	assert.Equal(t, float64(23), decoded["total"])
	assert.NotContains(t, decoded, "responses")
}
