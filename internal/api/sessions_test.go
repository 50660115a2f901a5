package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Circularity/internal/hermes"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
	"github.com/MikeSquared-Agency/Circularity/internal/session"
)

func createSession(t *testing.T, env *testEnv) session.Session {
	t.Helper()
	w := env.do(t, "POST", "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session.Session](t, w)
}

func TestSessionLifecycle(t *testing.T) {
	env := setupTestRouter(t)
	env.hermes.On("Publish", mock.Anything, mock.MatchedBy(func(ev hermes.ReportGeneratedEvent) bool {
		return ev.Source == hermes.SourceSession && ev.Answered == 2
	})).Return(nil).Once()

	s := createSession(t, env)
	require.NotEqual(t, uuid.Nil, s.ID)
	base := "/api/v1/sessions/" + s.ID.String()

	w := env.do(t, "PUT", base+"/responses", `{"factor":"DMF1","rating":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, "PUT", base+"/responses", `{"factor":"Pollution and Environmental Impact","rating":4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, "PUT", base+"/responses", `{"factor":"DMF2","rating":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, "DELETE", base+"/responses/"+url.PathEscape("Site Waste Management"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, "GET", base, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[session.Session](t, w)
	assert.Equal(t, scoring.Responses{
		"Material Procurement Processes":     2,
		"Pollution and Environmental Impact": 4,
	}, got.Responses)
	assert.Equal(t, 2, got.Progress.Answered)

	w = env.do(t, "POST", base+"/report", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[ReportResponse](t, w)
	assert.InDelta(t, 2*0.199+4*0.199, report.CompositeIndex, 1e-9)
	env.hermes.AssertExpectations(t)

	w = env.do(t, "GET", base, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "session is discarded after its report")
}

func TestSessionErrors(t *testing.T) {
	env := setupTestRouter(t)
	s := createSession(t, env)
	base := "/api/v1/sessions/" + s.ID.String()
	missing := "/api/v1/sessions/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad id", "GET", "/api/v1/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"unknown session", "GET", missing, "", http.StatusNotFound},
		{"submit unknown session", "PUT", missing + "/responses", `{"factor":"DMF1","rating":1}`, http.StatusNotFound},
		{"submit malformed", "PUT", base + "/responses", `{"factor":`, http.StatusBadRequest},
		{"submit no factor", "PUT", base + "/responses", `{"rating":1}`, http.StatusBadRequest},
		{"submit unknown factor", "PUT", base + "/responses", `{"factor":"DMF404","rating":1}`, http.StatusBadRequest},
		{"submit bad rating", "PUT", base + "/responses", `{"factor":"DMF1","rating":7}`, http.StatusBadRequest},
		{"clear unknown factor", "DELETE", base + "/responses/DMF404", "", http.StatusBadRequest},
		{"report with no responses", "POST", base + "/report", "", http.StatusUnprocessableEntity},
		{"report unknown session", "POST", missing + "/report", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	// a failed report leaves the session usable
	w := env.do(t, "GET", base, "")
	assert.Equal(t, http.StatusOK, w.Code)
	env.hermes.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeleteSession(t *testing.T) {
	env := setupTestRouter(t)
	s := createSession(t, env)
	base := "/api/v1/sessions/" + s.ID.String()

	w := env.do(t, "DELETE", base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, "DELETE", base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestSessionCapacity(t *testing.T) {
	c := setupTestRouterWithOptions(t, session.Options{MaxSessions: 1})
	createSession(t, c)
	w := c.do(t, "POST", "/api/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
