package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pediatric-triage/internal/common/logger"
	"pediatric-triage/internal/triage/danger"
	"pediatric-triage/internal/triage/decision"
	"pediatric-triage/internal/triage/intent"
	"pediatric-triage/internal/triage/pipeline"
	"pediatric-triage/internal/triage/session"
	"pediatric-triage/pkg/ruleset"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewNoOpLogger()

	rules := []danger.Category{
		{
			Category: "呼吸系统",
			Signals: []danger.Signal{
				{
					Keywords:         []string{"呼吸"},
					DangerConditions: []string{"困难"},
					Action:           "立即拨打120",
					Reason:           "呼吸困难提示气道或肺部急症",
				},
			},
		},
	}

	p := pipeline.New(
		danger.NewDetector(ruleset.New(rules), log),
		intent.NewClassifier(log),
		session.NewMemoryStore(),
		decision.NewEngine(log),
		nil,
		log,
	)

	mux := http.NewServeMux()
	NewHandler(p, log).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postTriage(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/triage", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandleTriage_NormalFlow(t *testing.T) {
	srv := setupServer(t)

	resp, body := postTriage(t, srv, `{"conversation_id":"conv-1","message":"宝宝8个月，发烧38.5度"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "conv-1", body["conversation_id"])
	assert.Equal(t, false, body["is_danger"])

	slots, ok := body["slots"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "发烧", slots["symptom"])
	assert.Equal(t, 8.0, slots["age_months"])
}

func TestHandleTriage_DangerFlow(t *testing.T) {
	srv := setupServer(t)

	resp, body := postTriage(t, srv, `{"conversation_id":"conv-1","message":"孩子呼吸困难"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, body["is_danger"])
	assert.Equal(t, "呼吸系统", body["category"])
	warning, _ := body["warning"].(string)
	assert.Contains(t, warning, "120")
	assert.NotContains(t, body, "slots")
}

// The boundary mints an id when the caller omits one, so follow-up turns
// can reference the same conversation.
func TestHandleTriage_MintsConversationID(t *testing.T) {
	srv := setupServer(t)

	resp, body := postTriage(t, srv, `{"message":"孩子咳嗽了"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	id, ok := body["conversation_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestHandleTriage_BadRequests(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{not json`},
		{name: "blank message", body: `{"conversation_id":"conv-1","message":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postTriage(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleTriage_MethodNotAllowed(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/triage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
}
