package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/api/shared"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/flow"
	"github.com/phrazzld/vaultflow/internal/platform/logger"
	"github.com/phrazzld/vaultflow/internal/store"
	"github.com/phrazzld/vaultflow/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	manager *flow.Manager
	states  *store.MemoryStateStore
}

func newTestServer(t *testing.T, maxFlows int) *testServer {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	states := store.NewMemoryStateStore()
	manager := flow.NewManager(task.NewRegistry(log), states, log, maxFlows)
	return &testServer{
		handler: NewRouter(manager, log),
		manager: manager,
		states:  states,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) startFlow(t *testing.T, extras map[string]string) FlowResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/flows", StartFlowRequest{
		Screen: flow.ScreenUnlock,
		Extras: bundle.FromMap(extras),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeFlow(t, w)
}

func decodeFlow(t *testing.T, w *httptest.ResponseRecorder) FlowResponse {
	t.Helper()
	var resp FlowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStartFlow(t *testing.T) {
	s := newTestServer(t, 0)

	resp := s.startFlow(t, map[string]string{
		task.KeyTaskType:    task.KindSearchURL,
		task.KeyURLToSearch: "https://example.com",
	})

	_, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	assert.False(t, resp.Closed)
	require.NotNil(t, resp.Screen)
	assert.Equal(t, flow.ScreenUnlock, resp.Screen.Name)
	assert.Equal(t, task.KindSearchURL, resp.Screen.TaskKind)
	url, ok := resp.Screen.Task.GetString(task.KeyURLToSearch)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", *url)
}

func TestStartFlow_IgnoresNonStringExtras(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, http.MethodPost, "/api/flows", `{"screen":"unlock","extras":{`+
		`"KP2A_APP_TASK_TYPE":"SearchUrlTask","UrlToSearch":"https://example.com",`+
		`"android.intent.extra.FLAGS":3,"android.intent.extra.STREAM":{"uri":"content://x"}}}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeFlow(t, w)
	require.NotNil(t, resp.Screen)
	assert.Equal(t, task.KindSearchURL, resp.Screen.TaskKind)
	url, ok := resp.Screen.Task.GetString(task.KeyURLToSearch)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", *url)
}

func TestStartFlow_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{name: "malformed json", body: `{"screen":`, wantMsg: "Invalid request format"},
		{name: "empty body", body: "", wantMsg: "Invalid request format"},
		{name: "unknown field", body: `{"screen":"unlock","task":"x"}`, wantMsg: "Invalid request format"},
		{name: "missing screen", body: `{"extras":{}}`, wantMsg: "Invalid Screen: required field"},
		{name: "extras not an object", body: `{"screen":"unlock","extras":5}`, wantMsg: "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 0)

			w := s.do(t, http.MethodPost, "/api/flows", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
			assert.Equal(t, 0, s.manager.Len())
		})
	}
}

func TestStartFlow_AtCapacity(t *testing.T) {
	s := newTestServer(t, 1)
	s.startFlow(t, nil)

	w := s.do(t, http.MethodPost, "/api/flows", StartFlowRequest{Screen: flow.ScreenUnlock})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Too many active flows, try again later", decodeError(t, w).Error)
}

func TestGetFlow(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, nil)

	w := s.do(t, http.MethodGet, "/api/flows/"+started.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, started, decodeFlow(t, w))

	w = s.do(t, http.MethodGet, "/api/flows/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Flow not found", decodeError(t, w).Error)

	w = s.do(t, http.MethodGet, "/api/flows/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid flow ID", decodeError(t, w).Error)
}

func TestUnlock(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, map[string]string{
		task.KeyTaskType:    task.KindSearchURL,
		task.KeyURLToSearch: "https://example.com",
	})

	w := s.do(t, http.MethodPost, "/api/flows/"+started.ID+"/unlock", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeFlow(t, w)
	require.Len(t, resp.Screens, 2)
	assert.Equal(t, task.ScreenShareURLResults, resp.Screen.Name)
	assert.Equal(t, task.KindSearchURL, resp.Screen.TaskKind)
}

func TestReplaceTaskThenRecreate(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, map[string]string{
		task.KeyTaskType:    task.KindSearchURL,
		task.KeyURLToSearch: "https://example.com",
	})
	base := "/api/flows/" + started.ID

	w := s.do(t, http.MethodPut, base+"/task", TaskRequest{
		Task: bundle.FromMap(map[string]string{task.KeyTaskType: task.KindSelectEntry}),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, task.KindSelectEntry, decodeFlow(t, w).Screen.TaskKind)

	w = s.do(t, http.MethodPost, base+"/recreate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, task.KindSelectEntry, decodeFlow(t, w).Screen.TaskKind)
	assert.Equal(t, 1, s.states.Len())
}

func TestReplaceTask_MissingTask(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, nil)

	w := s.do(t, http.MethodPut, "/api/flows/"+started.ID+"/task", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Task: required field", decodeError(t, w).Error)
}

func TestCreateEntry_PrefillsURLAndKeepsFlow(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, map[string]string{
		task.KeyTaskType:       task.KindCreateEntryThenClose,
		task.KeyCreateEntryURL: "https://example.com/login",
	})
	base := "/api/flows/" + started.ID

	w := s.do(t, http.MethodPost, base+"/entries", EntryRequest{Title: "Example", Username: "alice"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://example.com/login", resp.Entry.URL)
	assert.False(t, resp.FlowClosed)
	assert.False(t, resp.Flow.Closed)
	assert.Equal(t, flow.ScreenUnlock, resp.Flow.Screen.Name)
	assert.Equal(t, 1, s.manager.Len())
}

func TestSelectEntry_EndsFlow(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, map[string]string{task.KeyTaskType: task.KindSelectEntry})
	base := "/api/flows/" + started.ID

	w := s.do(t, http.MethodPost, base+"/selection", EntryRequest{Title: "Bank"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.FlowClosed)
	assert.True(t, resp.Flow.Closed)
	require.NotNil(t, resp.Flow.Result)
	assert.Equal(t, "Bank", resp.Flow.Result.Title)
	assert.Nil(t, resp.Flow.Screen)

	w = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "closed flows are dropped")
}

func TestCreateEntry_Validation(t *testing.T) {
	s := newTestServer(t, 0)
	started := s.startFlow(t, nil)

	w := s.do(t, http.MethodPost, "/api/flows/"+started.ID+"/entries", EntryRequest{Username: "alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Title: required field", decodeError(t, w).Error)
}

func TestBackAndDelete(t *testing.T) {
	s := newTestServer(t, 0)

	started := s.startFlow(t, nil)
	w := s.do(t, http.MethodPost, "/api/flows/"+started.ID+"/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeFlow(t, w).Closed, "leaving the last screen ends the flow")
	assert.Equal(t, 0, s.manager.Len())

	other := s.startFlow(t, nil)
	w = s.do(t, http.MethodDelete, "/api/flows/"+other.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/flows/"+other.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
