package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/registry"
	"mergington-activities/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *Config, opts ...registry.Option) *httptest.Server {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg, err := registry.FromCatalog(cat, opts...)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	svc := enrollment.NewService(reg, nil, log)
	if cfg == nil {
		cfg = LoadConfig("")
	}

	srv := httptest.NewServer(NewHandler(cfg, svc, log).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func roster(t *testing.T, srv *httptest.Server, activity string) []string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/activities")
	require.NoError(t, err)
	defer resp.Body.Close()

	var all ActivitiesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	return all[activity].Participants
}

func TestGetActivities(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/activities")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Len(t, body, 9)

	chess, ok := body["Chess Club"].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"description", "schedule", "max_participants", "participants"} {
		assert.Contains(t, chess, field)
	}
	assert.Equal(t, float64(12), chess["max_participants"])
	assert.Equal(t, []interface{}{"michael@mergington.edu", "daniel@mergington.edu"}, chess["participants"])
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "new participant",
			path:       "/activities/Chess%20Club/signup?email=newstudent@mergington.edu",
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Signed up newstudent@mergington.edu for Chess Club",
		},
		{
			name:       "duplicate participant",
			path:       "/activities/Chess%20Club/signup?email=michael@mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantKey:    "detail",
			wantValue:  "michael@mergington.edu is already signed up",
		},
		{
			name:       "unknown activity",
			path:       "/activities/Fake%20Activity/signup?email=student@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantKey:    "detail",
			wantValue:  "Activity not found",
		},
		{
			name:       "missing email",
			path:       "/activities/Chess%20Club/signup",
			wantStatus: http.StatusUnprocessableEntity,
			wantKey:    "detail",
			wantValue:  "email query parameter is required",
		},
		{
			name:       "whitespace email is still an identifier",
			path:       "/activities/Chess%20Club/signup?email=%20%20",
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Signed up    for Chess Club",
		},
		{
			name:       "empty email rejected before lookup",
			path:       "/activities/Fake%20Activity/signup?email=",
			wantStatus: http.StatusUnprocessableEntity,
			wantKey:    "detail",
			wantValue:  "email query parameter is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)
			resp, body := do(t, http.MethodPost, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestSignup_RecordsParticipant(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/activities/Chess%20Club/signup?email=newstudent@mergington.edu")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		[]string{"michael@mergington.edu", "daniel@mergington.edu", "newstudent@mergington.edu"},
		roster(t, srv, "Chess Club"))
}

func TestUnregister(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "existing participant",
			path:       "/activities/Chess%20Club/unregister?email=michael@mergington.edu",
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Unregistered michael@mergington.edu from Chess Club",
		},
		{
			name:       "participant not enrolled",
			path:       "/activities/Chess%20Club/unregister?email=nonexistent@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantKey:    "detail",
			wantValue:  "Participant not found",
		},
		{
			name:       "unknown activity",
			path:       "/activities/Fake%20Activity/unregister?email=student@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantKey:    "detail",
			wantValue:  "Activity not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)
			resp, body := do(t, http.MethodDelete, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestSignupAndUnregisterFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	email := "testuser@mergington.edu"

	resp, _ := do(t, http.MethodPost, srv.URL+"/activities/Programming%20Class/signup?email="+email)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, roster(t, srv, "Programming Class"), email)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/activities/Programming%20Class/unregister?email="+email)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"emma@mergington.edu", "sophia@mergington.edu"}, roster(t, srv, "Programming Class"))
}

func TestMultipleSignupsSameActivity(t *testing.T) {
	srv := newTestServer(t, nil)
	emails := []string{"user1@mergington.edu", "user2@mergington.edu", "user3@mergington.edu"}

	for _, email := range emails {
		resp, _ := do(t, http.MethodPost, srv.URL+"/activities/Gym%20Class/signup?email="+email)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	got := roster(t, srv, "Gym Class")
	for _, email := range emails {
		assert.Contains(t, got, email)
	}
}

func TestSignup_CapacityEnforced(t *testing.T) {
	srv := newTestServer(t, nil, registry.WithCapacityEnforcement(true))

	// Tennis Club seats 10 and starts with one participant.
	for i := 0; i < 9; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/activities/Tennis%20Club/signup?email=player"+string(rune('a'+i))+"@mergington.edu")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := do(t, http.MethodPost, srv.URL+"/activities/Tennis%20Club/signup?email=late@mergington.edu")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Activity is full", body["detail"])
}

func TestWrongMethod(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := do(t, http.MethodGet, srv.URL+"/activities/Chess%20Club/signup?email=a@mergington.edu")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestIndexRedirect(t *testing.T) {
	srv := newTestServer(t, nil)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/static/index.html", resp.Header.Get("Location"))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Mergington High School</h1>"), 0o644))

	srv := newTestServer(t, LoadConfig(dir))

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndReady(t *testing.T) {
	healthy := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return nil }}
	srv := newTestServer(t, LoadConfig("", healthy))

	resp, body := do(t, http.MethodGet, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, body = do(t, http.MethodGet, srv.URL+"/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestReady_FailingCheck(t *testing.T) {
	broken := ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }}
	srv := newTestServer(t, LoadConfig("", broken))

	resp, body := do(t, http.MethodGet, srv.URL+"/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "connection refused"}, body["failed"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
