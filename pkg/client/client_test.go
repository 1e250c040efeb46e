package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsServer serves canned responses on the analytics path
type MockAnalyticsServer struct {
	server *httptest.Server

	mu     sync.Mutex
	status int
	body   string
	hits   int
	paths  []string
}

func NewMockAnalyticsServer() *MockAnalyticsServer {
	mock := &MockAnalyticsServer{status: http.StatusOK, body: `{"data":{}}`}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockAnalyticsServer) Close() {
	m.server.Close()
}

func (m *MockAnalyticsServer) URL() string {
	return m.server.URL
}

// SetResponse sets the status code and body returned for every request
func (m *MockAnalyticsServer) SetResponse(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.body = body
}

func (m *MockAnalyticsServer) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

func (m *MockAnalyticsServer) LastPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.paths) == 0 {
		return ""
	}
	return m.paths[len(m.paths)-1]
}

func (m *MockAnalyticsServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits++
	m.paths = append(m.paths, r.URL.Path)
	status, body := m.status, m.body
	m.mu.Unlock()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "plain base", base: "https://api.example.com", want: "https://api.example.com/api/analytics/"},
		{name: "trailing slash", base: "https://api.example.com/", want: "https://api.example.com/api/analytics/"},
		{name: "with prefix", base: "http://localhost:8000/v2", want: "http://localhost:8000/v2/api/analytics/"},
		{name: "empty", base: "  ", wantErr: true},
		{name: "no scheme", base: "api.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Endpoint(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Endpoint("")
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}

func TestClient_FetchSnapshot(t *testing.T) {
	mockServer := NewMockAnalyticsServer()
	defer mockServer.Close()

	ctx := context.Background()
	client, err := NewClient(mockServer.URL(), 5*time.Second)
	require.NoError(t, err)

	t.Run("decodes full payload", func(t *testing.T) {
		mockServer.SetResponse(http.StatusOK, `{
			"data": {
				"totals": {"total_users": 1520, "total_quests": 12, "total_rewards": 87},
				"recyclables": {
					"overall": {"collected_total": 640},
					"top_collected_materials": [
						{"name": "Plastic Bottle", "collected": 400, "target": 500},
						{"name": "Battery", "collected": 40, "target": 150}
					]
				}
			}
		}`)

		snap, err := client.FetchSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1520), snap.Totals.TotalUsers)
		assert.Equal(t, int64(12), snap.Totals.TotalQuests)
		assert.Equal(t, int64(87), snap.Totals.TotalRewards)
		assert.Equal(t, int64(640), snap.Recyclables.Overall.CollectedTotal)
		require.Len(t, snap.Recyclables.TopCollectedMaterials, 2)
		assert.Equal(t, "Plastic Bottle", snap.Recyclables.TopCollectedMaterials[0].Name)
		assert.Equal(t, "/api/analytics/", mockServer.LastPath())
	})

	t.Run("missing data member defaults to empty snapshot", func(t *testing.T) {
		mockServer.SetResponse(http.StatusOK, `{}`)

		snap, err := client.FetchSnapshot(ctx)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Zero(t, snap.Totals.TotalUsers)
		assert.Empty(t, snap.Recyclables.TopCollectedMaterials)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		mockServer.SetResponse(http.StatusServiceUnavailable, `oops`)

		_, err := client.FetchSnapshot(ctx)
		require.Error(t, err)

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
		assert.Contains(t, err.Error(), "unexpected status 503")
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		mockServer.SetResponse(http.StatusOK, `{"data": [`)

		_, err := client.FetchSnapshot(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode analytics")
	})
}

func TestClient_FetchSnapshotNetworkError(t *testing.T) {
	mockServer := NewMockAnalyticsServer()
	url := mockServer.URL()
	mockServer.Close()

	client, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, err = client.FetchSnapshot(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "fetch analytics", fetchErr.Op)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestClient_FetchSnapshotCancelled(t *testing.T) {
	mockServer := NewMockAnalyticsServer()
	defer mockServer.Close()

	client, err := NewClient(mockServer.URL(), time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.FetchSnapshot(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
