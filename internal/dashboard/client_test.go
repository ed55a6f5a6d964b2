package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/parking_status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":0,"occupied":true},{"id":1,"occupied":false}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	snapshot, err := c.FetchStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.True(t, snapshot[0].Occupied)
	assert.False(t, snapshot[1].Occupied)
}

func TestClientNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.FetchStatus(context.Background())
	assert.ErrorIs(t, err, ErrStatus)
}

func TestClientUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.FetchStatus(context.Background())
	assert.ErrorIs(t, err, ErrRequest)
}

func TestClientFetchRecommendationsSparsePayload(t *testing.T) {
	// The unavailable branch omits total_available and best_spots; the
	// client tolerates the absence.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"available":false,"message":"No parking spaces available"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	result, err := c.FetchRecommendations(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Zero(t, result.TotalAvailable)
	assert.Nil(t, result.BestSpots)
}

func TestClientProcessFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process_frame", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"camera offline"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	result, err := c.ProcessFrame(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "camera offline", result.Message)
}
