package nutrisense

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:        server.URL,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestAnalyze_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Analysis failed. Please try again."}`))
			return
		}
		w.Write([]byte(`{"id":"rec-1","verdict":"safe","confidence":90}`))
	}))

	record, err := client.Analyze(context.Background(), AnalyzeRequest{Ingredients: "water"})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, "safe", record.Verdict)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAnalyze_ValidationErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Ingredients text is required"}`))
	}))

	_, err := client.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Ingredients text is required", apiErr.Message)
}

func TestAnalyze_LastErrorSurfacesAfterExhaustion(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"Rate limit exceeded. Please try again in a moment."}`))
	}))

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Ingredients: "water"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, IsRateLimited(err))
}

func TestChat_RetriesOnce(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Chat failed. Please try again."}`))
			return
		}
		w.Write([]byte(`{"response":"Generally fine in moderation."}`))
	}))

	answer, err := client.Chat(context.Background(), ChatRequest{Question: "Is aspartame ok?"})
	require.NoError(t, err)
	assert.Equal(t, "Generally fine in moderation.", answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTranscribe_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Transcription failed. Please try again."}`))
	}))

	_, err := client.Transcribe(context.Background(), "UklGRiQ=")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestShareRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/share", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shareCode":"abc123defg"}`))
	})
	mux.HandleFunc("GET /api/share/abc123defg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc123defg","productName":"Soda","verdict":"caution"}`))
	})
	mux.HandleFunc("GET /api/share/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Shared analysis not found"}`))
	})
	client := newTestClient(t, mux)

	code, err := client.Share(context.Background(), &Analysis{ProductName: "Soda", Verdict: "caution"})
	require.NoError(t, err)
	assert.Equal(t, "abc123defg", code)

	record, err := client.GetShared(context.Background(), "abc123defg")
	require.NoError(t, err)
	assert.Equal(t, "Soda", record.ProductName)

	_, err = client.GetShared(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestAnalyze_ContextCancelStopsRetries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Analysis failed. Please try again."}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Analyze(ctx, AnalyzeRequest{Ingredients: "water"})
	require.Error(t, err)
}
