package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	}))
	defer srv.Close()

	event := &Event{Type: EventBatchCompleted, JobID: "batch-1", Timestamp: 1700000000, Data: map[string]int{"total": 2}}
	require.NoError(t, Deliver(context.Background(), srv.URL, "s3cret", event))

	assert.Equal(t, Sign("s3cret", gotBody), gotSig)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventBatchCompleted, decoded.Type)
	assert.Equal(t, "batch-1", decoded.JobID)
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "status 500")
}

func TestDeliverWithRetry_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ok := deliverWithRetry(srv.URL, "", &Event{Type: EventBatchCompleted},
		[]time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond})
	assert.True(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	ok := deliverWithRetry(srv.URL, "", &Event{Type: EventBatchCompleted}, []time.Duration{0, time.Millisecond})
	assert.False(t, ok)
	assert.Equal(t, int32(2), calls.Load())
}
