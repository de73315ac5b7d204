package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleSend(t *testing.T) {
	var gotReq scheduleReq
	var gotAuth, gotIdem string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/sends", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scheduleResp{ID: "send-42"})
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123", "portal@skiftesgatan.se", time.Second)
	at := time.Date(2026, 3, 13, 6, 0, 0, 0, time.UTC)
	id, err := c.ScheduleSend(context.Background(), "alva@example.com", "Reminder", "body", at, "idem-1")
	require.NoError(t, err)

	assert.Equal(t, "send-42", id)
	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, "idem-1", gotIdem)
	assert.Equal(t, "portal@skiftesgatan.se", gotReq.From)
	assert.Equal(t, "alva@example.com", gotReq.Recipient)
	assert.Equal(t, "2026-03-13T06:00:00Z", gotReq.SendAt)
	assert.Equal(t, "idem-1", gotReq.IdempotencyKey)
}

func TestScheduleSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "from@x.se", time.Second)
	_, err := c.ScheduleSend(context.Background(), "a@b.se", "s", "b", time.Now(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCancelSend(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "from@x.se", time.Second)
	require.NoError(t, c.CancelSend(context.Background(), "send-42"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/v1/sends/send-42", gotPath)
}

func TestRescheduleSend(t *testing.T) {
	var gotReq rescheduleReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/sends/send-42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "from@x.se", time.Second)
	at := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	require.NoError(t, c.RescheduleSend(context.Background(), "send-42", at))
	assert.Equal(t, "2026-03-14T06:00:00Z", gotReq.SendAt)
}
