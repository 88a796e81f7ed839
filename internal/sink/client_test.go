package sink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bmcnabb/qcodex/internal/qcode"
)

func TestPutRecords_SendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotReq RecordsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	defer c.Close()

	records := []qcode.Record{{DocID: "d1", Code: "topic", Text: "span"}}
	if err := c.PutRecords(context.Background(), "d1", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if len(gotReq.Records) != 1 || gotReq.Records[0].Code != "topic" {
		t.Errorf("unexpected payload: %+v", gotReq)
	}
}

func TestPut_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	defer c.Close()

	err := c.PutDiagnostics(context.Background(), "d1", nil)
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if retryErr.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", retryErr.Status)
	}
}

func TestPut_ClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	defer c.Close()

	err := c.PutRecords(context.Background(), "d1", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Errorf("a 400 must not be retryable: %v", err)
	}
}
