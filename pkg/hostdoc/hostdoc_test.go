package hostdoc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/repository"
)

// noopLogger implements logger.Logger but discards all output
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any) {}
func (noopLogger) Error(msg string, args ...any) {}
func (noopLogger) SetLevel(level slog.Level) {}
func (noopLogger) GetLevel() slog.Level { return slog.LevelInfo }
func (noopLogger) EnableHTTPLogging() {}
func (noopLogger) DisableHTTPLogging() {}
func (noopLogger) IsHTTPLoggingEnabled() bool { return false }

var _ logger.Logger = noopLogger{}

func TestHTTPClient_LoadDocument_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/groups/g1/data" {
			t.Errorf("expected path /groups/g1/data, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"photos":["a.jpg"],"polls":[{"id":"poll_1","question":"Q","type":"single","status":"open","options":[]}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	doc, err := client.LoadDocument(context.Background(), "g1")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}

	if len(doc.Polls) != 1 || doc.Polls[0].ID != "poll_1" {
		t.Errorf("unexpected polls: %+v", doc.Polls)
	}
	if string(doc.Extra["photos"]) != `["a.jpg"]` {
		t.Errorf("expected photos preserved, got %s", doc.Extra["photos"])
	}
}

func TestHTTPClient_LoadDocument_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.LoadDocument(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestHTTPClient_LoadDocument_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	doc, err := client.LoadDocument(context.Background(), "g1")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if len(doc.Polls) != 0 {
		t.Errorf("expected empty document, got %+v", doc.Polls)
	}
}

func TestHTTPClient_LoadDocument_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	if _, err := client.LoadDocument(context.Background(), "g1"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestHTTPClient_SaveDocument_SendsJSONAndToken(t *testing.T) {
	var gotBody, gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", noopLogger{})
	client.SetToken("secret")

	doc := models.NewGroupData()
	doc.Polls = append(doc.Polls, models.Poll{ID: "poll_1", Question: "Q"})
	if err := client.SaveDocument(context.Background(), "g1", doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	if !strings.Contains(gotBody, `"poll_1"`) {
		t.Errorf("expected poll in body, got %s", gotBody)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotType)
	}
}

func TestHTTPClient_SaveDocument_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	err := client.SaveDocument(context.Background(), "g1", models.NewGroupData())
	if err == nil {
		t.Fatal("expected error for server error response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected host error message, got %v", err)
	}
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, noopLogger{})
	if _, err := client.LoadDocument(context.Background(), "g1"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestHTTPClient_EscapesGroupID(t *testing.T) {
	client := NewHTTPClient("http://host", noopLogger{})
	if got := client.documentURL("a b/c"); got != "http://host/groups/a%20b%2Fc/data" {
		t.Errorf("unexpected url: %s", got)
	}
}

func TestMockClient_RoundTrip(t *testing.T) {
	seed := models.NewGroupData()
	seed.Polls = append(seed.Polls, models.Poll{ID: "poll_1"})
	m := NewMockClient(WithDocument("g1", seed))
	ctx := context.Background()

	doc, err := m.LoadDocument(ctx, "g1")
	if err != nil || len(doc.Polls) != 1 {
		t.Fatalf("unexpected load result: %+v, %v", doc, err)
	}

	if _, err := m.LoadDocument(ctx, "g2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	m.SetSaveError(errors.New("offline"))
	if err := m.SaveDocument(ctx, "g1", doc); err == nil {
		t.Error("expected injected save error")
	}
	if m.Saves() != 0 {
		t.Errorf("expected no successful saves, got %d", m.Saves())
	}
}
