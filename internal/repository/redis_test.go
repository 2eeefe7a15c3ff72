package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	repo, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, mr
}

func TestRedis_LoadMissingGroup(t *testing.T) {
	repo, _ := newTestRedis(t)

	_, err := repo.LoadDocument(context.Background(), "g1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedis_SaveAndLoad(t *testing.T) {
	repo, mr := newTestRedis(t)
	ctx := context.Background()

	if err := repo.SaveDocument(ctx, "g1", sampleDocument()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := mr.Get("pollboard:group:g1:document")
	if err != nil {
		t.Fatalf("expected key to exist: %v", err)
	}
	if !strings.Contains(raw, `"photos"`) {
		t.Errorf("expected host fields in stored body, got %s", raw)
	}

	doc, err := repo.LoadDocument(ctx, "g1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(doc.Polls) != 1 || doc.Polls[0].ID != "poll_1" {
		t.Errorf("unexpected polls: %+v", doc.Polls)
	}
}

func TestRedis_ServerDown(t *testing.T) {
	repo, mr := newTestRedis(t)
	mr.Close()

	if err := repo.SaveDocument(context.Background(), "g1", sampleDocument()); err == nil {
		t.Error("expected save to fail with server down")
	}
	if err := repo.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail with server down")
	}
}

func TestNewRedis_InvalidURI(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not a uri"); err == nil {
		t.Error("expected error for invalid uri")
	}
}
