package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/services"
)

func TestShareURL(t *testing.T) {
	got := services.ShareURL("http://192.168.1.5:8081/", "my group", "poll_1")
	if got != "http://192.168.1.5:8081/groups/my%20group#poll_1" {
		t.Errorf("unexpected url: %s", got)
	}
}

func TestShareQR(t *testing.T) {
	f := setupPollService(t)
	ctx := context.Background()
	poll := f.create(t, models.PollTypeSingle, "A", "B")

	png, err := f.svc.ShareQR(ctx, group, poll.ID, "http://localhost:8081")
	if err != nil {
		t.Fatalf("ShareQR failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG data")
	}

	if _, err := f.svc.ShareQR(ctx, group, "poll_missing", "http://localhost:8081"); !errors.Is(err, services.ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
	if _, err := f.svc.ShareQR(ctx, group, poll.ID, ""); err == nil {
		t.Error("expected error without base url")
	}
}

func TestViews_ViewerSelection(t *testing.T) {
	f := setupPollService(t)
	ctx := context.Background()
	poll := f.create(t, models.PollTypeSingle, "A", "B")
	f.vote(t, poll.ID, poll.Options[0].ID, "alice")

	views, err := f.svc.Views(ctx, group, services.Viewer{Name: "alice"})
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	if len(views) != 1 || !views[0].HasVoted || !views[0].Options[0].Selected {
		t.Errorf("expected alice's selection in view, got %+v", views)
	}

	view, err := f.svc.View(ctx, group, poll.ID, services.Viewer{Name: "bob"})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.HasVoted || view.Options[0].Percentage != 100 {
		t.Errorf("unexpected view for bob: %+v", view)
	}

	if _, err := f.svc.View(ctx, group, "poll_missing", services.Viewer{}); !errors.Is(err, services.ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}
