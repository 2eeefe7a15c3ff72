package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/handlers"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/services"
	"github.com/abrezinsky/pollboard/internal/testutil"
)

func TestAdminRoutes_RequireSession(t *testing.T) {
	setup := newTestSetup(t)
	admin := "/api/admin/groups/" + group

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, admin + "/polls"},
		{http.MethodPost, admin + "/polls/poll_x/close"},
		{http.MethodPost, admin + "/polls/poll_x/reopen"},
		{http.MethodDelete, admin + "/polls/poll_x"},
		{http.MethodGet, admin + "/document"},
		{http.MethodPost, admin + "/reload"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := setup.do(t, rt.method, rt.path, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestCreatePoll(t *testing.T) {
	setup := newTestSetup(t)

	view := setup.createPoll(t, handlers.CreatePollRequest{
		Question:    "Weekend trip?",
		Type:        "Multiple",
		Options:     []string{"Beach", " ", "Mountains"},
		Anonymous:   true,
		ClosingDate: "2099-06-01T18:00",
	})

	if view.Type != models.PollTypeMultiple {
		t.Errorf("expected multiple, got %s", view.Type)
	}
	if len(view.Options) != 2 {
		t.Errorf("expected blank option dropped, got %d options", len(view.Options))
	}
	if view.CreatedBy != services.DefaultCreator {
		t.Errorf("expected default creator, got %q", view.CreatedBy)
	}
	if view.ClosingDate == nil || view.ClosingDate.Year() != 2099 {
		t.Errorf("expected closing date in 2099, got %v", view.ClosingDate)
	}
	if len(view.AdminActions) != 2 || view.AdminActions[0] != services.ActionClose {
		t.Errorf("expected close/delete actions, got %v", view.AdminActions)
	}
}

func TestCreatePoll_Validation(t *testing.T) {
	setup := newTestSetup(t)
	path := "/api/admin/groups/" + group + "/polls"

	tests := []struct {
		name string
		req  handlers.CreatePollRequest
	}{
		{"no question", handlers.CreatePollRequest{Options: []string{"a", "b"}}},
		{"one option", handlers.CreatePollRequest{Question: "Q?", Options: []string{"a"}}},
		{"bad type", handlers.CreatePollRequest{Question: "Q?", Type: "ranked", Options: []string{"a", "b"}}},
		{"bad closing date", handlers.CreatePollRequest{Question: "Q?", Options: []string{"a", "b"}, ClosingDate: "next tuesday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := setup.do(t, http.MethodPost, path, tt.req, setup.authCookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if apiErr := decodeError(t, rec); apiErr.Code != handlers.ErrCodeValidation {
				t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
			}
		})
	}
}

func TestCloseAndReopen(t *testing.T) {
	setup := newTestSetup(t)
	poll := setup.createPoll(t, handlers.CreatePollRequest{Question: "Lunch?", Options: []string{"Soup", "Salad"}})
	admin := "/api/admin/groups/" + group + "/polls/" + poll.ID

	setup.do(t, http.MethodPost, "/api/groups/"+group+"/polls/"+poll.ID+"/votes",
		handlers.VoteRequest{OptionID: poll.Options[1].ID, Voter: "Alice"})

	rec := setup.do(t, http.MethodPost, admin+"/close", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", rec.Code)
	}
	view := decodeView(t, rec)
	if view.Status != models.PollStatusClosed || view.WinnerText != "Salad" {
		t.Errorf("expected closed poll won by Salad, got %s / %q", view.Status, view.WinnerText)
	}
	if view.CanVote {
		t.Error("expected closed poll to refuse votes")
	}

	rec = setup.do(t, http.MethodPost, admin+"/reopen", nil, setup.authCookie)
	view = decodeView(t, rec)
	if view.Status != models.PollStatusOpen || view.Winner != nil {
		t.Errorf("expected reopened poll without winner, got %s / %v", view.Status, view.Winner)
	}
	if view.TotalVotes != 1 {
		t.Errorf("expected votes kept across reopen, got %d", view.TotalVotes)
	}
}

func TestDeletePoll(t *testing.T) {
	setup := newTestSetup(t)
	poll := setup.createPoll(t, handlers.CreatePollRequest{Question: "Lunch?", Options: []string{"Soup", "Salad"}})
	path := "/api/admin/groups/" + group + "/polls/" + poll.ID

	rec := setup.do(t, http.MethodDelete, path, nil, setup.authCookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodDelete, path, nil, setup.authCookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestGetDocument(t *testing.T) {
	setup := newTestSetup(t)
	setup.createPoll(t, handlers.CreatePollRequest{Question: "Lunch?", Options: []string{"Soup", "Salad"}})

	rec := setup.do(t, http.MethodGet, "/api/admin/groups/"+group+"/document", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var doc models.GroupData
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.Polls) != 1 || doc.Polls[0].Question != "Lunch?" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestReload(t *testing.T) {
	setup := newTestSetup(t)
	setup.createPoll(t, handlers.CreatePollRequest{Question: "Lunch?", Options: []string{"Soup", "Salad"}})

	rec := setup.do(t, http.MethodPost, "/api/admin/groups/"+group+"/reload", nil, setup.authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handlers.ReloadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Group != group || resp.Polls != 1 {
		t.Errorf("unexpected reload response %+v", resp)
	}
}

func TestCreatePoll_LabelUsesServiceClock(t *testing.T) {
	clock := testutil.NewClock(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	setup := newTestSetup(t, services.WithClock(clock.Now))

	view := setup.createPoll(t, handlers.CreatePollRequest{
		Question:    "New year brunch?",
		Options:     []string{"Yes", "No"},
		ClosingDate: "2020-01-03",
	})

	if view.Status != models.PollStatusOpen {
		t.Fatalf("expected open poll, got %s", view.Status)
	}
	if !strings.HasPrefix(view.ClosingLabel, "Closes ") || !strings.HasSuffix(view.ClosingLabel, "from now") {
		t.Errorf("expected a future closing label relative to the service clock, got %q", view.ClosingLabel)
	}
}

func TestCreatePoll_CreatorFromAdminSession(t *testing.T) {
	setup := newTestSetup(t)
	token, ok := setup.handlers.Auth.Login("test-password", "Grace")
	if !ok {
		t.Fatal("login failed")
	}
	setup.authCookie = &http.Cookie{Name: auth.CookieName, Value: token}

	view := setup.createPoll(t, handlers.CreatePollRequest{Question: "Dinner?", Options: []string{"In", "Out"}})
	if view.CreatedBy != "Grace" {
		t.Errorf("expected creator Grace, got %q", view.CreatedBy)
	}

	view = setup.createPoll(t, handlers.CreatePollRequest{Question: "Lunch?", Options: []string{"In", "Out"}, CreatedBy: "Henry"})
	if view.CreatedBy != "Henry" {
		t.Errorf("expected explicit creator Henry, got %q", view.CreatedBy)
	}
}
