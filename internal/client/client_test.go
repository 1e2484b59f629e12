package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_LoginSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		if in["username"] != "alice" || in["password"] != "secret1" {
			t.Errorf("unexpected body: %v", in)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token":      "tok",
			"expires_at": time.Now().Add(time.Hour),
			"user":       map[string]any{"id": 1, "username": "alice"},
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL, "").Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok" || res.User.ID != 1 || res.User.Username != "alice" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestClient_SendsBearerAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization: %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "work & play" {
			t.Errorf("q: %q", got)
		}
		w.Write([]byte(`{"notes":[{"id":3,"title":"A","content":"B","tags":"work"}],"count":1}`))
	}))
	defer srv.Close()

	notes, err := New(srv.URL+"/", "tok").ListNotes(context.Background(), "work & play")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != 3 || notes[0].Tags != "work" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing or invalid fields: title","fields":{"title":"required"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").CreateNote(context.Background(), NoteInput{Content: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Fields["title"] != "required" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Error() != "status 400: missing or invalid fields: title" {
		t.Errorf("Error(): %q", apiErr.Error())
	}
}

func TestClient_APIError_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").DeleteNote(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_Activity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/activity" || r.URL.Query().Get("limit") != "5" || r.URL.Query().Has("offset") {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		w.Write([]byte(`{"items":[{"id":1,"action":"create","resource_type":"note","resource_id":9}],"limit":5,"offset":0}`))
	}))
	defer srv.Close()

	items, err := New(srv.URL, "tok").Activity(context.Background(), 5, 0)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(items) != 1 || items[0].ResourceID != 9 {
		t.Errorf("unexpected items: %+v", items)
	}
}
