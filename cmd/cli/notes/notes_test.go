package notes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/notes-api/cmd/cli/config"
	"github.com/crucial707/notes-api/internal/client"
	"github.com/spf13/cobra"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "notes", SilenceUsage: true, SilenceErrors: true}
	InitNotes(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// loggedIn points the CLI at handler with a saved token.
func loggedIn(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token on %s %s", r.Method, r.URL.Path)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("NOTES_API_URL", srv.URL)

	tokenFile := filepath.Join(t.TempDir(), "token")
	t.Setenv("NOTES_TOKEN_FILE", tokenFile)
	if err := os.WriteFile(tokenFile, []byte("tok\n"), 0600); err != nil {
		t.Fatal(err)
	}
}

const twoNotes = `{"notes":[
	{"id":2,"owner_id":1,"title":"groceries","content":"milk","tags":"home","created_at":"2026-03-01T10:00:00Z","updated_at":"2026-03-02T10:00:00Z"},
	{"id":1,"owner_id":1,"title":"standup","content":"notes","tags":"work","created_at":"2026-03-01T09:00:00Z","updated_at":"2026-03-01T09:00:00Z"}
],"count":2}`

func TestList_TableOutput(t *testing.T) {
	loggedIn(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/notes" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(twoNotes))
	})

	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "groceries") || !strings.Contains(out, "standup") || !strings.Contains(out, "TITLE") {
		t.Fatalf("expected note titles in table, got: %s", out)
	}
}

func TestList_JSONAndQuery(t *testing.T) {
	loggedIn(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "work" {
			t.Errorf("q: %q", r.URL.Query().Get("q"))
		}
		w.Write([]byte(twoNotes))
	})

	out, err := execute(t, "list", "--query", "work", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"title": "standup"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestList_NotLoggedIn(t *testing.T) {
	t.Setenv("NOTES_TOKEN_FILE", filepath.Join(t.TempDir(), "missing"))

	_, err := execute(t, "list")
	if !errors.Is(err, config.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestCreate_SendsFields(t *testing.T) {
	loggedIn(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/notes" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var in client.NoteInput
		json.NewDecoder(r.Body).Decode(&in)
		if in.Title != "A" || in.Content != "B" || in.Tags != "x,y" {
			t.Errorf("unexpected body: %+v", in)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"note":{"id":7,"title":"A","content":"B","tags":"x,y"}}`))
	})

	out, err := execute(t, "create", "--title", "A", "--content", "B", "--tags", "x,y")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Created note 7.") {
		t.Errorf("output: %s", out)
	}
}

func TestCreate_RequiresFlags(t *testing.T) {
	_, err := execute(t, "create", "--title", "A")
	if err == nil || !strings.Contains(err.Error(), "content") {
		t.Fatalf("expected missing content flag error, got %v", err)
	}
}

func TestEdit_NotFound(t *testing.T) {
	loggedIn(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/api/notes/9" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"note not found or unauthorized"}`))
	})

	_, err := execute(t, "edit", "9", "--title", "A", "--content", "B")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestShowAndDelete(t *testing.T) {
	loggedIn(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			w.Write([]byte(`{"note":{"id":3,"title":"plan","content":"ship it","tags":"work","created_at":"2026-03-01T09:00:00Z","updated_at":"2026-03-01T09:00:00Z"}}`))
		case "DELETE":
			w.Write([]byte(`{"message":"note deleted"}`))
		}
	})

	out, err := execute(t, "show", "3")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "#3 plan") || !strings.Contains(out, "ship it") {
		t.Errorf("show output: %s", out)
	}

	out, err = execute(t, "delete", "3")
	if err != nil || !strings.Contains(out, "Deleted note 3.") {
		t.Errorf("delete: %q %v", out, err)
	}
}

func TestInvalidID(t *testing.T) {
	if _, err := execute(t, "delete", "abc"); err == nil || !strings.Contains(err.Error(), "invalid note id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}
