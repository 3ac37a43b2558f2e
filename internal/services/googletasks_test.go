package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

func newTasksAPI(t *testing.T, inserted *[]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/users/@me/lists"):
			w.Write([]byte(`{"items": [{"id": "L1", "title": "Groceries"}, {"id": "L2", "title": "Hardware"}]}`))
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/lists/L1/tasks"):
			if r.URL.Query().Get("showCompleted") != "false" {
				t.Errorf("expected showCompleted=false, got %q", r.URL.RawQuery)
			}
			w.Write([]byte(`{"items": [{"id": "t1", "title": "Milk", "status": "needsAction"}]}`))
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/lists/"):
			var task struct {
				Title string `json:"title"`
			}
			json.NewDecoder(r.Body).Decode(&task)
			parts := strings.Split(r.URL.Path, "/")
			*inserted = append(*inserted, parts[len(parts)-2]+":"+task.Title)
			w.Write([]byte(`{"id": "t9"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": 404, "message": "not found"}}`))
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestGoogleTasksService(t *testing.T) {
	ctx := context.Background()

	t.Run("Lists And Open Tasks", func(t *testing.T) {
		var inserted []string
		server := newTasksAPI(t, &inserted)

		svc, err := NewGoogleTasksServiceWithClient(ctx, server.Client(), 0, option.WithEndpoint(server.URL+"/"))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		raw, err := svc.Lists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		lists, ok := raw.([]*GoogleTaskList)
		if !ok || len(lists) != 2 {
			t.Fatalf("expected two typed lists, got %T %v", raw, raw)
		}

		var handle any = lists[0]
		if titled, ok := handle.(Titled); !ok || titled.Title() != "Groceries" {
			t.Errorf("expected Titled handle for Groceries")
		}
		if _, ok := handle.(OpenLister); !ok {
			t.Fatal("expected list handle to implement OpenLister")
		}

		openRaw, err := lists[0].Open(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		open := openRaw.([]*GoogleTask)
		if len(open) != 1 || open[0].Title() != "Milk" || open[0].IsCompleted() || open[0].ListID() != "L1" {
			t.Errorf("unexpected open tasks %+v", open)
		}
	})

	t.Run("Add", func(t *testing.T) {
		var inserted []string
		server := newTasksAPI(t, &inserted)

		svc, err := NewGoogleTasksServiceWithClient(ctx, server.Client(), 0, option.WithEndpoint(server.URL+"/"))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if err := svc.Add(ctx, AddRequest{Title: "Eggs", ListID: "L1"}); err != nil {
			t.Fatalf("add by id: %v", err)
		}
		if err := svc.Add(ctx, AddRequest{Title: "Nails", ListName: " hardware "}); err != nil {
			t.Fatalf("add by name: %v", err)
		}
		if err := svc.Add(ctx, AddRequest{Title: "Nope", ListName: "Missing"}); err == nil {
			t.Error("expected error for unknown list name")
		}

		want := []string{"L1:Eggs", "L2:Nails"}
		if strings.Join(inserted, ",") != strings.Join(want, ",") {
			t.Errorf("inserted = %v, want %v", inserted, want)
		}
	})

	t.Run("Missing Session Files", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := NewGoogleTasksService(ctx, dir, 0); err == nil {
			t.Error("expected error without oauth_client.json")
		}

		os.WriteFile(filepath.Join(dir, oauthClientFile), []byte(`{"installed": {"client_id": "id", "client_secret": "secret", "auth_uri": "https://accounts.google.com/o/oauth2/auth", "token_uri": "https://oauth2.googleapis.com/token", "redirect_uris": ["http://localhost"]}}`), 0600)
		if _, err := NewGoogleTasksService(ctx, dir, 0); err == nil {
			t.Error("expected error without token.json")
		}

		os.WriteFile(filepath.Join(dir, tokenFile), []byte(`{"access_token": "a", "refresh_token": "r"}`), 0600)
		if _, err := NewGoogleTasksService(ctx, dir, 0); err != nil {
			t.Errorf("expected service with both files, got %v", err)
		}
	})
}
