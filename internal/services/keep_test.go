package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/shared"
)

type keepGateway struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	syncs    int
}

func newKeepGateway(t *testing.T) (*keepGateway, *httptest.Server) {
	t.Helper()
	gw := &keepGateway{bodies: map[string]string{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gw.mu.Lock()
		defer gw.mu.Unlock()

		if r.URL.Path == "/oauth/token" {
			r.ParseForm()
			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Form.Get("grant_type") == "refresh_token" && r.Form.Get("refresh_token") == "master":
				json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-master", "token_type": "Bearer", "expires_in": 3600})
			case r.Form.Get("grant_type") == "password" && r.Form.Get("username") == "me@example.com" && r.Form.Get("password") == "secret":
				json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-password", "token_type": "Bearer", "expires_in": 3600})
			default:
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			}
			return
		}

		auth := r.Header.Get("Authorization")
		if auth != "Bearer tok-master" && auth != "Bearer tok-password" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		key := r.Method + " " + r.URL.Path
		gw.requests = append(gw.requests, key)
		body, _ := io.ReadAll(r.Body)
		gw.bodies[key] = string(body)

		switch key {
		case "POST /sync":
			gw.syncs++
			w.WriteHeader(http.StatusNoContent)
		case "GET /notes":
			if r.URL.Query().Get("type") != "list" {
				t.Errorf("expected type=list query, got %q", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id": "n1", "type": "list", "title": "Groceries", "items": [
					{"id": "i1", "text": "Milk", "checked": false},
					{"id": "i2", "text": "Bread", "checked": true}
				]},
				{"id": "n2", "type": "text", "title": "Memo"}
			]`))
		case "POST /lists/n1/items", "PATCH /lists/n1/items/i1", "DELETE /lists/n1/items/i1":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "no route"})
		}
	}))
	t.Cleanup(server.Close)

	return gw, server
}

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func TestKeepService(t *testing.T) {
	ctx := context.Background()

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Master Token Wins", func(t *testing.T) {
			gw, server := newKeepGateway(t)
			svc := NewKeepService(shared.KeepConfig{
				GatewayURL:  server.URL,
				Email:       "me@example.com",
				Password:    "wrong",
				MasterToken: "master",
			}, server.Client(), quietLogger())

			if err := svc.Authenticate(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gw.syncs != 1 {
				t.Errorf("expected authenticate to sync once, got %d", gw.syncs)
			}
		})

		t.Run("Password Grant", func(t *testing.T) {
			_, server := newKeepGateway(t)
			svc := NewKeepService(shared.KeepConfig{
				GatewayURL: server.URL,
				Email:      "me@example.com",
				Password:   "secret",
			}, server.Client(), quietLogger())

			if err := svc.Authenticate(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejected Credentials", func(t *testing.T) {
			_, server := newKeepGateway(t)
			svc := NewKeepService(shared.KeepConfig{
				GatewayURL: server.URL,
				Email:      "me@example.com",
				Password:   "nope",
			}, server.Client(), quietLogger())

			if err := svc.Authenticate(ctx); !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			tests := []struct {
				name string
				cfg  shared.KeepConfig
			}{
				{name: "no email", cfg: shared.KeepConfig{Password: "secret"}},
				{name: "no password or token", cfg: shared.KeepConfig{Email: "me@example.com"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					svc := NewKeepService(tt.cfg, nil, quietLogger())
					if err := svc.Authenticate(ctx); !errors.Is(err, shared.ErrMissingCredentials) {
						t.Errorf("expected ErrMissingCredentials, got %v", err)
					}
				})
			}
		})
	})

	t.Run("Authenticate While Reading", func(t *testing.T) {
		_, server := newKeepGateway(t)
		svc := NewKeepService(shared.KeepConfig{GatewayURL: server.URL, Email: "me@example.com", MasterToken: "master"}, server.Client(), quietLogger())
		if err := svc.Authenticate(ctx); err != nil {
			t.Fatalf("authenticate: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 10 {
				if err := svc.Authenticate(ctx); err != nil {
					t.Errorf("authenticate: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range 10 {
				if _, err := svc.Lists(ctx); err != nil {
					t.Errorf("lists: %v", err)
				}
			}
		}()
		wg.Wait()
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		svc := NewKeepService(shared.KeepConfig{GatewayURL: "http://127.0.0.1:1"}, nil, quietLogger())
		if _, err := svc.Lists(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := svc.Sync(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Lists", func(t *testing.T) {
		_, server := newKeepGateway(t)
		svc := NewKeepService(shared.KeepConfig{GatewayURL: server.URL, Email: "me@example.com", MasterToken: "master"}, server.Client(), quietLogger())
		if err := svc.Authenticate(ctx); err != nil {
			t.Fatalf("authenticate: %v", err)
		}

		lists, err := svc.Lists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(lists) != 1 {
			t.Fatalf("expected only checklist notes, got %d", len(lists))
		}
		if lists[0].Title != "Groceries" || len(lists[0].Items) != 2 {
			t.Errorf("unexpected list %+v", lists[0])
		}
		if !lists[0].Items[1].Checked {
			t.Error("expected Bread to be checked")
		}
	})

	t.Run("Mutations", func(t *testing.T) {
		gw, server := newKeepGateway(t)
		svc := NewKeepService(shared.KeepConfig{GatewayURL: server.URL, Email: "me@example.com", MasterToken: "master"}, server.Client(), quietLogger())
		if err := svc.Authenticate(ctx); err != nil {
			t.Fatalf("authenticate: %v", err)
		}

		if err := svc.AddItem(ctx, "n1", "Eggs"); err != nil {
			t.Errorf("AddItem: %v", err)
		}
		if err := svc.CheckItem(ctx, "n1", "i1"); err != nil {
			t.Errorf("CheckItem: %v", err)
		}
		if err := svc.DeleteItem(ctx, "n1", "i1"); err != nil {
			t.Errorf("DeleteItem: %v", err)
		}
		if err := svc.DeleteItem(ctx, "missing", "i1"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for unknown route, got %v", err)
		}

		var added map[string]any
		if err := json.Unmarshal([]byte(gw.bodies["POST /lists/n1/items"]), &added); err != nil {
			t.Fatalf("invalid add body: %v", err)
		}
		if added["text"] != "Eggs" || added["checked"] != false {
			t.Errorf("unexpected add body %v", added)
		}
		if gw.bodies["PATCH /lists/n1/items/i1"] != `{"checked":true}` {
			t.Errorf("unexpected check body %s", gw.bodies["PATCH /lists/n1/items/i1"])
		}
	})
}
