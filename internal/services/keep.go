// Google Keep gateway implementation of [NotesStore]
//
// The gateway exposes checklist notes over JSON and issues OAuth2 bearer tokens at /oauth/token.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"golang.org/x/oauth2"
)

const keepClientID = "listsync"

type keepItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type keepNote struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Title string     `json:"title"`
	Items []keepItem `json:"items"`
}

// KeepService implements [NotesStore] against a Google Keep gateway.
type KeepService struct {
	baseURL    string
	config     shared.KeepConfig
	httpClient *http.Client

	mu  sync.RWMutex
	api *APIService

	logger     *log.Logger
}

// NewKeepService creates a Keep gateway client. Authenticate must be called before any other method.
func NewKeepService(cfg shared.KeepConfig, client *http.Client, logger *log.Logger) *KeepService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &KeepService{
		baseURL:    strings.TrimRight(cfg.GatewayURL, "/"),
		config:     cfg,
		httpClient: client,
		logger:     shared.WithLogger(logger, "store", "keep"),
	}
}

func (k *KeepService) Name() string {
	return "Google Keep"
}

func (k *KeepService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: keepClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  k.baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Authenticate obtains a bearer token and syncs the note state.
//
// A master token is used as a refresh token and wins over the password.
func (k *KeepService) Authenticate(ctx context.Context) error {
	if k.config.Email == "" {
		return fmt.Errorf("%w: keep email", shared.ErrMissingCredentials)
	}

	// Token refreshes happen after this call returns, so they must not inherit its cancellation.
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, k.httpClient)
	cfg := k.oauthConfig()

	var ts oauth2.TokenSource
	switch {
	case k.config.MasterToken != "":
		ts = cfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: k.config.MasterToken})
	case k.config.Password != "":
		token, err := cfg.PasswordCredentialsToken(tokenCtx, k.config.Email, k.config.Password)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		ts = cfg.TokenSource(tokenCtx, token)
	default:
		return fmt.Errorf("%w: keep password or master token", shared.ErrMissingCredentials)
	}

	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	api := NewAPIService(k.baseURL, oauth2.NewClient(tokenCtx, ts))
	k.mu.Lock()
	k.api = api
	k.mu.Unlock()
	k.logger.Debug("authenticated", "email", k.config.Email)

	return k.Sync(ctx)
}

func (k *KeepService) client() (*APIService, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.api == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return k.api, nil
}

// Lists returns every checklist note in gateway order.
//
// Calls GET /notes?type=list on the gateway.
func (k *KeepService) Lists(ctx context.Context) ([]models.SourceList, error) {
	api, err := k.client()
	if err != nil {
		return nil, err
	}

	resp, err := api.Get(ctx, "/notes?type=list")
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var notes []keepNote
	if err := json.Unmarshal(resp.Body, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}

	lists := make([]models.SourceList, 0, len(notes))
	for _, n := range notes {
		if n.Type != "" && n.Type != "list" {
			continue
		}
		list := models.SourceList{ID: n.ID, Title: n.Title, Items: make([]models.SourceItem, len(n.Items))}
		for i, item := range n.Items {
			list.Items[i] = models.SourceItem{ID: item.ID, Text: item.Text, Checked: item.Checked}
		}
		lists = append(lists, list)
	}

	return lists, nil
}

// AddItem appends an unchecked entry.
//
// Calls POST /lists/{id}/items on the gateway.
func (k *KeepService) AddItem(ctx context.Context, listID, text string) error {
	api, err := k.client()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/lists/%s/items", url.PathEscape(listID))
	resp, err := api.PostJSON(ctx, endpoint, keepItem{Text: text})
	if err != nil {
		return err
	}
	return resp.Err()
}

// CheckItem marks an entry as checked.
//
// Calls PATCH /lists/{id}/items/{itemID} on the gateway.
func (k *KeepService) CheckItem(ctx context.Context, listID, itemID string) error {
	api, err := k.client()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/lists/%s/items/%s", url.PathEscape(listID), url.PathEscape(itemID))
	resp, err := api.PatchJSON(ctx, endpoint, map[string]bool{"checked": true})
	if err != nil {
		return err
	}
	return resp.Err()
}

// DeleteItem removes an entry.
//
// Calls DELETE /lists/{id}/items/{itemID} on the gateway.
func (k *KeepService) DeleteItem(ctx context.Context, listID, itemID string) error {
	api, err := k.client()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/lists/%s/items/%s", url.PathEscape(listID), url.PathEscape(itemID))
	resp, err := api.Delete(ctx, endpoint)
	if err != nil {
		return err
	}
	return resp.Err()
}

// Sync asks the gateway to push pending changes and reload notes from Keep.
//
// Calls POST /sync on the gateway.
func (k *KeepService) Sync(ctx context.Context) error {
	api, err := k.client()
	if err != nil {
		return err
	}

	resp, err := api.Post(ctx, "/sync", nil)
	if err != nil {
		return err
	}
	return resp.Err()
}
