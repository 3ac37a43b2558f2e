package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/go-chi/chi/v5"
)

// ListStore is the source store as seen by the control surface. Lists are addressed by title.
type ListStore interface {
	AddItem(ctx context.Context, name, text string) error
	CheckItem(ctx context.Context, name, text string) error
	DeleteAllItems(ctx context.Context, name string) (int, error)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of a successful mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports the state of the list cache.
type HealthResponse struct {
	Status      string `json:"status"`
	Lists       int    `json:"lists"`
	RefreshedAt string `json:"refreshed_at,omitempty"`
}

type addItemRequest struct {
	Text *string `json:"text"`
}

// ControlHandler serves the list control endpoints.
type ControlHandler struct {
	store     ListStore
	cache     *ListCache
	clearable []string
	logger    *log.Logger
}

// NewControlHandler creates a handler. clearable names the lists a POST /clear empties.
func NewControlHandler(store ListStore, cache *ListCache, clearable []string, logger *log.Logger) *ControlHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ControlHandler{store: store, cache: cache, clearable: clearable, logger: logger}
}

func (h *ControlHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/lists", Handler: h.getLists},
		{Method: http.MethodGet, Pattern: "/list/{name}", Handler: h.getList},
		{Method: http.MethodPost, Pattern: "/clear", Handler: h.clearLists},
		{Method: http.MethodPost, Pattern: "/list/{name}/item", Handler: h.addItem},
		{Method: http.MethodPut, Pattern: "/list/{name}/item/{text}/check", Handler: h.checkItem},
		{Method: http.MethodGet, Pattern: "/health", Handler: h.health},
	}
}

func (h *ControlHandler) getLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.All())
}

func (h *ControlHandler) getList(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	items, ok := h.cache.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "List not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{name: items})
}

func (h *ControlHandler) clearLists(w http.ResponseWriter, r *http.Request) {
	if len(h.clearable) == 0 {
		writeError(w, http.StatusBadRequest, "No lists defined in SYNC_LIST_NAMES environment variable")
		return
	}

	for _, name := range h.clearable {
		if _, err := h.store.DeleteAllItems(r.Context(), name); err != nil {
			h.logger.Error("Error clearing list", "list", name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to clear lists")
			return
		}
	}

	h.rebuild(r.Context())
	h.logger.Info("Cleared all items in configured lists", "lists", h.clearable)
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Cleared all items in lists: " + strings.Join(h.clearable, ", "),
	})
}

func (h *ControlHandler) addItem(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeError(w, http.StatusBadRequest, "Missing 'text' field in request body")
		return
	}
	text := strings.TrimSpace(*req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Item text cannot be empty")
		return
	}

	if err := h.store.AddItem(r.Context(), name, text); err != nil {
		if errors.Is(err, shared.ErrListNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("List '%s' not found", name))
			return
		}
		h.logger.Error("Error adding item", "list", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add item")
		return
	}

	h.rebuild(r.Context())
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Added item '%s' to list '%s'", text, name)})
}

func (h *ControlHandler) checkItem(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	text := urlParam(r, "text")

	if err := h.store.CheckItem(r.Context(), name, text); err != nil {
		switch {
		case errors.Is(err, shared.ErrListNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("List '%s' not found", name))
		case errors.Is(err, shared.ErrItemNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("Item '%s' not found in list '%s'", text, name))
		default:
			h.logger.Error("Error checking item", "list", name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to check item")
		}
		return
	}

	h.rebuild(r.Context())
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Marked item '%s' as checked in list '%s'", text, name),
	})
}

func (h *ControlHandler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Lists: len(h.cache.All())}
	if at := h.cache.RefreshedAt(); !at.IsZero() {
		resp.RefreshedAt = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// rebuild refreshes the cache after a mutation. The mutation already happened, so a failed refresh only logs.
func (h *ControlHandler) rebuild(ctx context.Context) {
	if err := h.cache.Refresh(ctx); err != nil {
		h.logger.Warn("cache rebuild after mutation failed", "error", err)
	}
}

// urlParam returns a decoded path parameter. chi matches on RawPath only when it is set, and only then
// are the parameters still escaped.
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
