// iCloud Reminders gateway implementation of [RemindersStore]
//
// The gateway owns the iCloud session. Session artifacts (cookies, trust tokens) live in a directory
// shared with the gateway, named on each request by the X-Session-Dir header.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/shared"
)

const sessionDirHeader = "X-Session-Dir"

// RemindersService implements [RemindersStore], [UncompletedLister], [Adder] and [ResourceCreator]
// against an iCloud Reminders gateway. Every list and task is returned as decoded JSON.
type RemindersService struct {
	api    *APIService
	config shared.RemindersConfig
	logger *log.Logger
}

// NewRemindersService creates a Reminders gateway client.
func NewRemindersService(cfg shared.RemindersConfig, client *http.Client, logger *log.Logger) *RemindersService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	api := NewAPIService(strings.TrimRight(cfg.GatewayURL, "/"), client)
	if cfg.SessionDir != "" {
		api.SetHeader(sessionDirHeader, cfg.SessionDir)
	}

	return &RemindersService{
		api:    api,
		config: cfg,
		logger: shared.WithLogger(logger, "store", "reminders"),
	}
}

func (r *RemindersService) Name() string {
	return "iCloud Reminders"
}

// Authenticate opens (or resumes) the iCloud session.
//
// When the account asks for two-factor authentication the configured code is validated and the session
// is trusted so later runs skip the prompt. Without a code [ErrTwoFactorRequired] is returned.
func (r *RemindersService) Authenticate(ctx context.Context) error {
	if r.config.AppleID == "" || r.config.Password == "" {
		return fmt.Errorf("%w: apple id or password", shared.ErrMissingCredentials)
	}
	if r.config.SessionDir != "" {
		if err := os.MkdirAll(r.config.SessionDir, 0700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	resp, err := r.api.PostJSON(ctx, "/session", map[string]string{
		"apple_id": r.config.AppleID,
		"password": r.config.Password,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, resp.Err())
	}
	if err := resp.Err(); err != nil {
		return err
	}

	if !boolField(resp.JSONData, "requires_2fa") && !boolField(resp.JSONData, "requires_2sa") {
		return nil
	}

	if r.config.TwoFactorCode == "" {
		return fmt.Errorf("%w: set APPLE_2FA_CODE with the code sent to your device and restart", ErrTwoFactorRequired)
	}

	resp, err = r.api.PostJSON(ctx, "/session/2fa", map[string]string{"code": r.config.TwoFactorCode})
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !boolField(resp.JSONData, "valid") {
		return fmt.Errorf("%w: invalid two-factor code", shared.ErrAuthFailed)
	}

	if resp, err := r.api.Post(ctx, "/session/trust", nil); err != nil || !resp.OK() {
		r.logger.Warn("could not trust session; the code will be asked for again", "error", err)
	} else {
		r.logger.Info("Two-factor authentication validated and session trusted.")
	}

	return nil
}

// Lists returns the reminders lists exactly as the gateway encodes them.
//
// Calls GET /reminders/lists on the gateway.
func (r *RemindersService) Lists(ctx context.Context) (any, error) {
	return r.getJSON(ctx, "/reminders/lists")
}

// Uncompleted returns every uncompleted reminder across all lists.
//
// Calls GET /reminders/uncompleted on the gateway.
func (r *RemindersService) Uncompleted(ctx context.Context) (any, error) {
	return r.getJSON(ctx, "/reminders/uncompleted")
}

// Add creates a reminder addressed by list id, or by list name when no id is given.
//
// The gateway answers 400 or 422 when it does not accept the argument form; that is reported as
// [ErrArgumentShape].
func (r *RemindersService) Add(ctx context.Context, req AddRequest) error {
	payload := map[string]string{"title": req.Title}
	if req.ListID != "" {
		payload["list_id"] = req.ListID
	} else {
		payload["list"] = req.ListName
	}

	resp, err := r.api.PostJSON(ctx, "/reminders", payload)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %v", ErrArgumentShape, resp.Err())
	}
	return resp.Err()
}

// Create posts payload to a named gateway resource.
//
// Calls POST /reminders/{resource} on the gateway.
func (r *RemindersService) Create(ctx context.Context, resource string, payload map[string]any) error {
	resp, err := r.api.PostJSON(ctx, "/reminders/"+url.PathEscape(resource), payload)
	if err != nil {
		return err
	}
	return resp.Err()
}

func (r *RemindersService) getJSON(ctx context.Context, path string) (any, error) {
	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if !resp.IsJSON {
		return nil, fmt.Errorf("%w: %s returned a non-JSON body", shared.ErrAPIRequest, path)
	}
	return resp.JSONData, nil
}

func boolField(data any, key string) bool {
	m, ok := data.(map[string]any)
	if !ok {
		return false
	}
	v, _ := m[key].(bool)
	return v
}
