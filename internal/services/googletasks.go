// Google Tasks API implementation of [RemindersStore]
//
// Lists and tasks are handed back as typed handles instead of JSON.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

const (
	tasksScope      = "https://www.googleapis.com/auth/tasks"
	tasksPageSize   = 100
	oauthClientFile = "oauth_client.json"
	tokenFile       = "token.json"

	defaultTasksTimeout = 5 * time.Second
)

// GoogleTasksService implements [RemindersStore] and [Adder] with the Google Tasks API.
type GoogleTasksService struct {
	svc     *tasks.Service
	timeout time.Duration
}

// NewGoogleTasksService builds a client from oauth_client.json and token.json inside sessionDir.
//
// The token is refreshed automatically.
func NewGoogleTasksService(ctx context.Context, sessionDir string, timeout time.Duration) (*GoogleTasksService, error) {
	clientJSON, err := os.ReadFile(filepath.Join(sessionDir, oauthClientFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", oauthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", oauthClientFile, err)
	}

	tokenData, err := os.ReadFile(filepath.Join(sessionDir, tokenFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", tokenFile, err)
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewGoogleTasksServiceWithClient(ctx, httpClient, timeout)
}

// NewGoogleTasksServiceWithClient creates a client over an already authorized HTTP client.
func NewGoogleTasksServiceWithClient(ctx context.Context, httpClient *http.Client, timeout time.Duration, opts ...option.ClientOption) (*GoogleTasksService, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTasksTimeout
	}
	return &GoogleTasksService{svc: svc, timeout: timeout}, nil
}

func (g *GoogleTasksService) Name() string {
	return "Google Tasks"
}

// Lists returns every task list as a []*GoogleTaskList.
func (g *GoogleTasksService) Lists(ctx context.Context) (any, error) {
	return g.taskLists(ctx)
}

func (g *GoogleTasksService) taskLists(ctx context.Context) ([]*GoogleTaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var result []*GoogleTaskList
	err := g.svc.Tasklists.List().MaxResults(tasksPageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, &GoogleTaskList{svc: g, list: list})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	return result, nil
}

func (g *GoogleTasksService) openTasks(ctx context.Context, listID string) ([]*GoogleTask, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var result []*GoogleTask
	err := g.svc.Tasks.List(listID).
		MaxResults(tasksPageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				result = append(result, &GoogleTask{listID: listID, task: task})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

// Add inserts a task. The Tasks API only addresses lists by id, so a name is resolved first.
func (g *GoogleTasksService) Add(ctx context.Context, req AddRequest) error {
	listID := req.ListID
	if listID == "" {
		lists, err := g.taskLists(ctx)
		if err != nil {
			return err
		}
		for _, l := range lists {
			if strings.EqualFold(strings.TrimSpace(l.Title()), strings.TrimSpace(req.ListName)) {
				listID = l.ID()
				break
			}
		}
		if listID == "" {
			return fmt.Errorf("task list %q not found", req.ListName)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if _, err := g.svc.Tasks.Insert(listID, &tasks.Task{Title: req.Title}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GoogleTaskList is a typed list handle. It implements [Titled], [Identified] and [OpenLister].
type GoogleTaskList struct {
	svc  *GoogleTasksService
	list *tasks.TaskList
}

func (l *GoogleTaskList) Title() string { return l.list.Title }
func (l *GoogleTaskList) ID() string    { return l.list.Id }

// Open returns the open tasks of the list as a []*GoogleTask.
func (l *GoogleTaskList) Open(ctx context.Context) (any, error) {
	return l.svc.openTasks(ctx, l.list.Id)
}

// GoogleTask is a typed task. It implements [Titled], [Completable] and [ListScoped].
type GoogleTask struct {
	listID string
	task   *tasks.Task
}

func (t *GoogleTask) Title() string     { return t.task.Title }
func (t *GoogleTask) IsCompleted() bool { return t.task.Status == "completed" }
func (t *GoogleTask) ListID() string    { return t.listID }
