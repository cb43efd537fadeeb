// Package googletasks implements the service.Service interface using Google Tasks API.
//
// Lists map to task lists. A duty ID is the owning task list ID and the task ID
// joined by IDSeparator. Google Tasks has two states, so in_progress is kept as
// a needsAction task whose notes start with InProgressMarker.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"duties/internal/config"
	"duties/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of items per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// IDSeparator joins the task list ID and task ID of a duty.
	IDSeparator = "~"

	// InProgressMarker prefixes the notes of an in-progress task.
	InProgressMarker = "[in progress]"

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
}

// OAuthConfig loads the OAuth client from oauth_client.json.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	c, err := NewWithOptions(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	return NewWithOptions(ctx, option.WithHTTPClient(httpClient))
}

// NewWithOptions creates a client from raw API client options (for testing).
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, timeout: APITimeout}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.List, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.List{}
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, toList(list))
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// GetList returns a single task list.
func (c *Client) GetList(ctx context.Context, id string) (service.List, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Get(id).Context(ctx).Do()
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return toList(list), nil
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, input service.CreateListInput) (service.List, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: input.Name}).Context(ctx).Do()
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return toList(list), nil
}

// UpdateList renames a task list.
func (c *Client) UpdateList(ctx context.Context, id string, input service.UpdateListInput) (service.List, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Patch(id, &tasks.TaskList{Title: input.Name}).Context(ctx).Do()
	if err != nil {
		return service.List{}, wrapError(err)
	}
	return toList(list), nil
}

// DeleteList deletes a task list by ID. Google removes its tasks with it.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListDuties returns the tasks of one list, or of every list when the filter
// has no list ID. Completed tasks are included.
func (c *Client) ListDuties(ctx context.Context, filter service.DutyFilter) ([]service.Duty, error) {
	var listIDs []string
	if filter.ListID != nil {
		listIDs = []string{*filter.ListID}
	} else {
		lists, err := c.ListLists(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range lists {
			listIDs = append(listIDs, l.ID)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := []service.Duty{}
	for _, listID := range listIDs {
		err := c.svc.Tasks.List(listID).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, task := range resp.Items {
					result = append(result, toDuty(listID, task))
				}
				return nil
			})
		if err != nil {
			return nil, wrapError(err)
		}
	}
	return result, nil
}

// GetDuty returns a single task.
func (c *Client) GetDuty(ctx context.Context, id string) (service.Duty, error) {
	listID, taskID, err := splitID(id)
	if err != nil {
		return service.Duty{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	task, err := c.svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return service.Duty{}, wrapError(err)
	}
	return toDuty(listID, task), nil
}

// CreateDuty inserts a task. Duties without a list go to the default list.
func (c *Client) CreateDuty(ctx context.Context, input service.CreateDutyInput) (service.Duty, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var listID string
	if input.ListID != nil {
		listID = *input.ListID
	} else {
		// The duty ID must carry the real list ID
		def, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
		if err != nil {
			return service.Duty{}, wrapError(err)
		}
		listID = def.Id
	}

	task, err := c.svc.Tasks.Insert(listID, &tasks.Task{Title: input.Name}).Context(ctx).Do()
	if err != nil {
		return service.Duty{}, wrapError(err)
	}
	return toDuty(listID, task), nil
}

// UpdateDuty patches a task's title and status.
func (c *Client) UpdateDuty(ctx context.Context, id string, input service.UpdateDutyInput) (service.Duty, error) {
	listID, taskID, err := splitID(id)
	if err != nil {
		return service.Duty{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &tasks.Task{}
	if input.Name != nil {
		patch.Title = *input.Name
	}
	if input.Status != nil {
		// Notes are needed to toggle the marker
		current, err := c.svc.Tasks.Get(listID, taskID).Context(ctx).Do()
		if err != nil {
			return service.Duty{}, wrapError(err)
		}
		applyStatus(patch, current.Notes, *input.Status)
	}

	task, err := c.svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do()
	if err != nil {
		return service.Duty{}, wrapError(err)
	}
	return toDuty(listID, task), nil
}

// DeleteDuty deletes a task.
func (c *Client) DeleteDuty(ctx context.Context, id string) error {
	listID, taskID, err := splitID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

var _ service.Service = (*Client)(nil)

func toList(l *tasks.TaskList) service.List {
	updated := parseTime(l.Updated)
	return service.List{
		ID:        l.Id,
		Name:      l.Title,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func toDuty(listID string, t *tasks.Task) service.Duty {
	updated := parseTime(t.Updated)
	list := listID
	return service.Duty{
		ID:        JoinID(listID, t.Id),
		Name:      t.Title,
		Status:    statusOf(t),
		ListID:    &list,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func statusOf(t *tasks.Task) service.Status {
	switch {
	case t.Status == statusCompleted:
		return service.StatusDone
	case strings.HasPrefix(t.Notes, InProgressMarker):
		return service.StatusInProgress
	default:
		return service.StatusPending
	}
}

// applyStatus sets the Google status and notes marker for s on patch.
func applyStatus(patch *tasks.Task, notes string, s service.Status) {
	bare := strings.TrimSpace(strings.TrimPrefix(notes, InProgressMarker))

	switch s {
	case service.StatusDone:
		patch.Status = statusCompleted
		patch.Notes = bare
	case service.StatusInProgress:
		patch.Status = statusNeedsAction
		patch.Notes = strings.TrimSpace(InProgressMarker + " " + bare)
	default:
		patch.Status = statusNeedsAction
		patch.Notes = bare
	}
	patch.ForceSendFields = append(patch.ForceSendFields, "Notes")
	if patch.Status == statusNeedsAction {
		patch.NullFields = append(patch.NullFields, "Completed")
	}
}

// JoinID builds a duty ID from a task list ID and task ID.
func JoinID(listID, taskID string) string {
	return listID + IDSeparator + taskID
}

func splitID(id string) (listID, taskID string, err error) {
	listID, taskID, ok := strings.Cut(id, IDSeparator)
	if !ok || listID == "" || taskID == "" {
		return "", "", service.NewNetworkError(http.StatusNotFound, fmt.Sprintf("Duty with id %s not found", id), nil)
	}
	return listID, taskID, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewNetworkError(0, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return service.NewNetworkError(0, "request cancelled", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.NewNetworkError(gerr.Code, "token expired or revoked (run: duties login)", err)
		case http.StatusNotFound:
			return service.NewNetworkError(gerr.Code, "not found", err)
		}
		return service.NewNetworkError(gerr.Code, gerr.Message, err)
	}

	return service.NewNetworkError(0, "", err)
}
