package rest

import (
	"context"
	"net/url"

	"duties/internal/service"
)

// ListLists returns all lists.
func (c *Client) ListLists(ctx context.Context) ([]service.List, error) {
	lists, err := get[[]service.List](ctx, c, "/lists")
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []service.List{}
	}
	return lists, nil
}

// GetList returns one list.
func (c *Client) GetList(ctx context.Context, id string) (service.List, error) {
	return get[service.List](ctx, c, listPath(id))
}

// CreateList creates a list.
func (c *Client) CreateList(ctx context.Context, input service.CreateListInput) (service.List, error) {
	return post[service.List](ctx, c, "/lists", input)
}

// UpdateList renames a list.
func (c *Client) UpdateList(ctx context.Context, id string, input service.UpdateListInput) (service.List, error) {
	return put[service.List](ctx, c, listPath(id), input)
}

// DeleteList deletes a list.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.delete(ctx, listPath(id))
}

// ListDuties returns duties, optionally restricted to one list.
func (c *Client) ListDuties(ctx context.Context, filter service.DutyFilter) ([]service.Duty, error) {
	path := "/duties"
	if filter.ListID != nil {
		q := url.Values{}
		q.Set("list_id", *filter.ListID)
		path += "?" + q.Encode()
	}
	duties, err := get[[]service.Duty](ctx, c, path)
	if err != nil {
		return nil, err
	}
	if duties == nil {
		duties = []service.Duty{}
	}
	return duties, nil
}

// GetDuty returns one duty.
func (c *Client) GetDuty(ctx context.Context, id string) (service.Duty, error) {
	return get[service.Duty](ctx, c, dutyPath(id))
}

// CreateDuty creates a duty.
func (c *Client) CreateDuty(ctx context.Context, input service.CreateDutyInput) (service.Duty, error) {
	return post[service.Duty](ctx, c, "/duties", input)
}

// UpdateDuty applies a partial update to a duty.
func (c *Client) UpdateDuty(ctx context.Context, id string, input service.UpdateDutyInput) (service.Duty, error) {
	return put[service.Duty](ctx, c, dutyPath(id), input)
}

// DeleteDuty deletes a duty.
func (c *Client) DeleteDuty(ctx context.Context, id string) error {
	return c.delete(ctx, dutyPath(id))
}

func listPath(id string) string {
	return "/lists/" + url.PathEscape(id)
}

func dutyPath(id string) string {
	return "/duties/" + url.PathEscape(id)
}

var _ service.Service = (*Client)(nil)
