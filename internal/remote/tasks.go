package remote

import (
	"context"
	"net/http"

	"github.com/cuida-app/cuida/internal/item"
)

// TaskRequest is the body of POST /responsibles/tasks.
type TaskRequest struct {
	Description   string             `json:"description"`
	Repeated      bool               `json:"repeated"`
	StartDate     int64              `json:"startDate"` // epoch milliseconds of the local start
	Frequency     int                `json:"frequency"`
	FrequencyUnit item.FrequencyUnit `json:"frequencyUnit"`
}

// NewTaskRequest builds the wire form of it. The title travels inside the
// description as "<title>: <description>"; a one-off item has frequency 0.
func NewTaskRequest(it *item.Item) TaskRequest {
	req := TaskRequest{
		Description:   it.Title + titleSeparator + it.Description,
		StartDate:     it.StartsAt().UnixMilli(),
		FrequencyUnit: item.FrequencyUnique,
	}
	if it.Recurrence != nil && it.Recurrence.Unit != "" && it.Recurrence.Unit != item.FrequencyUnique {
		req.FrequencyUnit = it.Recurrence.Unit
		req.Frequency = it.Recurrence.Frequency
		req.Repeated = it.Recurrence.Frequency > 0
	}
	return req
}

// CreateTask sends it to the service.
func (c *Client) CreateTask(ctx context.Context, it *item.Item) error {
	basic, err := c.authorized()
	if err != nil {
		return err
	}
	_, _, err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/responsibles/tasks",
		body:   NewTaskRequest(it),
		auth:   basic,
	})
	return err
}

// ListTasks fetches the caregiver's tasks and normalizes them. Dates carry no
// year in the payload; fallbackYear is applied to every record.
func (c *Client) ListTasks(ctx context.Context, fallbackYear int) ([]item.Item, error) {
	basic, err := c.authorized()
	if err != nil {
		return nil, err
	}
	data, _, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/responsibles/tasks",
		auth:   basic,
	})
	if err != nil {
		return nil, err
	}
	return Normalize(data, fallbackYear), nil
}
