package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// TaskItemResponseDTO is one task inside a list
type TaskItemResponseDTO struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	Completed     bool   `json:"completed"`
	TaskListTitle string `json:"taskListTitle"`
}

// TaskListResponseDTO is a list with its owner, collaborators and tasks
type TaskListResponseDTO struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Owner         string                `json:"owner"`
	Collaborators []string              `json:"collaborators"`
	Tasks         []TaskItemResponseDTO `json:"tasks"`
}

// CreateListRequest is the body of POST /list/create
type CreateListRequest struct {
	Title string `json:"title"`
}

// AllLists returns every list the user owns or collaborates on.
func (c *Client) AllLists(ctx context.Context) ([]TaskListResponseDTO, error) {
	var out []TaskListResponseDTO
	if err := c.do(ctx, http.MethodGet, "/list/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListByID(ctx context.Context, id int64) (*TaskListResponseDTO, error) {
	var out TaskListResponseDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/list/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateList(ctx context.Context, title string) (*TaskListResponseDTO, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &FormError{Fields: []FieldError{{Field: "title", Message: "Title is required"}}}
	}
	var out TaskListResponseDTO
	if err := c.do(ctx, http.MethodPost, "/list/create", CreateListRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
