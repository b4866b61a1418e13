package api

import (
	"context"
	"net/http"
)

// UserResponseDTO is the account as the backend reports it
type UserResponseDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AccountDetails fetches the signed-in user's account.
func (c *Client) AccountDetails(ctx context.Context) (*UserResponseDTO, error) {
	var out UserResponseDTO
	if err := c.do(ctx, http.MethodGet, "/account/details", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the account permanently. The caller ends the local
// session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/account/delete", nil, nil)
}
