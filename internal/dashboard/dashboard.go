// Package dashboard computes the task-list overview shown after sign-in and
// persists the grid/list view preference next to the session.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/syncup/syncup-go/api"
	"github.com/syncup/syncup-go/syncauth"
)

// ListSummary is the per-list row of the overview
type ListSummary struct {
	ID        int64
	Title     string
	Owner     string
	Owned     bool
	Pending   int
	Completed int
	Shared    int // collaborator count
}

// Summary aggregates the user's lists
type Summary struct {
	DisplayName    string
	Lists          []ListSummary
	TotalPending   int
	TotalCompleted int
	Collaborations int // lists the user does not own
}

// Summarize builds the overview for username. Ownership is compared
// case-insensitively.
func Summarize(username string, lists []api.TaskListResponseDTO) Summary {
	s := Summary{
		DisplayName: Capitalize(username),
		Lists:       make([]ListSummary, 0, len(lists)),
	}
	for _, l := range lists {
		row := ListSummary{
			ID:     l.ID,
			Title:  l.Title,
			Owner:  l.Owner,
			Owned:  strings.EqualFold(l.Owner, username),
			Shared: len(l.Collaborators),
		}
		for _, t := range l.Tasks {
			if t.Completed {
				row.Completed++
			} else {
				row.Pending++
			}
		}
		s.TotalPending += row.Pending
		s.TotalCompleted += row.Completed
		if !row.Owned {
			s.Collaborations++
		}
		s.Lists = append(s.Lists, row)
	}
	return s
}

// Capitalize upper-cases the first rune only
func Capitalize(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

// ViewMode is the dashboard layout preference
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// KeyViewMode is the store key holding the preference
const KeyViewMode = "dashboardViewMode"

// ParseViewMode accepts "grid" or "list"
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewGrid, ViewList:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("dashboard: unknown view mode %q (want grid or list)", s)
}

// LoadViewMode returns the saved preference, or grid when nothing valid is saved.
func LoadViewMode(ctx context.Context, store syncauth.Store) (ViewMode, error) {
	v, ok, err := store.Get(ctx, KeyViewMode)
	if err != nil {
		return ViewGrid, err
	}
	if !ok {
		return ViewGrid, nil
	}
	mode, err := ParseViewMode(v)
	if err != nil {
		return ViewGrid, nil
	}
	return mode, nil
}

func SaveViewMode(ctx context.Context, store syncauth.Store, mode ViewMode) error {
	if _, err := ParseViewMode(string(mode)); err != nil {
		return err
	}
	return store.Set(ctx, KeyViewMode, string(mode))
}
