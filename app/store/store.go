// Package store contains the archive of rendered digests.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

//go:generate moq -out mock_interface.go . Interface

// Interface defines methods for store
type Interface interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, req ListRequest) ([]Entry, error)
	Delete(ctx context.Context, id string) error
}

// ListRequest defines parameters for listing archived digests.
type ListRequest struct {
	Limit int // zero means no limit
}

// Entry describes a rendered digest.
type Entry struct {
	ID         string    `json:"id"` // absolute path of the rendered page
	RenderID   string    `json:"render_id"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Input      string    `json:"input"`
	RenderedAt time.Time `json:"rendered_at"`
	Sections   int       `json:"sections"`
	Items      int       `json:"items"`
}
