// Package store persists computed layouts so they can be fetched by ID.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process storage for tests and single-instance servers
//   - [FileStore]: one JSON file per layout, for the CLI
//   - [MongoStore]: a MongoDB collection for multi-instance deployments
//
// Save assigns a random UUID and creation time to layouts that lack them:
//
//	st := store.NewMemoryStore()
//	if err := st.Save(ctx, &l); err != nil {
//	    return err
//	}
//	got, err := st.Get(ctx, l.ID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown or deleted
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stemma/pkg/graph"
)

// ErrNotFound is returned when a layout does not exist.
var ErrNotFound = errors.New("layout not found")

// DefaultRetention is how long layouts are kept before Cleanup removes them.
const DefaultRetention = 30 * 24 * time.Hour

// Store is the interface for layout storage backends.
type Store interface {
	// Save stores l, filling in ID and CreatedAt when empty.
	Save(ctx context.Context, l *graph.Layout) error
	// Get returns the layout with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*graph.Layout, error)
	// Delete removes a layout. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)
	// Cleanup removes layouts created before now minus retention and
	// returns how many were removed.
	Cleanup(ctx context.Context, retention time.Duration) (int, error)
	Close() error
}

// Summary describes a stored layout without its nodes.
type Summary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Individuals int       `json:"individuals"`
	Unions      int       `json:"unions"`
	Generations int       `json:"generations"`
	Cost        float64   `json:"cost"`
}

// Summarize builds the summary of l.
func Summarize(l *graph.Layout) Summary {
	return Summary{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt,
		Individuals: l.Stats.Individuals,
		Unions:      l.Stats.Unions,
		Generations: l.Generations,
		Cost:        l.Stats.Cost,
	}
}

// NewID returns a random layout ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the form produced by NewID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func stamp(l *graph.Layout) {
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
}
