package catalog

import "context"

// Store is the catalog persistence contract. Two interchangeable variants
// implement it: sqlitestore (embedded table) and remotestore (backend API),
// plus memstore for tests and ephemeral runs. Variants are selected at
// construction time and injected; they are never merged.
type Store interface {
	// Observe emits the full current catalog on every change until ctx is
	// cancelled. The sqlite variant orders alphabetically by title
	// (case-insensitive); the remote variant re-fetches per subscription
	// and emits whatever order the backend returns.
	Observe(ctx context.Context) <-chan []Item

	// GetByID returns (nil, nil) when the id is malformed or not found.
	// A miss is absence, never an error.
	GetByID(ctx context.Context, id string) (*Item, error)

	// Insert stores the item and returns the generated identifier.
	Insert(ctx context.Context, item Item) (string, error)

	// Update reports false when no row matched or, for the remote
	// variant, on any transport failure.
	Update(ctx context.Context, item Item) (bool, error)

	// Delete follows the same convention as Update.
	Delete(ctx context.Context, id string) (bool, error)
}

// Events is the optional sink for catalog lifecycle notifications.
// A nil sink is valid and publishes nothing.
type Events interface {
	PublishJSON(routingKey string, v any) error
}
