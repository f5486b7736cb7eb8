package domain

import "context"

// Database is the lifecycle of the storage backend. The backend owns its
// migration files; callers only ask it to migrate and close.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
