package repository

import "context"

// Saver persists a Document.
// Small interface used by the editor and background jobs.
type Saver interface {
	Save(ctx context.Context, doc *Document) error
}

// Loader fetches the stored Document.
type Loader interface {
	Load(ctx context.Context) (*Document, error)
}

// Repository abstracts persistence, backup and watching of the data file.
// JSONRepository implements this interface.
type Repository interface {
	Saver
	Loader
	Backup(ctx context.Context) error
	StartWatcher(ctx context.Context, sink ReloadSink) error
}
