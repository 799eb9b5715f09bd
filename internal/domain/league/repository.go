package league

import "context"

// Repository describes league lookups needed by use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	ListActive(ctx context.Context) ([]League, error)
	GetByKeyOrName(ctx context.Context, value string) (League, bool, error)
}
