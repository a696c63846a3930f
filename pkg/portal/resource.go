package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/remedialportal/console/pkg/portal/hydra"
)

// ListOptions control a collection query. Filters carries resource-specific
// parameters (search, status, ...) verbatim.
type ListOptions struct {
	Page         int
	ItemsPerPage int
	Filters      url.Values
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	for k, vs := range o.Filters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.ItemsPerPage > 0 {
		q.Set("itemsPerPage", strconv.Itoa(o.ItemsPerPage))
	}
	return q
}

// Resource provides the conventional REST operations over one endpoint:
// collection GET, item GET by numeric id, POST create, merge-patch update
// and DELETE. All calls flow through the gateway.
type Resource[T any] struct {
	gateway  *hydra.Client
	endpoint string
}

// NewResource binds a typed resource service to an endpoint like "/applicants".
func NewResource[T any](gateway *hydra.Client, endpoint string) *Resource[T] {
	return &Resource[T]{gateway: gateway, endpoint: endpoint}
}

// Endpoint returns the bound endpoint path.
func (r *Resource[T]) Endpoint() string {
	return r.endpoint
}

// List fetches one collection page. The returned envelope carries the
// server-reported total and pagination links.
func (r *Resource[T]) List(ctx context.Context, opts ListOptions) ([]T, *hydra.Collection, error) {
	collection, err := r.gateway.GetCollection(ctx, r.endpoint, opts.query())
	if err != nil {
		return nil, nil, err
	}

	var items []T
	if err := collection.Decode(&items); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s collection: %w", r.endpoint, err)
	}
	return items, collection, nil
}

// Get fetches a single resource by id.
func (r *Resource[T]) Get(ctx context.Context, id int) (*T, error) {
	var item T
	if err := r.gateway.GetItem(ctx, fmt.Sprintf("%s/%d", r.endpoint, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts a new resource and returns the server's representation.
func (r *Resource[T]) Create(ctx context.Context, payload any) (*T, error) {
	var item T
	if err := r.gateway.Post(ctx, r.endpoint, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies a partial update; only the supplied fields change.
func (r *Resource[T]) Update(ctx context.Context, id int, payload any) (*T, error) {
	var item T
	if err := r.gateway.Patch(ctx, fmt.Sprintf("%s/%d", r.endpoint, id), payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a resource by id.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.gateway.Delete(ctx, fmt.Sprintf("%s/%d", r.endpoint, id))
}
