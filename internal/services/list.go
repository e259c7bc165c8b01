package services

import (
	"github.com/yukikurage/task-user-api/internal/query"
)

// ListInput holds the raw list parameters. A nil Limit selects the
// collection's default; zero means no limit.
type ListInput struct {
	Where  string
	Sort   string
	Select string
	Skip   int
	Limit  *int
	Count  bool
}

// ListResult is either a count or a page of documents, projected when a
// select was given.
type ListResult[T any] struct {
	CountOnly bool
	Count     int64
	Items     []T
	Projected []map[string]any
}

// Data returns the value to serialize as the response data.
func (r *ListResult[T]) Data() any {
	switch {
	case r.CountOnly:
		return r.Count
	case r.Projected != nil:
		return r.Projected
	default:
		return r.Items
	}
}

func (in ListInput) listing(params query.Params, defaultLimit int) query.List {
	limit := defaultLimit
	if in.Limit != nil {
		limit = *in.Limit
	}
	return query.List{
		Filter: params.Filter,
		Sort:   params.Sort,
		Skip:   in.Skip,
		Limit:  limit,
	}
}

// project applies the projection to a page, leaving it untouched when the
// projection is empty.
func project[T any](result *ListResult[T], p query.Projection) error {
	if p.Empty() {
		return nil
	}
	projected, err := query.ApplyAll(p, result.Items)
	if err != nil {
		return err
	}
	result.Projected = projected
	return nil
}

// view returns doc or its projection.
func view(doc any, p query.Projection) (any, error) {
	if p.Empty() {
		return doc, nil
	}
	return p.Apply(doc)
}
