package pagination

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"gorm.io/gorm"
)

// Scope is a gorm scope. Filters narrow a listing; preloads only shape the
// loaded rows.
type Scope = func(*gorm.DB) *gorm.DB

// Query describes a listing over the table of T.
type Query struct {
	// Column is the qualified id column, e.g. "posts.id".
	Column   string
	Order    Order
	Filters  []Scope
	Preloads []Scope
}

// Fetch loads one page plus the listing bounds. The same filters apply to
// both queries so the cursors stay consistent with the filtered set.
func Fetch[T any](ctx context.Context, db *gorm.DB, q Query, p Params, idOf func(*T) uint64) (Page[T], error) {
	bounds, err := fetchBounds[T](ctx, db, q)
	if err != nil {
		return Page[T]{}, err
	}

	pred, orderBy := p.Window(q.Column, q.Order)
	where, args, err := pred.ToSql()
	if err != nil {
		return Page[T]{}, fmt.Errorf("pagination: build window: %w", err)
	}

	var items []T
	err = db.WithContext(ctx).
		Scopes(q.Filters...).
		Scopes(q.Preloads...).
		Where(where, args...).
		Order(orderBy).
		Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return Page[T]{}, fmt.Errorf("pagination: fetch page: %w", err)
	}

	if p.Direction == Backwards {
		slices.Reverse(items)
	}

	ids := make([]uint64, len(items))
	for i := range items {
		ids[i] = idOf(&items[i])
	}

	return newPage(items, ids, p, q.Order, bounds), nil
}

func fetchBounds[T any](ctx context.Context, db *gorm.DB, q Query) (Bounds, error) {
	var row struct {
		MinID sql.NullInt64 `gorm:"column:min_id"`
		MaxID sql.NullInt64 `gorm:"column:max_id"`
	}

	err := db.WithContext(ctx).
		Model(new(T)).
		Scopes(q.Filters...).
		Select(fmt.Sprintf("MIN(%s) AS min_id, MAX(%s) AS max_id", q.Column, q.Column)).
		Scan(&row).Error
	if err != nil {
		return Bounds{}, fmt.Errorf("pagination: fetch bounds: %w", err)
	}

	var b Bounds
	if row.MinID.Valid {
		v := uint64(row.MinID.Int64)
		b.Min = &v
	}
	if row.MaxID.Valid {
		v := uint64(row.MaxID.Int64)
		b.Max = &v
	}
	return b, nil
}
