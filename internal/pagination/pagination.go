// Package pagination implements keyset (cursor) pagination over
// monotonically increasing integer ids.
//
// A listing has a natural order: Descending (newest first, e.g. posts) or
// Ascending (oldest first, e.g. comments under a post). Walking Forwards
// follows that order from the start id inclusive; walking Backwards goes
// against it and the fetched rows are reversed, so a page is always shown
// in the listing's natural order.
package pagination

import (
	"math"
	"net/url"
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 40

	// MaxID is the largest id a signed 64-bit column can hold.
	MaxID uint64 = math.MaxInt64
)

type Direction string

const (
	Forwards  Direction = "forwards"
	Backwards Direction = "backwards"
)

// ParseDirection defaults to Forwards for anything unrecognised.
func ParseDirection(s string) Direction {
	if Direction(s) == Backwards {
		return Backwards
	}
	return Forwards
}

type Order int

const (
	Descending Order = iota
	Ascending
)

// Origin is the start id used when none is given.
func (o Order) Origin() uint64 {
	if o == Ascending {
		return 0
	}
	return MaxID
}

// Params are the cursor parameters of one page request.
type Params struct {
	Direction Direction
	Start     uint64
	Limit     int
}

// ParseParams never fails: malformed values fall back to defaults, the
// limit is clamped to [MinLimit, MaxLimit] and start is capped at MaxID.
func ParseParams(direction, start, limit string, order Order) Params {
	p := Params{
		Direction: ParseDirection(direction),
		Start:     order.Origin(),
		Limit:     DefaultLimit,
	}

	if start != "" {
		if n, err := strconv.ParseUint(start, 10, 64); err == nil {
			p.Start = min(n, MaxID)
		} else if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			p.Start = MaxID
		}
	}

	if limit != "" {
		if n, err := strconv.ParseInt(limit, 10, 64); err == nil {
			p.Limit = int(clamp(n, MinLimit, MaxLimit))
		}
	}

	return p
}

func clamp(n, lo, hi int64) int64 {
	return max(lo, min(n, hi))
}

// ascending reports whether rows are read from the database in ascending
// id order for this request.
func (p Params) ascending(order Order) bool {
	return (order == Ascending) == (p.Direction == Forwards)
}

// Window returns the range predicate and ORDER BY clause selecting the
// Limit rows nearest to Start in the walking direction.
func (p Params) Window(column string, order Order) (sq.Sqlizer, string) {
	if p.ascending(order) {
		return sq.GtOrEq{column: p.Start}, column + " ASC"
	}
	return sq.LtOrEq{column: p.Start}, column + " DESC"
}

// Values encodes p as query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("direction", string(p.Direction))
	v.Set("start_id", strconv.FormatUint(p.Start, 10))
	v.Set("limit", strconv.Itoa(p.Limit))
	return v
}

// Cursors are the start ids of the neighbouring pages.
type Cursors struct {
	Prev uint64
	Next uint64
}

func saturatingAdd(n uint64) uint64 {
	if n >= MaxID {
		return MaxID
	}
	return n + 1
}

func saturatingSub(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return n - 1
}

// CursorsFor derives the neighbouring start ids from a page's ids in
// display order. An empty page yields sentinels that select nothing new.
func CursorsFor(ids []uint64, order Order) Cursors {
	if order == Ascending {
		if len(ids) == 0 {
			return Cursors{Prev: 0, Next: MaxID}
		}
		return Cursors{
			Prev: saturatingSub(ids[0]),
			Next: saturatingAdd(ids[len(ids)-1]),
		}
	}

	if len(ids) == 0 {
		return Cursors{Prev: MaxID, Next: 0}
	}
	return Cursors{
		Prev: saturatingAdd(ids[0]),
		Next: saturatingSub(ids[len(ids)-1]),
	}
}

// Bounds are the smallest and largest ids of the whole (filtered) listing.
// Both are nil when the listing is empty.
type Bounds struct {
	Min *uint64
	Max *uint64
}

// Page is one page of a listing in display order.
type Page[T any] struct {
	Items   []T
	Params  Params
	Order   Order
	Cursors Cursors
	Bounds  Bounds

	first, last uint64
}

func newPage[T any](items []T, ids []uint64, p Params, order Order, b Bounds) Page[T] {
	page := Page[T]{
		Items:   items,
		Params:  p,
		Order:   order,
		Cursors: CursorsFor(ids, order),
		Bounds:  b,
	}
	if len(ids) > 0 {
		page.first, page.last = ids[0], ids[len(ids)-1]
	}
	return page
}

func (p Page[T]) Empty() bool { return len(p.Items) == 0 }

// HasPrev reports whether rows exist before the first shown row.
func (p Page[T]) HasPrev() bool {
	if p.Empty() {
		return false
	}
	if p.Order == Ascending {
		return p.Bounds.Min != nil && p.first > *p.Bounds.Min
	}
	return p.Bounds.Max != nil && p.first < *p.Bounds.Max
}

// HasNext reports whether rows exist after the last shown row.
func (p Page[T]) HasNext() bool {
	if p.Empty() {
		return false
	}
	if p.Order == Ascending {
		return p.Bounds.Max != nil && p.last < *p.Bounds.Max
	}
	return p.Bounds.Min != nil && p.last > *p.Bounds.Min
}

// PrevParams walks backwards from the previous cursor.
func (p Page[T]) PrevParams() Params {
	return Params{Direction: Backwards, Start: p.Cursors.Prev, Limit: p.Params.Limit}
}

// NextParams walks forwards from the next cursor.
func (p Page[T]) NextParams() Params {
	return Params{Direction: Forwards, Start: p.Cursors.Next, Limit: p.Params.Limit}
}

// Links are ready-to-use hrefs for the neighbouring pages. Empty when the
// corresponding control should be disabled.
type Links struct {
	Prev string
	Next string
}

// Links builds hrefs on base, keeping extra query parameters (e.g. a search).
func (p Page[T]) Links(base string, extra url.Values) Links {
	build := func(params Params) string {
		v := params.Values()
		for k, vals := range extra {
			for _, val := range vals {
				if val != "" {
					v.Add(k, val)
				}
			}
		}
		return base + "?" + v.Encode()
	}

	var l Links
	if p.HasPrev() {
		l.Prev = build(p.PrevParams())
	}
	if p.HasNext() {
		l.Next = build(p.NextParams())
	}
	return l
}

// Map converts the items of a page, keeping its cursors.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = f(item)
	}
	return Page[U]{
		Items:   items,
		Params:  p.Params,
		Order:   p.Order,
		Cursors: p.Cursors,
		Bounds:  p.Bounds,
		first:   p.first,
		last:    p.last,
	}
}
