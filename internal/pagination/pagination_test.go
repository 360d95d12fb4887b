package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParamsDefaults(t *testing.T) {
	p := ParseParams("", "", "", Descending)
	assert.Equal(t, Params{Direction: Forwards, Start: MaxID, Limit: DefaultLimit}, p)

	p = ParseParams("", "", "", Ascending)
	assert.Equal(t, Params{Direction: Forwards, Start: 0, Limit: DefaultLimit}, p)
}

func TestParseParamsClamps(t *testing.T) {
	assert.Equal(t, MinLimit, ParseParams("", "", "0", Descending).Limit)
	assert.Equal(t, MinLimit, ParseParams("", "", "-3", Descending).Limit)
	assert.Equal(t, MaxLimit, ParseParams("", "", "1000", Descending).Limit)
	assert.Equal(t, 7, ParseParams("", "", "7", Descending).Limit)
	assert.Equal(t, DefaultLimit, ParseParams("", "", "many", Descending).Limit)

	assert.Equal(t, MaxID, ParseParams("", "18446744073709551615", "", Ascending).Start)
	assert.Equal(t, MaxID, ParseParams("", "99999999999999999999999", "", Ascending).Start)
	assert.Equal(t, uint64(12), ParseParams("", "12", "", Descending).Start)
	assert.Equal(t, MaxID, ParseParams("", "-1", "", Descending).Start)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Backwards, ParseDirection("backwards"))
	assert.Equal(t, Forwards, ParseDirection("forwards"))
	assert.Equal(t, Forwards, ParseDirection("sideways"))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		order     Order
		direction Direction
		wantSQL   string
		wantOrder string
	}{
		{"descending forwards", Descending, Forwards, "posts.id <= ?", "posts.id DESC"},
		{"descending backwards", Descending, Backwards, "posts.id >= ?", "posts.id ASC"},
		{"ascending forwards", Ascending, Forwards, "posts.id >= ?", "posts.id ASC"},
		{"ascending backwards", Ascending, Backwards, "posts.id <= ?", "posts.id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Direction: tt.direction, Start: 5, Limit: 10}
			pred, orderBy := p.Window("posts.id", tt.order)
			sql, args, err := pred.ToSql()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, []any{uint64(5)}, args)
			assert.Equal(t, tt.wantOrder, orderBy)
		})
	}
}

func TestCursorsDescending(t *testing.T) {
	assert.Equal(t, Cursors{Prev: 11, Next: 7}, CursorsFor([]uint64{10, 9, 8}, Descending))
	assert.Equal(t, Cursors{Prev: MaxID, Next: 0}, CursorsFor(nil, Descending))
	// Saturation at both ends.
	assert.Equal(t, Cursors{Prev: MaxID, Next: 0}, CursorsFor([]uint64{MaxID, 0}, Descending))
}

func TestCursorsAscending(t *testing.T) {
	assert.Equal(t, Cursors{Prev: 2, Next: 6}, CursorsFor([]uint64{3, 4, 5}, Ascending))
	assert.Equal(t, Cursors{Prev: 0, Next: MaxID}, CursorsFor(nil, Ascending))
	assert.Equal(t, Cursors{Prev: 0, Next: MaxID}, CursorsFor([]uint64{0, MaxID}, Ascending))
}

func u(n uint64) *uint64 { return &n }

func TestHasPrevNextDescending(t *testing.T) {
	b := Bounds{Min: u(1), Max: u(20)}

	middle := newPage([]int{1, 2}, []uint64{15, 14}, Params{Limit: 2}, Descending, b)
	assert.True(t, middle.HasPrev())
	assert.True(t, middle.HasNext())

	newest := newPage([]int{1, 2}, []uint64{20, 19}, Params{Limit: 2}, Descending, b)
	assert.False(t, newest.HasPrev())
	assert.True(t, newest.HasNext())

	oldest := newPage([]int{1, 2}, []uint64{2, 1}, Params{Limit: 2}, Descending, b)
	assert.True(t, oldest.HasPrev())
	assert.False(t, oldest.HasNext())

	empty := newPage([]int{}, nil, Params{Limit: 2}, Descending, Bounds{})
	assert.False(t, empty.HasPrev())
	assert.False(t, empty.HasNext())
}

func TestHasPrevNextAscending(t *testing.T) {
	b := Bounds{Min: u(3), Max: u(9)}

	first := newPage([]int{1, 2}, []uint64{3, 4}, Params{Limit: 2}, Ascending, b)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	last := newPage([]int{1, 2}, []uint64{8, 9}, Params{Limit: 2}, Ascending, b)
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
}

func TestLinks(t *testing.T) {
	b := Bounds{Min: u(1), Max: u(20)}
	page := newPage([]int{1, 2}, []uint64{15, 14}, Params{Direction: Forwards, Start: 15, Limit: 2}, Descending, b)

	links := page.Links("/", url.Values{"query": {"go"}, "empty": {""}})

	assert.Equal(t, "/?direction=backwards&limit=2&query=go&start_id=16", links.Prev)
	assert.Equal(t, "/?direction=forwards&limit=2&query=go&start_id=13", links.Next)
}

func TestMapKeepsCursors(t *testing.T) {
	b := Bounds{Min: u(1), Max: u(20)}
	page := newPage([]int{15, 14}, []uint64{15, 14}, Params{Limit: 2}, Descending, b)

	mapped := Map(page, func(n int) string { return string(rune('a' + n%26)) })

	assert.Len(t, mapped.Items, 2)
	assert.Equal(t, page.Cursors, mapped.Cursors)
	assert.Equal(t, page.HasPrev(), mapped.HasPrev())
	assert.Equal(t, page.HasNext(), mapped.HasNext())
}
