package pagination

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type item struct {
	ID    uint64 `gorm:"primaryKey"`
	Title string
}

func itemID(i *item) uint64 { return i.ID }

func ids(items []item) []uint64 {
	out := make([]uint64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// seed inserts ids 1..n; every third title contains "go".
func seed(t *testing.T, n int) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&item{}))
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("item %d", i)
		if i%3 == 0 {
			title += " go"
		}
		require.NoError(t, db.Create(&item{ID: uint64(i), Title: title}).Error)
	}
	return db
}

func titleLike(q string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("items.title LIKE ?", "%"+q+"%")
	}
}

func TestFetchDescendingWalk(t *testing.T) {
	db := seed(t, 10)
	ctx := context.Background()
	q := Query{Column: "items.id", Order: Descending}

	first, err := Fetch(ctx, db, q, ParseParams("", "", "4", Descending), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 9, 8, 7}, ids(first.Items))
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	second, err := Fetch(ctx, db, q, first.NextParams(), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{6, 5, 4, 3}, ids(second.Items))

	// Walking back lands on the same page in the same display order.
	back, err := Fetch(ctx, db, q, second.PrevParams(), itemID)
	require.NoError(t, err)
	assert.Equal(t, ids(first.Items), ids(back.Items))

	last, err := Fetch(ctx, db, q, second.NextParams(), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 1}, ids(last.Items))
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrev())
}

func TestFetchAscendingWalk(t *testing.T) {
	db := seed(t, 5)
	ctx := context.Background()
	q := Query{Column: "items.id", Order: Ascending}

	first, err := Fetch(ctx, db, q, ParseParams("", "", "2", Ascending), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids(first.Items))
	assert.False(t, first.HasPrev())

	second, err := Fetch(ctx, db, q, first.NextParams(), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, ids(second.Items))

	back, err := Fetch(ctx, db, q, second.PrevParams(), itemID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids(back.Items))
}

func TestFetchFilterAppliesToBounds(t *testing.T) {
	db := seed(t, 10)
	q := Query{Column: "items.id", Order: Descending, Filters: []Scope{titleLike("go")}}

	page, err := Fetch(context.Background(), db, q, ParseParams("", "", "2", Descending), itemID)
	require.NoError(t, err)

	assert.Equal(t, []uint64{9, 6}, ids(page.Items))
	require.NotNil(t, page.Bounds.Min)
	require.NotNil(t, page.Bounds.Max)
	assert.Equal(t, uint64(3), *page.Bounds.Min)
	assert.Equal(t, uint64(9), *page.Bounds.Max)
	assert.False(t, page.HasPrev())
	assert.True(t, page.HasNext())
}

func TestFetchOutOfRangeStartIsEmpty(t *testing.T) {
	db := seed(t, 3)
	q := Query{Column: "items.id", Order: Ascending}

	page, err := Fetch(context.Background(), db, q, ParseParams("", "50", "", Ascending), itemID)
	require.NoError(t, err)

	assert.True(t, page.Empty())
	assert.Equal(t, Cursors{Prev: 0, Next: MaxID}, page.Cursors)
	assert.False(t, page.HasPrev())
	assert.False(t, page.HasNext())
}

func TestFetchEmptyTable(t *testing.T) {
	db := seed(t, 0)
	q := Query{Column: "items.id", Order: Descending}

	page, err := Fetch(context.Background(), db, q, ParseParams("", "", "", Descending), itemID)
	require.NoError(t, err)

	assert.True(t, page.Empty())
	assert.Nil(t, page.Bounds.Min)
	assert.Nil(t, page.Bounds.Max)
}
