package console

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailCacheEvictsLeastRecentlyUsedIdle(t *testing.T) {
	busy := map[string]bool{"a": true}
	c := newDetailCache(3, func(name string) bool { return busy[name] })

	a, b, d, e := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	c.put(a, "a")
	c.put(b, "b")
	c.put(d, "d")

	_, ok := c.get(b)
	require.True(t, ok)

	c.put(e, "e")
	assert.Equal(t, 3, c.len())

	_, ok = c.get(a)
	assert.True(t, ok, "a page with an open form is kept")
	_, ok = c.get(b)
	assert.True(t, ok, "a recently used page is kept")
	_, ok = c.get(d)
	assert.False(t, ok)
}

func TestDetailCacheGrowsWhenEveryPageIsEditing(t *testing.T) {
	c := newDetailCache(2, func(string) bool { return true })
	c.put(uuid.New(), "a")
	c.put(uuid.New(), "b")
	c.put(uuid.New(), "c")
	assert.Equal(t, 3, c.len())
}

func TestOpenDetailFormSurvivesCacheLimit(t *testing.T) {
	con, _ := newTestConsole(t)

	first := uuid.New()
	editing := con.OrderDetail(first)
	require.NoError(t, editing.Lines.OpenAdd())

	idle := uuid.New()
	idleDetail := con.OrderDetail(idle)
	for i := 0; i < maxOpenDetails; i++ {
		con.OrderDetail(uuid.New())
	}

	assert.Same(t, editing, con.OrderDetail(first))
	assert.Equal(t, ModeAdd, con.OrderDetail(first).Lines.Mode())
	assert.NotSame(t, idleDetail, con.OrderDetail(idle))

	product := uuid.New()
	pd := con.ProductDetail(product)
	require.NoError(t, pd.Variants.OpenAdd())
	for i := 0; i < maxOpenDetails; i++ {
		con.ProductDetail(uuid.New())
	}
	assert.Same(t, pd, con.ProductDetail(product))
}
