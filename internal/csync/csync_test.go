package csync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_SetGetDelete(t *testing.T) {
	m := NewMap[int64, string]()
	m.Set(2, "b")
	m.Set(1, "a")

	v, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, m.Len())

	m.Delete(1)
	_, ok = m.Get(1)
	assert.False(t, ok)
}

func TestMap_SortedOrdersByKey(t *testing.T) {
	m := NewMap[int64, string]()
	m.Set(30, "c")
	m.Set(10, "a")
	m.Set(20, "b")

	assert.Equal(t, []string{"a", "b", "c"}, m.Sorted())
}

func TestMap_Update(t *testing.T) {
	m := NewMap[string, int]()

	stored := m.Update("missing", func(v int, ok bool) (int, bool) { return v + 1, ok })
	assert.False(t, stored)
	assert.Equal(t, 0, m.Len())

	m.Set("n", 1)
	stored = m.Update("n", func(v int, ok bool) (int, bool) { return v + 1, ok })
	assert.True(t, stored)
	v, _ := m.Get("n")
	assert.Equal(t, 2, v)
}

func TestMap_ConcurrentUpdate(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("n", 0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update("n", func(v int, ok bool) (int, bool) { return v + 1, ok })
		}()
	}
	wg.Wait()

	v, _ := m.Get("n")
	assert.Equal(t, 50, v)
}

func TestLog_AppendAndCopy(t *testing.T) {
	l := NewLog[int]()
	l.Append(1, 2)
	l.Append(3)

	items := l.Items()
	assert.Equal(t, []int{1, 2, 3}, items)

	items[0] = 99
	assert.Equal(t, 1, l.Items()[0])
	assert.Equal(t, 3, l.Len())
}
