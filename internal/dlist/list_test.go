package dlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyListCursorSentinels(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	require.NotNil(t, l)
	require.Equal(t, 0, l.Count())

	_, ok := l.Curr()
	require.False(t, ok)

	_, ok = l.First()
	require.False(t, ok)
	_, ok = l.Next()
	require.False(t, ok, "before-start + Next should stay out of range")

	_, ok = l.Last()
	require.False(t, ok)
	_, ok = l.Prev()
	require.False(t, ok, "after-end + Prev should stay out of range")
}

func TestAppendAndIterate(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)

	require.True(t, l.Append(1))
	require.True(t, l.Append(2))
	require.True(t, l.Append(3))
	require.Equal(t, 3, l.Count())

	v, ok := l.First()
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, ok = l.Next()
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = l.Next()
	require.True(t, ok)
	require.Equal(t, 3, v)

	_, ok = l.Next()
	require.False(t, ok, "advancing past tail should land out of range")

	v, ok = l.Prev()
	require.True(t, ok, "Prev from after-end should land back on tail")
	require.Equal(t, 3, v)
}

func TestInsertAtBeforeStartCursorPrepends(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	require.True(t, l.Append(2))
	require.True(t, l.Append(3))

	_, ok := l.First()
	require.True(t, ok)
	_, ok = l.Prev()
	require.False(t, ok, "cursor now before start")

	require.True(t, l.InsertAfter(1))
	v, _ := l.First()
	require.Equal(t, 1, v)
	require.Equal(t, 3, l.Count())
}

func TestInsertAtAfterEndCursorAppends(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	require.True(t, l.Append(1))
	require.True(t, l.Append(2))

	_, ok := l.Last()
	require.True(t, ok)
	_, ok = l.Next()
	require.False(t, ok, "cursor now after end")

	require.True(t, l.InsertBefore(3))
	v, _ := l.Last()
	require.Equal(t, 3, v)
	require.Equal(t, 3, l.Count())
}

func TestRemoveHeadMiddleTail(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	require.True(t, l.Append(1))
	require.True(t, l.Append(2))
	require.True(t, l.Append(3))

	l.First()
	v, ok := l.Remove()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, l.Count())
	cur, _ := l.Curr()
	require.Equal(t, 2, cur)

	l.Last()
	v, ok = l.Remove()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 1, l.Count())
	_, ok = l.Curr()
	require.False(t, ok, "removing the tail leaves the cursor out of range")

	l.First()
	v, ok = l.Remove()
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 0, l.Count())
}

func TestTrim(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	l.Append(1)
	l.Append(2)
	l.Append(3)

	v, ok := l.Trim()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, l.Count())

	last, _ := l.Last()
	require.Equal(t, 2, last)
}

func TestSearchResumesFromHeadWhenBeforeStart(t *testing.T) {
	pool := NewPool[int](8, 4)
	l := Create(pool)
	l.Append(10)
	l.Append(20)
	l.Append(30)

	eq := func(item int, arg any) bool { return item == arg.(int) }

	l.First()
	v, ok := Search(l, eq, 20)
	require.True(t, ok)
	require.Equal(t, 20, v)

	_, ok = Search(l, eq, 10)
	require.False(t, ok, "search continues forward from cursor, won't find an earlier item")

	l.First()
	l.Prev()
	v, ok = Search(l, eq, 10)
	require.True(t, ok, "before-start cursor makes search resume from the head")
	require.Equal(t, 10, v)
}

func TestConcatEmptyAndNonEmpty(t *testing.T) {
	pool := NewPool[int](16, 4)
	l1 := Create(pool)
	l2 := Create(pool)
	l2.Append(1)
	l2.Append(2)

	Concat(l1, l2)
	require.Equal(t, 2, l1.Count())
	v, _ := l1.First()
	require.Equal(t, 1, v)

	l3 := Create(pool)
	l3.Append(3)
	Concat(l1, l3)
	require.Equal(t, 3, l1.Count())
	last, _ := l1.Last()
	require.Equal(t, 3, last)
}

func TestFreeReleasesNodesAndHeader(t *testing.T) {
	pool := NewPool[int](4, 2)
	l := Create(pool)
	require.True(t, l.Append(1))
	require.True(t, l.Append(2))
	require.True(t, l.Append(3))
	require.True(t, l.Append(4))
	require.False(t, l.Append(5), "node pool should be exhausted")

	var freed []int
	l.Free(func(item int) { freed = append(freed, item) })
	require.Equal(t, []int{1, 2, 3, 4}, freed)

	l2 := Create(pool)
	require.True(t, l2.Append(100), "nodes should be reusable after Free")
}

func TestPoolHeadExhaustion(t *testing.T) {
	pool := NewPool[int](8, 1)
	l1 := Create(pool)
	require.NotNil(t, l1)

	l2 := Create(pool)
	require.Nil(t, l2, "second header should fail once head capacity is exhausted")

	l1.Free(nil)
	l3 := Create(pool)
	require.NotNil(t, l3, "header slot should be reusable after Free")
}

func TestNodePoolExhaustion(t *testing.T) {
	pool := NewPool[int](2, 4)
	l := Create(pool)
	require.True(t, l.Append(1))
	require.True(t, l.Append(2))
	require.False(t, l.Append(3), "node pool should fail closed rather than grow")
}
