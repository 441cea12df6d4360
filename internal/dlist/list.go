// Package dlist implements the intrusive doubly-linked list with a movable
// cursor that backs every queue in the simulator (ready queues, IPC wait
// queues, semaphore wait queues). Its cursor semantics — "at a node",
// "before start", "after end" — and the exact behavior of insert/search at
// an out-of-range cursor are ported from the original source's List.c.
//
// Node and list-header allocation is bounded by a Pool shared across every
// List drawn from it, mirroring the original's fixed static arenas
// (LIST_MAX_NUM_NODES / LIST_MAX_NUM_HEADS) without requiring manual index
// bookkeeping: capacity is enforced by a live-count ceiling and node
// objects are recycled through a sync.Pool, the same Get/Put-fails-closed
// shape as the teacher's bucketed buffer pool (internal/queue/pool.go).
//
// The simulator that owns a Pool is explicitly single-threaded (see
// spec §5): no List or Pool method here takes a lock.
package dlist

import "sync"

type oobState int

const (
	oobBeforeStart oobState = iota
	oobAfterEnd
)

type node[T any] struct {
	item       T
	next, prev *node[T]
}

// Pool bounds how many nodes and list headers may be live at once across
// every List drawn from it.
type Pool[T any] struct {
	maxNodes int
	maxHeads int
	nodes    sync.Pool
	numNodes int
	numHeads int
}

// NewPool creates a Pool with the given node and list-header capacities.
func NewPool[T any](maxNodes, maxHeads int) *Pool[T] {
	return &Pool[T]{
		maxNodes: maxNodes,
		maxHeads: maxHeads,
		nodes:    sync.Pool{New: func() any { return new(node[T]) }},
	}
}

// HasNodeCapacity reports whether the pool can satisfy one more node
// allocation, letting a caller check before committing other state so a
// failure leaves nothing partially mutated.
func (p *Pool[T]) HasNodeCapacity() bool {
	return p.numNodes < p.maxNodes
}

// HasHeadCapacity reports whether the pool can satisfy one more list
// header allocation.
func (p *Pool[T]) HasHeadCapacity() bool {
	return p.numHeads < p.maxHeads
}

func (p *Pool[T]) getNode() *node[T] {
	if p.numNodes >= p.maxNodes {
		return nil
	}
	p.numNodes++
	n := p.nodes.Get().(*node[T])
	n.next, n.prev = nil, nil
	return n
}

func (p *Pool[T]) putNode(n *node[T]) {
	var zero T
	n.item = zero
	n.next, n.prev = nil, nil
	p.nodes.Put(n)
	p.numNodes--
}

// List is a doubly-linked sequence of T with a movable cursor.
type List[T any] struct {
	pool             *Pool[T]
	head, tail, curr *node[T]
	count            int
	oob              oobState
}

// Create allocates a new, empty List from pool. It returns nil if the
// pool's list-header capacity is exhausted.
func Create[T any](pool *Pool[T]) *List[T] {
	if pool.numHeads >= pool.maxHeads {
		return nil
	}
	pool.numHeads++
	return &List[T]{pool: pool, oob: oobBeforeStart}
}

// Count returns the number of items in the list.
func (l *List[T]) Count() int {
	return l.count
}

// First moves the cursor to the head of the list and returns its item.
func (l *List[T]) First() (T, bool) {
	var zero T
	if l.count == 0 {
		l.curr = nil
		l.oob = oobBeforeStart
		return zero, false
	}
	l.curr = l.head
	return l.curr.item, true
}

// Last moves the cursor to the tail of the list and returns its item.
func (l *List[T]) Last() (T, bool) {
	var zero T
	if l.count == 0 {
		l.curr = nil
		l.oob = oobAfterEnd
		return zero, false
	}
	l.curr = l.tail
	return l.curr.item, true
}

// Next advances the cursor by one and returns the new current item. From
// "before start" it moves to the head; past the tail it becomes "after end".
func (l *List[T]) Next() (T, bool) {
	var zero T
	if l.count == 0 {
		l.oob = oobAfterEnd
		l.curr = nil
		return zero, false
	}
	if l.curr == l.tail || (l.curr == nil && l.oob == oobAfterEnd) {
		l.oob = oobAfterEnd
		l.curr = nil
		return zero, false
	}
	if l.curr == nil && l.oob == oobBeforeStart {
		l.curr = l.head
		return l.curr.item, true
	}
	l.curr = l.curr.next
	return l.curr.item, true
}

// Prev backs the cursor up by one and returns the new current item. From
// "after end" it moves to the tail; before the head it becomes "before start".
func (l *List[T]) Prev() (T, bool) {
	var zero T
	if l.count == 0 {
		l.oob = oobBeforeStart
		l.curr = nil
		return zero, false
	}
	if l.curr == l.head || (l.curr == nil && l.oob == oobBeforeStart) {
		l.oob = oobBeforeStart
		l.curr = nil
		return zero, false
	}
	if l.curr == nil && l.oob == oobAfterEnd {
		l.curr = l.tail
		return l.curr.item, true
	}
	l.curr = l.curr.prev
	return l.curr.item, true
}

// Curr returns the item at the cursor, or false if the cursor is at a
// sentinel or the list is empty.
func (l *List[T]) Curr() (T, bool) {
	var zero T
	if l.curr == nil || l.count == 0 {
		return zero, false
	}
	return l.curr.item, true
}

func (l *List[T]) insertIntoEmpty(item T) bool {
	n := l.pool.getNode()
	if n == nil {
		return false
	}
	n.item = item
	l.curr, l.head, l.tail = n, n, n
	l.count++
	return true
}

// InsertAfter inserts item directly after the cursor and makes it current.
// A cursor at "before start" prepends; at "after end" it appends.
func (l *List[T]) InsertAfter(item T) bool {
	if l.count == 0 {
		return l.insertIntoEmpty(item)
	}
	n := l.pool.getNode()
	if n == nil {
		return false
	}
	switch {
	case l.curr == l.tail || (l.curr == nil && l.oob == oobAfterEnd):
		n.item, n.next, n.prev = item, nil, l.tail
		l.tail.next = n
		l.tail = n
	case l.curr == nil && l.oob == oobBeforeStart:
		n.item, n.next, n.prev = item, l.head, nil
		l.head.prev = n
		l.head = n
	default:
		temp := l.curr
		n.item, n.next, n.prev = item, temp.next, temp
		temp.next.prev = n
		temp.next = n
	}
	l.curr = n
	l.count++
	return true
}

// InsertBefore inserts item directly before the cursor and makes it current.
// A cursor at "before start" prepends; at "after end" it appends.
func (l *List[T]) InsertBefore(item T) bool {
	if l.count == 0 {
		return l.insertIntoEmpty(item)
	}
	n := l.pool.getNode()
	if n == nil {
		return false
	}
	switch {
	case l.curr == l.head || (l.curr == nil && l.oob == oobBeforeStart):
		n.item, n.next, n.prev = item, l.head, nil
		l.head.prev = n
		l.head = n
	case l.curr == nil && l.oob == oobAfterEnd:
		n.item, n.next, n.prev = item, nil, l.tail
		l.tail.next = n
		l.tail = n
	default:
		temp := l.curr
		n.item, n.next, n.prev = item, temp, temp.prev
		temp.prev.next = n
		temp.prev = n
	}
	l.curr = n
	l.count++
	return true
}

// Append adds item to the end of the list regardless of cursor position,
// and makes it current.
func (l *List[T]) Append(item T) bool {
	if l.count == 0 {
		return l.insertIntoEmpty(item)
	}
	n := l.pool.getNode()
	if n == nil {
		return false
	}
	n.item, n.next, n.prev = item, nil, l.tail
	l.tail.next = n
	l.tail = n
	l.curr = n
	l.count++
	return true
}

// Prepend adds item to the front of the list regardless of cursor
// position, and makes it current.
func (l *List[T]) Prepend(item T) bool {
	if l.count == 0 {
		return l.insertIntoEmpty(item)
	}
	n := l.pool.getNode()
	if n == nil {
		return false
	}
	n.item, n.next, n.prev = item, l.head, nil
	l.head.prev = n
	l.head = n
	l.curr = n
	l.count++
	return true
}

// Remove takes the cursor item out of the list and returns it, advancing
// the cursor to the former successor (or "after end" if the tail was
// removed). It is a no-op returning false if the cursor sits at a
// sentinel or the list is empty.
func (l *List[T]) Remove() (T, bool) {
	var zero T
	if l.count == 0 || l.curr == nil {
		return zero, false
	}
	item := l.curr.item
	switch {
	case l.count == 1:
		l.pool.putNode(l.curr)
		l.head, l.tail, l.curr = nil, nil, nil
	case l.curr == l.head:
		newHead := l.curr.next
		newHead.prev = nil
		l.pool.putNode(l.curr)
		l.head = newHead
		l.curr = newHead
	case l.curr == l.tail:
		newTail := l.curr.prev
		newTail.next = nil
		l.pool.putNode(l.curr)
		l.tail = newTail
		l.oob = oobAfterEnd
		l.curr = nil
	default:
		next, prev := l.curr.next, l.curr.prev
		prev.next = next
		l.pool.putNode(l.curr)
		next.prev = prev
		l.curr = next
	}
	l.count--
	return item, true
}

// Trim removes and returns the tail item, leaving the cursor at the new
// tail (or empty).
func (l *List[T]) Trim() (T, bool) {
	var zero T
	if l.count == 0 {
		return zero, false
	}
	item := l.tail.item
	old := l.tail
	if l.count == 1 {
		l.pool.putNode(old)
		l.head, l.tail, l.curr = nil, nil, nil
	} else {
		newTail := old.prev
		newTail.next = nil
		l.pool.putNode(old)
		l.tail = newTail
		l.curr = newTail
	}
	l.count--
	return item, true
}

// release returns the list header back to its pool's head capacity. The
// list must not be used afterward.
func (l *List[T]) release() {
	l.pool.numHeads--
	l.head, l.tail, l.curr = nil, nil, nil
	l.count = 0
}

// Concat splices other onto the end of l. other's header is released and
// must not be used afterward.
func Concat[T any](l, other *List[T]) {
	switch {
	case l.count == 0:
		l.curr, l.head, l.tail = other.curr, other.head, other.tail
		l.count, l.oob = other.count, other.oob
		other.release()
	case other.count == 0:
		other.release()
	default:
		l.tail.next = other.head
		other.head.prev = l.tail
		l.tail = other.tail
		l.count += other.count
		other.release()
	}
}

// Free removes and frees every item via freeFn (if non-nil), then
// releases the list header.
func (l *List[T]) Free(freeFn func(T)) {
	for l.count > 0 {
		l.curr = l.head
		item, _ := l.Remove()
		if freeFn != nil {
			freeFn(item)
		}
	}
	l.release()
}

// Search advances the cursor, starting from its current position (or the
// head, if "before start"), until pred(item, arg) holds. On a hit the
// cursor stops at the match; on a miss it becomes "after end".
func Search[T any](l *List[T], pred func(item T, arg any) bool, arg any) (T, bool) {
	var zero T
	if l.curr == nil && l.oob == oobAfterEnd {
		return zero, false
	}
	if l.curr == nil && l.oob == oobBeforeStart {
		l.curr = l.head
	}
	for l.curr != nil {
		if pred(l.curr.item, arg) {
			return l.curr.item, true
		}
		l.curr = l.curr.next
	}
	l.oob = oobAfterEnd
	return zero, false
}
