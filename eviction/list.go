// This file implements list-ordered eviction, shared by FIFOList and LRU.

package eviction

import "github.com/krisalay/artifact-cache/types"

// listNode represents ONE key inside the ordering list.
type listNode struct {
	key  string
	prev *listNode
	next *listNode
}

// insertionList keeps keys oldest (head) to newest (tail).
type insertionList struct {
	// nodes maps keys to their list nodes for O(1) removal.
	nodes map[string]*listNode

	head *listNode
	tail *listNode

	// touchOnGet moves served keys to the tail (LRU behaviour).
	touchOnGet bool
}

func newInsertionList(touchOnGet bool) *insertionList {
	return &insertionList{
		nodes:      make(map[string]*listNode),
		touchOnGet: touchOnGet,
	}
}

func (l *insertionList) OnGet(k string) {
	if !l.touchOnGet {
		return
	}
	if n, ok := l.nodes[k]; ok {
		l.unlink(n)
		l.pushBack(n)
	}
}

// OnPut appends the key as the newest. A key that is already tracked is
// treated as a fresh insertion and moves to the tail.
func (l *insertionList) OnPut(ent *types.ArtifactEntry) {
	if n, ok := l.nodes[ent.Key]; ok {
		l.unlink(n)
		l.pushBack(n)
		return
	}
	n := &listNode{key: ent.Key}
	l.nodes[ent.Key] = n
	l.pushBack(n)
}

func (l *insertionList) Remove(k string) {
	if n, ok := l.nodes[k]; ok {
		l.unlink(n)
		delete(l.nodes, k)
	}
}

// Evict pops up to n keys from the head.
func (l *insertionList) Evict(n int) []string {
	if n <= 0 {
		return nil
	}
	victims := make([]string, 0, n)
	for len(victims) < n && l.head != nil {
		h := l.head
		l.unlink(h)
		delete(l.nodes, h.key)
		victims = append(victims, h.key)
	}
	return victims
}

func (l *insertionList) Reset() {
	clear(l.nodes)
	l.head, l.tail = nil, nil
}

func (l *insertionList) pushBack(n *listNode) {
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	}
	l.tail = n
	if l.head == nil {
		l.head = n
	}
}

// unlink removes a node from the list, fixing head and tail.
func (l *insertionList) unlink(n *listNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
