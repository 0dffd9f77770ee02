package cache

// lruList keeps cache keys in recency order, most recent first
type lruList struct {
	head  *lruNode
	tail  *lruNode
	nodes map[string]*lruNode
}

type lruNode struct {
	key        string
	prev, next *lruNode
}

func newLRUList() *lruList {
	head := &lruNode{}
	tail := &lruNode{}
	head.next = tail
	tail.prev = head

	return &lruList{
		head:  head,
		tail:  tail,
		nodes: make(map[string]*lruNode),
	}
}

// Touch marks key as most recently used, adding it when absent
func (l *lruList) Touch(key string) {
	if node, exists := l.nodes[key]; exists {
		l.unlink(node)
		l.pushFront(node)
		return
	}

	node := &lruNode{key: key}
	l.nodes[key] = node
	l.pushFront(node)
}

// Remove drops key from the list
func (l *lruList) Remove(key string) {
	if node, exists := l.nodes[key]; exists {
		l.unlink(node)
		delete(l.nodes, key)
	}
}

// RemoveOldest removes and returns the least recently used key
func (l *lruList) RemoveOldest() (string, bool) {
	if len(l.nodes) == 0 {
		return "", false
	}

	oldest := l.tail.prev
	l.unlink(oldest)
	delete(l.nodes, oldest.key)
	return oldest.key, true
}

// Len returns the number of keys tracked
func (l *lruList) Len() int {
	return len(l.nodes)
}

// Keys returns the keys from most to least recently used
func (l *lruList) Keys() []string {
	out := make([]string, 0, len(l.nodes))
	for n := l.head.next; n != l.tail; n = n.next {
		out = append(out, n.key)
	}
	return out
}

func (l *lruList) pushFront(node *lruNode) {
	node.next = l.head.next
	node.prev = l.head
	l.head.next.prev = node
	l.head.next = node
}

func (l *lruList) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
