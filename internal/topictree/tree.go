// Package topictree maintains the hierarchical view of every topic seen by
// the inspector: one node per '/'-separated segment, a counter per node of
// the messages delivered to exactly that topic path (ancestors are not
// incremented), and a fuzzy text filter that
// drives which nodes a navigation UI should render.
package topictree

import (
	"strings"
	"sync"
)

// Tree is the observed topic hierarchy, rooted at a synthetic empty-segment
// node. All mutation and lookup goes through a single mutex: the tree is
// walked and rewritten as a unit on every Observe/ApplyFilter call, so
// finer-grained locking would only add bookkeeping, not concurrency.
type Tree struct {
	mu     sync.Mutex
	root   *Node
	filter string
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{
		root: &Node{Visible: true},
	}
}

// Observe records one message delivery on topic, creating any missing
// segment nodes along the way and incrementing the leaf's Count.
func (t *Tree) Observe(topic string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observeLocked(topic)
}

// ObserveN records n deliveries on topic in one pass, for bulk ingestion.
func (t *Tree) ObserveN(topic string, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	leaf := t.walkLocked(topic, true)
	if leaf != nil {
		leaf.Count += n
	}
}

func (t *Tree) observeLocked(topic string) {
	leaf := t.walkLocked(topic, true)
	if leaf != nil {
		leaf.Count++
	}
}

// walkLocked descends the '/'-separated segments of topic, optionally
// creating missing nodes, each inserted at its case-insensitive
// alphabetical position among its siblings. Returns the final segment's
// node, or nil if topic is empty or a segment is missing and create is
// false.
func (t *Tree) walkLocked(topic string, create bool) *Node {
	topic = strings.TrimSuffix(topic, "/")
	if topic == "" {
		return nil
	}
	segments := strings.Split(topic, "/")

	cur := t.root
	path := ""
	for i, seg := range segments {
		if i == 0 {
			path = seg
		} else {
			path = path + "/" + seg
		}
		idx, found := cur.childIndex(seg)
		if !found {
			if !create {
				return nil
			}
			child := &Node{
				Segment:  seg,
				FullPath: path,
				Visible:  t.filter == "",
				Parent:   cur,
			}
			cur.insertSorted(child)
			idx, _ = cur.childIndex(seg)
		}
		cur = cur.Children[idx]
	}
	return cur
}

// Find looks up the node for an exact full topic path without creating
// anything.
func (t *Tree) Find(fullPath string) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.walkLocked(fullPath, false)
	if n == nil {
		return nil, false
	}
	return n, true
}

// ApplyFilter re-scores visibility across the whole tree against pattern:
// a node is visible iff its own segment partial-ratio-matches pattern
// above MatchThreshold, or any descendant does. A blank pattern is
// equivalent to ClearFilter.
func (t *Tree) ApplyFilter(pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pattern = strings.TrimSpace(pattern)
	t.filter = pattern
	if pattern == "" {
		setAllVisible(t.root, true)
		return
	}
	markVisibility(t.root, pattern)
}

// ClearFilter resets every node to visible and forgets the active pattern.
func (t *Tree) ClearFilter() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = ""
	setAllVisible(t.root, true)
}

// markVisibility recomputes Visible bottom-up and reports whether n or any
// descendant of n is a match, so the caller (n's parent) can fold that
// result into its own visibility.
func markVisibility(n *Node, pattern string) bool {
	selfMatch := n.Segment != "" && partialRatio(n.Segment, pattern) > MatchThreshold
	descendantMatch := false
	for _, c := range n.Children {
		if markVisibility(c, pattern) {
			descendantMatch = true
		}
	}
	n.Visible = selfMatch || descendantMatch
	return n.Visible
}

func setAllVisible(n *Node, visible bool) {
	n.Visible = visible
	for _, c := range n.Children {
		setAllVisible(c, visible)
	}
}

// ExpandAll marks every node, leaves included, as expanded.
func (t *Tree) ExpandAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	setAllExpanded(t.root, true)
}

// CollapseAll marks every node as collapsed.
func (t *Tree) CollapseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	setAllExpanded(t.root, false)
}

func setAllExpanded(n *Node, expanded bool) {
	n.Expanded = expanded
	for _, c := range n.Children {
		setAllExpanded(c, expanded)
	}
}

// Roots returns the top-level segment nodes in their sorted display order.
func (t *Tree) Roots() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Node, len(t.root.Children))
	copy(out, t.root.Children)
	return out
}

// ActiveFilter reports the currently applied filter pattern, if any.
func (t *Tree) ActiveFilter() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter
}
