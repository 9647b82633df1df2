package syntax

// LinkedNode is a syntax node that knows its parent and its position among
// its siblings. It is how tooling walks upwards from a cursor position.
type LinkedNode struct {
	node   *Node
	parent *LinkedNode
	index  int
}

// NewLinkedNode links the tree rooted at root.
func NewLinkedNode(root *Node) *LinkedNode {
	return &LinkedNode{node: root}
}

// Node returns the underlying syntax node.
func (l *LinkedNode) Node() *Node { return l.node }

// Kind returns the kind of the underlying node.
func (l *LinkedNode) Kind() Kind { return l.node.Kind }

// Span returns the span of the underlying node.
func (l *LinkedNode) Span() Span { return l.node.Span }

// Parent returns the parent node, or nil at the root.
func (l *LinkedNode) Parent() *LinkedNode { return l.parent }

// Index returns the position of the node among its siblings.
func (l *LinkedNode) Index() int { return l.index }

// Children returns the linked children in source order.
func (l *LinkedNode) Children() []*LinkedNode {
	out := make([]*LinkedNode, len(l.node.Children))
	for i, child := range l.node.Children {
		out[i] = &LinkedNode{node: child, parent: l, index: i}
	}
	return out
}

// LeafAt returns the deepest node whose span contains offset.
// Returns nil if the offset lies outside this node.
func (l *LinkedNode) LeafAt(offset int) *LinkedNode {
	if !l.node.Span.Contains(offset) {
		return nil
	}
	for _, child := range l.Children() {
		if found := child.LeafAt(offset); found != nil {
			return found
		}
	}
	return l
}

// Find returns the deepest node with exactly the given span.
func (l *LinkedNode) Find(span Span) *LinkedNode {
	if l.node.Span.Source != span.Source || span.Start < l.node.Span.Start || span.End > l.node.Span.End {
		return nil
	}
	for _, child := range l.Children() {
		if found := child.Find(span); found != nil {
			return found
		}
	}
	if l.node.Span == span {
		return l
	}
	return nil
}
