package model

import (
	"reflect"
	"strconv"
	"strings"
)

// NodeID identifies a kind of showable node. It is an equality key only.
type NodeID struct {
	typ reflect.Type
}

// NodeIDOf returns the identity of node type T.
func NodeIDOf[T ShowNode]() NodeID {
	return NodeID{typ: reflect.TypeFor[T]()}
}

// String returns the user-facing node name.
func (id NodeID) String() string {
	if name, ok := nodeNamesByID[id]; ok {
		return name
	}
	if id.typ == nil {
		return "<unknown>"
	}
	return id.typ.String()
}

var (
	ListID    = NodeIDOf[*ListNode]()
	EnumID    = NodeIDOf[*EnumNode]()
	HeadingID = NodeIDOf[*HeadingNode]()
	StrongID  = NodeIDOf[*StrongNode]()
	EmphID    = NodeIDOf[*EmphNode]()
)

var nodeIDsByName = map[string]NodeID{
	"list":    ListID,
	"enum":    EnumID,
	"heading": HeadingID,
	"strong":  StrongID,
	"emph":    EmphID,
}

var nodeNamesByID = func() map[NodeID]string {
	out := make(map[NodeID]string, len(nodeIDsByName))
	for name, id := range nodeIDsByName {
		out[id] = name
	}
	return out
}()

// LookupNode returns the identity of the node with the given name.
func LookupNode(name string) (NodeID, bool) {
	id, ok := nodeIDsByName[name]
	return id, ok
}

// ShowNode is content whose rendering show rules can customize.
type ShowNode interface {
	// ID returns the node kind identity.
	ID() NodeID

	// Encode returns the node's fields as seen by recipe functions.
	Encode() *Dict

	// Unguard returns a copy whose child content no longer carries a guard
	// for sel.
	Unguard(sel Selector) ShowNode

	// Realize returns the node's base rendering.
	Realize() Content
}

func unguard(c Content, sel Selector) Content {
	return NewStyled(c, UnguardEntry(sel))
}

func unguardAll(items []Content, sel Selector) []Content {
	out := make([]Content, len(items))
	for i, item := range items {
		out[i] = unguard(item, sel)
	}
	return out
}

func contentArray(items []Content) Array {
	out := make(Array, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// ListNode is a bullet list.
type ListNode struct {
	Items []Content
	Tight bool
}

func (n *ListNode) ID() NodeID { return ListID }

func (n *ListNode) Encode() *Dict {
	return DictOf(P("items", contentArray(n.Items)), P("tight", Bool(n.Tight)))
}

func (n *ListNode) Unguard(sel Selector) ShowNode {
	return &ListNode{Items: unguardAll(n.Items, sel), Tight: n.Tight}
}

func (n *ListNode) Realize() Content {
	seq := make(Sequence, len(n.Items))
	for i, item := range n.Items {
		seq[i] = &Block{Marker: "-", Body: item}
	}
	return seq
}

// EnumNode is a numbered list.
type EnumNode struct {
	Items []Content
	Start int64
}

func (n *EnumNode) ID() NodeID { return EnumID }

func (n *EnumNode) Encode() *Dict {
	return DictOf(P("items", contentArray(n.Items)), P("start", Int(n.Start)))
}

func (n *EnumNode) Unguard(sel Selector) ShowNode {
	return &EnumNode{Items: unguardAll(n.Items, sel), Start: n.Start}
}

func (n *EnumNode) Realize() Content {
	seq := make(Sequence, len(n.Items))
	for i, item := range n.Items {
		seq[i] = &Block{Marker: strconv.FormatInt(n.Start+int64(i), 10) + ".", Body: item}
	}
	return seq
}

// MaxHeadingLevel is the deepest heading level.
const MaxHeadingLevel = 6

// HeadingNode is a section heading.
type HeadingNode struct {
	Level int64
	Body  Content
}

func (n *HeadingNode) ID() NodeID { return HeadingID }

func (n *HeadingNode) Encode() *Dict {
	return DictOf(P("level", Int(n.Level)), P("body", n.Body))
}

func (n *HeadingNode) Unguard(sel Selector) ShowNode {
	return &HeadingNode{Level: n.Level, Body: unguard(n.Body, sel)}
}

func (n *HeadingNode) Realize() Content {
	level := min(max(n.Level, 1), MaxHeadingLevel)
	return &Block{Marker: strings.Repeat("=", int(level)), Body: n.Body}
}

// StrongNode is strongly emphasized text.
type StrongNode struct {
	Body Content
}

func (n *StrongNode) ID() NodeID { return StrongID }

func (n *StrongNode) Encode() *Dict { return DictOf(P("body", n.Body)) }

func (n *StrongNode) Unguard(sel Selector) ShowNode {
	return &StrongNode{Body: unguard(n.Body, sel)}
}

func (n *StrongNode) Realize() Content {
	return Sequence{Text("*"), n.Body, Text("*")}
}

// EmphNode is emphasized text.
type EmphNode struct {
	Body Content
}

func (n *EmphNode) ID() NodeID { return EmphID }

func (n *EmphNode) Encode() *Dict { return DictOf(P("body", n.Body)) }

func (n *EmphNode) Unguard(sel Selector) ShowNode {
	return &EmphNode{Body: unguard(n.Body, sel)}
}

func (n *EmphNode) Realize() Content {
	return Sequence{Text("_"), n.Body, Text("_")}
}
