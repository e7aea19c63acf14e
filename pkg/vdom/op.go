package vdom

import "github.com/iqwerty/iq/pkg/dom"

// OpKind is the type of patch operation.
type OpKind uint8

const (
	OpSetText    OpKind = iota + 1 // Text/comment content changed at a position
	OpSetAttr                      // Set/update attribute
	OpRemoveAttr                   // Remove attribute
	OpInsertNode                   // Insert node at index
	OpRemoveNode                   // Remove node at index
	OpReplaceNode                  // Replace node at index
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpInsertNode:
		return "InsertNode"
	case OpRemoveNode:
		return "RemoveNode"
	case OpReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// Op records a single applied mutation.
type Op struct {
	Kind OpKind

	// Target is the element that owns the change: the node itself for
	// attribute ops, the parent for structural and text ops.
	Target *dom.Node

	// Index is the child position for structural and text ops.
	Index int

	// Key and Value carry attribute ops; Value carries new text for SetText.
	Key   string
	Value string

	// Node is the inserted or replacement node.
	Node *dom.Node
}
