package vdom

import (
	"github.com/iqwerty/iq/pkg/dom"
)

// Patch mutates committed in place so its content matches incoming, and
// returns the ops that were applied. incoming is consumed: its nodes are
// moved into the committed tree wherever the committed side changed.
//
// Only the roots' children are reconciled at the top level: the committed
// root's own attributes and metadata belong to whoever rendered it (for a
// component host, the parent's template), not to its content.
//
// meta may be nil when no binding metadata is in play (plain markup trees).
func Patch(committed, incoming *dom.Node, meta *dom.MetaTable) []Op {
	var ops []Op
	patchChildren(committed, incoming, meta, &ops)
	return ops
}

// patchElement reconciles children, attributes and metadata of an unchanged
// (or root) element pair.
func patchElement(c, in *dom.Node, meta *dom.MetaTable, ops *[]Op) {
	patchChildren(c, in, meta, ops)
	patchAttrs(c, in, ops)
	forwardBindings(c, in, meta)
}

// patchChildren walks both child lists by position.
func patchChildren(c, in *dom.Node, meta *dom.MetaTable, ops *[]Op) {
	inKids := append([]*dom.Node(nil), in.Children...)

	common := len(c.Children)
	if len(inKids) < common {
		common = len(inKids)
	}

	for i := 0; i < common; i++ {
		patchNode(c.Children[i], inKids[i], meta, ops)
	}

	// Incoming side longer: append the new nodes in order.
	for i := common; i < len(inKids); i++ {
		kid := inKids[i]
		c.Append(kid)
		*ops = append(*ops, Op{Kind: OpInsertNode, Target: c, Index: i, Node: kid})
	}

	// Committed side longer: remove the extras.
	for len(c.Children) > len(inKids) {
		removed := c.RemoveAt(len(inKids))
		if meta != nil && removed != nil {
			meta.Drop(removed)
		}
		*ops = append(*ops, Op{Kind: OpRemoveNode, Target: c, Index: len(inKids)})
	}
}

// patchNode reconciles one aligned pair.
func patchNode(c, in *dom.Node, meta *dom.MetaTable, ops *[]Op) {
	// Category or tag change: replace wholesale. Metadata travels with the
	// incoming node as-is; the stale occupant's records are dropped.
	if c.Kind != in.Kind || (c.Kind == dom.KindElement && c.Tag != in.Tag) {
		replace(c, in, meta, ops, OpReplaceNode)
		return
	}

	switch c.Kind {
	case dom.KindText, dom.KindComment:
		// Content-only change below the root: replaced wholesale, reported
		// as a text update so the wire patch stays small.
		if c.Text != in.Text {
			replace(c, in, meta, ops, OpSetText)
		}
	case dom.KindElement:
		// A nested component host owns its own children: its content is
		// rendered by its controller's cycle, not by whoever patched it into
		// position. Only its attributes and bindings are reconciled here.
		if c.IsComponent() {
			patchAttrs(c, in, ops)
			forwardBindings(c, in, meta)
			return
		}
		patchElement(c, in, meta, ops)
	}
}

func replace(c, in *dom.Node, meta *dom.MetaTable, ops *[]Op, kind OpKind) {
	parent := c.Parent
	if parent == nil {
		return
	}
	idx := parent.Index(c)
	if meta != nil {
		meta.Drop(c)
	}
	parent.ReplaceChild(c, in)
	op := Op{Kind: kind, Target: parent, Index: idx, Node: in}
	if kind == OpSetText {
		op.Value = in.Text
		op.Node = nil
	}
	*ops = append(*ops, op)
}

// patchAttrs copies forward differing non-reserved attributes and removes
// stale ones, skipping writes when the value already matches.
func patchAttrs(c, in *dom.Node, ops *[]Op) {
	for _, a := range in.Attrs() {
		if dom.ReservedAttr(a.Key) {
			continue
		}
		if cur, ok := c.Attr(a.Key); !ok || cur != a.Value {
			c.SetAttr(a.Key, a.Value)
			*ops = append(*ops, Op{Kind: OpSetAttr, Target: c, Key: a.Key, Value: a.Value})
		}
	}
	for _, a := range c.Attrs() {
		if dom.ReservedAttr(a.Key) {
			continue
		}
		if _, ok := in.Attr(a.Key); !ok {
			c.RemoveAttr(a.Key)
			*ops = append(*ops, Op{Kind: OpRemoveAttr, Target: c, Key: a.Key})
		}
	}
}

// forwardBindings copies recorded input properties onto the surviving node
// and overwrites its metadata record with the incoming one. The overwrite is
// total: records from a stale occupant of this position must never leak into
// the new occupant.
func forwardBindings(c, in *dom.Node, meta *dom.MetaTable) {
	if meta == nil {
		return
	}
	if m := meta.Get(in); m != nil {
		for _, name := range m.Inputs {
			if v, ok := in.Prop(name); ok {
				c.SetProp(name, v)
			}
		}
	}
	meta.Forward(c, in)
}
