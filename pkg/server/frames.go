package server

import (
	"encoding/json"

	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/vdom"
)

// Frame types on the wire. All frames are JSON text messages.
const (
	FrameEvent  = "event"  // client -> server: user interaction
	FramePatch  = "patch"  // server -> client: DOM ops
	FrameReload = "reload" // server -> client: full page reload (template edit)
	FrameError  = "error"  // server -> client: diagnostic
)

// EventFrame is a user interaction reported by the client. Path addresses
// the target node by child indexes from the document root.
type EventFrame struct {
	Type   string         `json:"type"`
	Path   []int          `json:"path"`
	Event  string         `json:"event"`
	Detail map[string]any `json:"detail,omitempty"`
}

// PatchFrame carries the ops of one committed patch.
type PatchFrame struct {
	Type string   `json:"type"`
	Seq  uint64   `json:"seq"`
	Ops  []WireOp `json:"ops"`
}

// WireOp is one DOM operation in client-applicable form. Path addresses the
// op's target element; structural ops carry the child index and, for
// inserts and replaces, the rendered HTML of the new node.
type WireOp struct {
	Op    string `json:"op"`
	Path  []int  `json:"path"`
	Index int    `json:"index,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// ErrorFrame reports a server-side problem to the client.
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// nodePath returns the child-index path from root down to n, or false when
// n is not under root.
func nodePath(root, n *dom.Node) ([]int, bool) {
	var rev []int
	for n != root {
		p := n.Parent
		if p == nil {
			return nil, false
		}
		idx := p.Index(n)
		if idx < 0 {
			return nil, false
		}
		rev = append(rev, idx)
		n = p
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path, true
}

// nodeAt resolves a child-index path against root. Returns nil when the
// path runs off the tree.
func nodeAt(root *dom.Node, path []int) *dom.Node {
	n := root
	for _, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			return nil
		}
		n = n.Children[idx]
	}
	return n
}

// encodeOps converts patch ops to wire form relative to the document root.
// Ops whose target fell out of the tree since the patch are dropped. So are
// ops that landed inside a subtree inserted or replaced in the same batch:
// the ancestor's HTML is rendered here, after every nested component cycle
// has run, so it already carries that content in final form and sending the
// inner op again would duplicate it on the client.
func encodeOps(root *dom.Node, ops []vdom.Op) []WireOp {
	inserted := make(map[*dom.Node]bool)
	for _, op := range ops {
		if op.Node != nil && (op.Kind == vdom.OpInsertNode || op.Kind == vdom.OpReplaceNode) {
			inserted[op.Node] = true
		}
	}

	out := make([]WireOp, 0, len(ops))
	for _, op := range ops {
		if withinInserted(inserted, op.Target) {
			continue
		}
		path, ok := nodePath(root, op.Target)
		if !ok {
			continue
		}
		w := WireOp{
			Op:    op.Kind.String(),
			Path:  path,
			Index: op.Index,
			Key:   op.Key,
			Value: op.Value,
		}
		if op.Node != nil {
			w.HTML = dom.Render(op.Node)
		}
		out = append(out, w)
	}
	return out
}

// withinInserted reports whether n is, or sits under, a node inserted in the
// current batch.
func withinInserted(inserted map[*dom.Node]bool, n *dom.Node) bool {
	for ; n != nil; n = n.Parent {
		if inserted[n] {
			return true
		}
	}
	return false
}

func marshalFrame(v any) ([]byte, error) {
	return json.Marshal(v)
}
