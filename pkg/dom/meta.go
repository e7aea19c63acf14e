package dom

// Meta is the per-node binding metadata record: which inputs were applied to
// the node, which local bindings an iteration directive put in scope for it,
// and which controller owns it.
type Meta struct {
	// Inputs are the input names applied to this node (property assignments,
	// not string attributes).
	Inputs []string

	// Scope holds local bindings introduced by iteration directives,
	// visible to this node and its descendants.
	Scope map[string]any

	// Owner is the controller the node belongs to.
	Owner any
}

// clone returns a shallow copy; Scope shares the underlying map since scope
// frames are never mutated after compilation.
func (m *Meta) clone() *Meta {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// MetaTable is an explicit side-map from node identity to binding metadata.
// Metadata is deliberately not stored on Node so that externally-owned trees
// never carry hidden framework state.
type MetaTable struct {
	m map[*Node]*Meta
}

// NewMetaTable creates an empty metadata table.
func NewMetaTable() *MetaTable {
	return &MetaTable{m: make(map[*Node]*Meta)}
}

// Get returns the metadata record for n, or nil.
func (t *MetaTable) Get(n *Node) *Meta {
	return t.m[n]
}

// Ensure returns the metadata record for n, creating it if absent.
func (t *MetaTable) Ensure(n *Node) *Meta {
	if m, ok := t.m[n]; ok {
		return m
	}
	m := &Meta{}
	t.m[n] = m
	return m
}

// Set installs a metadata record for n.
func (t *MetaTable) Set(n *Node, m *Meta) {
	if m == nil {
		delete(t.m, n)
		return
	}
	t.m[n] = m
}

// Delete removes n's metadata record.
func (t *MetaTable) Delete(n *Node) {
	delete(t.m, n)
}

// Forward moves src's metadata record onto dst as a full overwrite.
// A stale record on dst is discarded, never merged: metadata from a previous
// occupant of a tree position must not leak into the new occupant.
func (t *MetaTable) Forward(dst, src *Node) {
	if m, ok := t.m[src]; ok {
		t.m[dst] = m
		delete(t.m, src)
		return
	}
	delete(t.m, dst)
}

// Drop removes the metadata records of n and all of its descendants.
func (t *MetaTable) Drop(n *Node) {
	n.Walk(func(c *Node) bool {
		delete(t.m, c)
		return true
	})
}

// LocalScope collects the iteration bindings in effect for n by walking from
// the root down to n. Inner frames shadow outer ones. Returns nil when no
// bindings are in scope.
func (t *MetaTable) LocalScope(n *Node) map[string]any {
	var chain []*Meta
	for c := n; c != nil; c = c.Parent {
		if m := t.m[c]; m != nil && len(m.Scope) > 0 {
			chain = append(chain, m)
		}
	}
	if len(chain) == 0 {
		return nil
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Scope {
			out[k] = v
		}
	}
	return out
}

// Len returns the number of records in the table.
func (t *MetaTable) Len() int {
	return len(t.m)
}
