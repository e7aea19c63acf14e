package vdom

import (
	"testing"

	"github.com/iqwerty/iq/pkg/dom"
)

func mustParse(t *testing.T, markup string) *dom.Node {
	t.Helper()
	root := dom.NewElement("host")
	if err := dom.ParseFragmentInto(root, markup); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestPatchIdenticalTreesYieldsNoOps(t *testing.T) {
	committed := mustParse(t, `<div class="row"><span>hi</span></div>`)
	incoming := mustParse(t, `<div class="row"><span>hi</span></div>`)

	ops := Patch(committed, incoming, nil)
	if len(ops) != 0 {
		t.Errorf("got %d ops for identical trees, want 0: %v", len(ops), ops)
	}
}

func TestPatchTextChangeKeepsSiblings(t *testing.T) {
	committed := mustParse(t, `<p>old</p><p>same</p>`)
	incoming := mustParse(t, `<p>new</p><p>same</p>`)

	first := committed.Children[0]
	second := committed.Children[1]
	secondText := second.Children[0]

	ops := Patch(committed, incoming, nil)

	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1: %v", len(ops), ops)
	}
	if ops[0].Kind != OpSetText {
		t.Errorf("op = %v, want SetText", ops[0].Kind)
	}
	if ops[0].Value != "new" {
		t.Errorf("op value = %q, want %q", ops[0].Value, "new")
	}

	// Untouched nodes keep their identity.
	if committed.Children[0] != first {
		t.Error("first <p> was replaced")
	}
	if committed.Children[1] != second || second.Children[0] != secondText {
		t.Error("untouched sibling lost identity")
	}
	if committed.Children[0].TextContent() != "new" {
		t.Errorf("text = %q, want new", committed.Children[0].TextContent())
	}
}

func TestPatchAttrChanges(t *testing.T) {
	committed := mustParse(t, `<div class="a" id="x"></div>`)
	incoming := mustParse(t, `<div class="b" title="t"></div>`)

	div := committed.Children[0]
	ops := Patch(committed, incoming, nil)

	if div != committed.Children[0] {
		t.Fatal("attr-only change replaced the element")
	}
	if v, _ := div.Attr("class"); v != "b" {
		t.Errorf("class = %q, want b", v)
	}
	if v, _ := div.Attr("title"); v != "t" {
		t.Errorf("title = %q, want t", v)
	}
	if _, ok := div.Attr("id"); ok {
		t.Error("stale id attribute survived")
	}

	kinds := map[OpKind]int{}
	for _, op := range ops {
		kinds[op.Kind]++
	}
	if kinds[OpSetAttr] != 2 || kinds[OpRemoveAttr] != 1 {
		t.Errorf("ops = %v, want 2 SetAttr + 1 RemoveAttr", kinds)
	}
}

func TestPatchTagChangeReplacesWholesale(t *testing.T) {
	committed := mustParse(t, `<span>x</span>`)
	incoming := mustParse(t, `<em>x</em>`)

	inNode := incoming.Children[0]
	ops := Patch(committed, incoming, nil)

	if len(ops) != 1 || ops[0].Kind != OpReplaceNode {
		t.Fatalf("ops = %v, want one ReplaceNode", ops)
	}
	if committed.Children[0] != inNode {
		t.Error("incoming node was not moved into place")
	}
	if committed.Children[0].Parent != committed {
		t.Error("moved node has wrong parent")
	}
}

func TestPatchAppendsAndRemoves(t *testing.T) {
	committed := mustParse(t, `<li>1</li>`)
	incoming := mustParse(t, `<li>1</li><li>2</li><li>3</li>`)

	ops := Patch(committed, incoming, nil)
	if len(committed.Children) != 3 {
		t.Fatalf("len = %d after grow, want 3", len(committed.Children))
	}
	inserts := 0
	for _, op := range ops {
		if op.Kind == OpInsertNode {
			inserts++
		}
	}
	if inserts != 2 {
		t.Errorf("got %d InsertNode ops, want 2", inserts)
	}

	shrunk := mustParse(t, `<li>1</li>`)
	ops = Patch(committed, shrunk, nil)
	if len(committed.Children) != 1 {
		t.Fatalf("len = %d after shrink, want 1", len(committed.Children))
	}
	removes := 0
	for _, op := range ops {
		if op.Kind == OpRemoveNode {
			removes++
		}
	}
	if removes != 2 {
		t.Errorf("got %d RemoveNode ops, want 2", removes)
	}
}

func TestPatchSecondPassIsEmpty(t *testing.T) {
	committed := mustParse(t, `<ul><li>a</li></ul>`)
	first := mustParse(t, `<ul><li>a</li><li>b</li></ul>`)
	second := mustParse(t, `<ul><li>a</li><li>b</li></ul>`)

	Patch(committed, first, nil)
	ops := Patch(committed, second, nil)
	if len(ops) != 0 {
		t.Errorf("second identical pass produced %d ops: %v", len(ops), ops)
	}
}

func TestPatchDropsMetaOfRemovedNodes(t *testing.T) {
	meta := dom.NewMetaTable()
	committed := mustParse(t, `<span>a</span><span>b</span>`)
	incoming := mustParse(t, `<span>a</span>`)

	removed := committed.Children[1]
	meta.Ensure(removed).Inputs = []string{"x"}
	meta.Ensure(removed.Children[0])

	Patch(committed, incoming, meta)

	if meta.Len() != 0 {
		t.Errorf("meta.Len = %d after removal, want 0", meta.Len())
	}
}

func TestPatchForwardsBindingsAndInputs(t *testing.T) {
	meta := dom.NewMetaTable()
	committed := mustParse(t, `<input>`)
	incoming := mustParse(t, `<input>`)

	in := incoming.Children[0]
	in.SetProp("count", 5)
	meta.Set(in, &dom.Meta{Inputs: []string{"count"}})

	live := committed.Children[0]
	Patch(committed, incoming, meta)

	if v, ok := live.Prop("count"); !ok || v != 5 {
		t.Errorf("live prop count = %v, %v, want 5", v, ok)
	}
	m := meta.Get(live)
	if m == nil || len(m.Inputs) != 1 || m.Inputs[0] != "count" {
		t.Errorf("live meta = %+v, want Inputs [count]", m)
	}
	if meta.Get(in) != nil {
		t.Error("incoming node kept its meta record")
	}
}

func TestPatchSkipsReservedAttrs(t *testing.T) {
	committed := mustParse(t, `<button>go</button>`)
	incoming := mustParse(t, `<button iq:click="fire()" data-iq.count="1">go</button>`)

	ops := Patch(committed, incoming, nil)
	live := committed.Children[0]
	if _, ok := live.Attr("iq:click"); ok {
		t.Error("event binding attr copied to live tree")
	}
	if _, ok := live.Attr("data-iq.count"); ok {
		t.Error("input directive attr copied to live tree")
	}
	if len(ops) != 0 {
		t.Errorf("reserved attrs produced ops: %v", ops)
	}
}

func TestPatchStopsAtComponentBoundary(t *testing.T) {
	committed := mustParse(t, `<div><ticker-clock><p>rendered content</p></ticker-clock></div>`)
	// A parent re-render always produces the child host as an empty shell;
	// the child's content belongs to the child's own cycle.
	incoming := mustParse(t, `<div><ticker-clock class="big"></ticker-clock></div>`)

	host := committed.Children[0].Children[0]
	content := host.Children[0]

	ops := Patch(committed, incoming, nil)

	if len(host.Children) != 1 || host.Children[0] != content {
		t.Fatal("component content was clobbered by parent patch")
	}
	if v, _ := host.Attr("class"); v != "big" {
		t.Errorf("host class = %q, want big (attrs still reconcile)", v)
	}
	for _, op := range ops {
		if op.Kind == OpRemoveNode || op.Kind == OpReplaceNode {
			t.Errorf("structural op inside component boundary: %v", op)
		}
	}
}
