package template

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/observe"
)

type fixture struct {
	Items   []int
	Names   []string
	Ready   bool
	Count   *observe.Value[int]
	Picked  []any
	Message string
}

func (f *fixture) Pick(v any) { f.Picked = append(f.Picked, v) }

func (f *fixture) Bump() { f.Count.Set(f.Count.Get() + 1) }

func newFixture() *fixture {
	return &fixture{
		Items: []int{3, 1, 2},
		Names: []string{"ada", "bob"},
		Ready: true,
		Count: observe.NewValue(0),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func compile(t *testing.T, owner any, meta *dom.MetaTable, markup string) *dom.Node {
	t.Helper()
	if meta == nil {
		meta = dom.NewMetaTable()
	}
	frag, err := New(owner, meta, quietLogger()).Compile(markup)
	if err != nil {
		t.Fatalf("Compile(%q): %v", markup, err)
	}
	return frag
}

func TestCompileInterpolatesText(t *testing.T) {
	f := newFixture()
	f.Count.Set(7)

	frag := compile(t, f, nil, `<p>{{count}} ticks</p>`)
	got := dom.RenderChildren(frag)
	want := `<p>7 ticks</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileParseError(t *testing.T) {
	// The HTML parser is forgiving; drive the error path through Compile's
	// contract instead: a valid parse never errors.
	if _, err := New(newFixture(), dom.NewMetaTable(), quietLogger()).Compile(`<p>fine</p>`); err != nil {
		t.Fatalf("valid markup errored: %v", err)
	}
}

func TestCompileForPreservesIterationOrder(t *testing.T) {
	f := newFixture() // Items: [3 1 2]

	frag := compile(t, f, nil, `<ul><li data-iq.for="x of items">{{x}}</li></ul>`)
	got := dom.RenderChildren(frag)
	want := `<ul><li>3</li><li>1</li><li>2</li></ul>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileForStripsDirectiveFromClones(t *testing.T) {
	frag := compile(t, newFixture(), nil, `<li data-iq.for="x of names">{{x}}</li>`)
	for _, li := range frag.Children {
		if _, ok := li.Attr("data-iq.for"); ok {
			t.Error("clone still carries the for directive")
		}
	}
}

func TestCompileForEmptyIterable(t *testing.T) {
	f := newFixture()
	f.Items = nil

	frag := compile(t, f, nil, `<div><span data-iq.for="x of items">{{x}}</span></div>`)
	got := dom.RenderChildren(frag)
	if got != `<div></div>` {
		t.Errorf("got %q, want empty div", got)
	}
}

func TestCompileForBadIterableDetachesNode(t *testing.T) {
	frag := compile(t, newFixture(), nil, `<div><span data-iq.for="x of missing">{{x}}</span></div>`)
	got := dom.RenderChildren(frag)
	if got != `<div></div>` {
		t.Errorf("got %q, want node removed on iterable failure", got)
	}
}

func TestCompileForMalformedDirective(t *testing.T) {
	frag := compile(t, newFixture(), nil, `<div><span data-iq.for="items">{{x}}</span></div>`)
	got := dom.RenderChildren(frag)
	if got != `<div></div>` {
		t.Errorf("got %q, want node removed on malformed directive", got)
	}
}

func TestCompileIfFalseLeavesPlaceholder(t *testing.T) {
	f := newFixture()
	f.Ready = false

	frag := compile(t, f, nil, `<div><p data-iq.if="ready">yes</p><p>always</p></div>`)
	div := frag.Children[0]

	if len(div.Children) != 2 {
		t.Fatalf("got %d children, want 2 (placeholder keeps positions)", len(div.Children))
	}
	if div.Children[0].Kind != dom.KindComment {
		t.Errorf("child 0 = %v, want comment placeholder", div.Children[0].Kind)
	}
	if div.Children[1].TextContent() != "always" {
		t.Errorf("sibling moved: %q", div.Children[1].TextContent())
	}
}

func TestCompileIfTrueKeepsElement(t *testing.T) {
	frag := compile(t, newFixture(), nil, `<p data-iq.if="ready">yes</p>`)
	got := dom.RenderChildren(frag)
	if got != `<p>yes</p>` {
		t.Errorf("got %q, want %q", got, `<p>yes</p>`)
	}
}

func TestCompileIfPlaceholderAlignsAcrossRenders(t *testing.T) {
	// Toggling the condition only swaps one node; siblings stay aligned
	// because the placeholder holds the position.
	f := newFixture()
	markup := `<div><p data-iq.if="ready">yes</p><span>tail</span></div>`

	f.Ready = true
	on := compile(t, f, nil, markup)
	f.Ready = false
	off := compile(t, f, nil, markup)

	onDiv, offDiv := on.Children[0], off.Children[0]
	if len(onDiv.Children) != len(offDiv.Children) {
		t.Fatalf("child counts differ: %d vs %d", len(onDiv.Children), len(offDiv.Children))
	}
	if offDiv.Children[1].Tag != "span" || onDiv.Children[1].Tag != "span" {
		t.Error("tail sibling not at the same position in both renders")
	}
}

func TestCompileEventBinding(t *testing.T) {
	f := newFixture()
	meta := dom.NewMetaTable()

	frag := compile(t, f, meta, `<button iq:click="bump()">go</button>`)
	btn := frag.Children[0]

	if !btn.HasListener("click") {
		t.Fatal("no click listener bound")
	}

	btn.Dispatch(&dom.Event{Type: "click", Target: btn})
	btn.Dispatch(&dom.Event{Type: "click", Target: btn})
	if f.Count.Get() != 2 {
		t.Errorf("Count = %d after two clicks, want 2", f.Count.Get())
	}
}

func TestCompileEventSeesLoopVariable(t *testing.T) {
	f := newFixture()
	meta := dom.NewMetaTable()

	frag := compile(t, f, meta, `<li data-iq.for="n of names" iq:click="pick(n)">{{n}}</li>`)
	if len(frag.Children) != 2 {
		t.Fatalf("got %d items, want 2", len(frag.Children))
	}

	second := frag.Children[1]
	second.Dispatch(&dom.Event{Type: "click", Target: second})

	if len(f.Picked) != 1 || f.Picked[0] != "bob" {
		t.Errorf("Picked = %v, want [bob]", f.Picked)
	}
}

func TestCompileEventSeesEventVar(t *testing.T) {
	f := newFixture()
	frag := compile(t, f, nil, `<button iq:click="pick($event.type)">go</button>`)
	btn := frag.Children[0]

	btn.Dispatch(&dom.Event{Type: "click", Target: btn})
	if len(f.Picked) != 1 || f.Picked[0] != "click" {
		t.Errorf("Picked = %v, want [click]", f.Picked)
	}
}

func TestCompileInputRecordsMetaAndProp(t *testing.T) {
	f := newFixture()
	f.Count.Set(41)
	meta := dom.NewMetaTable()

	frag := compile(t, f, meta, `<ticker-clock data-iq.count="count + 1"></ticker-clock>`)
	host := frag.Children[0]

	v, ok := host.Prop("count")
	if !ok {
		t.Fatal("input prop not set")
	}
	if v != float64(42) {
		t.Errorf("prop = %v (%T), want 42", v, v)
	}

	m := meta.Get(host)
	if m == nil || len(m.Inputs) != 1 || m.Inputs[0] != "count" {
		t.Errorf("meta = %+v, want Inputs [count]", m)
	}
	if m != nil && m.Owner != f {
		t.Error("meta owner is not the compiling controller")
	}
}

func TestCompileAttrInterpolation(t *testing.T) {
	f := newFixture()
	f.Message = "row-3"

	frag := compile(t, f, nil, `<div class="{{message}}" id="static"></div>`)
	div := frag.Children[0]

	if v, _ := div.Attr("class"); v != "row-3" {
		t.Errorf("class = %q, want row-3", v)
	}
	if v, _ := div.Attr("id"); v != "static" {
		t.Errorf("id = %q, want static", v)
	}
}

func TestCompileFailSoftInterpolation(t *testing.T) {
	frag := compile(t, newFixture(), nil, `<p>{{nope}} and {{message}}</p>`)
	got := dom.RenderChildren(frag)
	// Failing binding renders empty, the rest of the template still works.
	if !strings.Contains(got, "and") {
		t.Errorf("got %q, want the rest of the text preserved", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("got %q, delimiters leaked", got)
	}
}

func TestCompileNestedFor(t *testing.T) {
	type grid struct {
		Rows [][]int
	}
	g := &grid{Rows: [][]int{{1, 2}, {3}}}

	frag := compile(t, g, nil,
		`<div data-iq.for="row of rows"><span data-iq.for="cell of row">{{cell}}</span></div>`)
	got := dom.RenderChildren(frag)
	want := `<div><span>1</span><span>2</span></div><div><span>3</span></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileDoesNotMutateSourceMarkup(t *testing.T) {
	f := newFixture()
	markup := `<li data-iq.for="x of items">{{x}}</li>`

	first := compile(t, f, nil, markup)
	f.Items = []int{9}
	second := compile(t, f, nil, markup)

	if len(first.Children) != 3 {
		t.Errorf("first render has %d items, want 3", len(first.Children))
	}
	if len(second.Children) != 1 {
		t.Errorf("second render has %d items, want 1", len(second.Children))
	}
}
