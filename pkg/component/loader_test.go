package component_test

import (
	"context"
	"testing"

	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/iqtest"
	"github.com/iqwerty/iq/pkg/observe"
	"github.com/iqwerty/iq/pkg/store"
	"github.com/iqwerty/iq/pkg/vdom"
)

type tickerClock struct {
	component.Base
	Seconds *observe.Value[int]
}

func newTickerRegistry(capture **tickerClock) *component.Registry {
	r := component.NewRegistry()
	r.MustRegister("ticker-clock", func(deps *component.Deps) component.Controller {
		c := &tickerClock{
			Base:    component.Base{Template: `<p>{{seconds}}</p>`},
			Seconds: observe.NewValue(7),
		}
		if capture != nil {
			*capture = c
		}
		return c
	})
	return r
}

func TestLoaderRendersComponentTemplate(t *testing.T) {
	doc := iqtest.Mount(t, newTickerRegistry(nil), `<ticker-clock></ticker-clock>`)

	if got := doc.Text("p"); got != "7" {
		t.Errorf("rendered text = %q, want 7", got)
	}
}

func TestCellWriteReRendersAutomatically(t *testing.T) {
	var clock *tickerClock
	doc := iqtest.Mount(t, newTickerRegistry(&clock), `<ticker-clock></ticker-clock>`)

	clock.Seconds.Set(8)

	if got := doc.Text("p"); got != "8" {
		t.Errorf("text = %q after Set, want 8", got)
	}
}

func TestUnchangedReloadProducesNoOps(t *testing.T) {
	doc := iqtest.Mount(t, newTickerRegistry(nil), `<ticker-clock></ticker-clock>`)
	doc.ResetPatches()

	doc.Reload()

	if n := doc.OpCount(); n != 0 {
		t.Errorf("unchanged reload produced %d ops, want 0: %v", n, doc.Patches)
	}
}

func TestCellChangePatchIsMinimal(t *testing.T) {
	var clock *tickerClock
	doc := iqtest.Mount(t, newTickerRegistry(&clock), `<ticker-clock></ticker-clock>`)

	p := doc.Query("p")
	doc.ResetPatches()

	clock.Seconds.Set(8)

	if n := doc.OpCount(); n != 1 {
		t.Fatalf("got %d ops, want exactly 1: %v", n, doc.Patches)
	}
	op := doc.Patches[0][0]
	if op.Kind != vdom.OpSetText || op.Value != "8" {
		t.Errorf("op = %+v, want SetText 8", op)
	}
	if doc.Query("p") != p {
		t.Error("the <p> element was replaced, not patched")
	}
}

func TestSettingSameValueDoesNotPatch(t *testing.T) {
	var clock *tickerClock
	doc := iqtest.Mount(t, newTickerRegistry(&clock), `<ticker-clock></ticker-clock>`)
	doc.ResetPatches()

	clock.Seconds.Set(7)

	if n := doc.OpCount(); n != 0 {
		t.Errorf("unchanged value produced %d ops: %v", n, doc.Patches)
	}
}

type clickCounter struct {
	component.Base
	N *observe.Value[int]
}

func (c *clickCounter) Add() { c.N.Update(func(n int) int { return n + 1 }) }

func newCounterFactory(deps *component.Deps) component.Controller {
	return &clickCounter{
		Base: component.Base{Template: `<button iq:click="add()">{{n}}</button>`},
		N:    observe.NewValue(0),
	}
}

func TestEventHandlerMutatesAndReRenders(t *testing.T) {
	r := component.NewRegistry()
	r.MustRegister("click-counter", newCounterFactory)
	doc := iqtest.Mount(t, r, `<click-counter></click-counter>`)

	btn := doc.Query("button")
	doc.Fire(btn, "click", nil)
	doc.Fire(btn, "click", nil)

	if got := doc.Text("button"); got != "2" {
		t.Errorf("button text = %q after two clicks, want 2", got)
	}
	if doc.Query("button") != btn {
		t.Error("button identity changed across re-renders")
	}
}

type numBox struct {
	component.Base
	Count *observe.Value[int]
}

type numPanel struct {
	component.Base
	Limit *observe.Value[int]
}

func TestInputPropagatesToChildController(t *testing.T) {
	var box *numBox
	r := component.NewRegistry()
	r.MustRegister("num-panel", func(deps *component.Deps) component.Controller {
		return &numPanel{
			Base:  component.Base{Template: `<num-box data-iq.count="limit"></num-box>`},
			Limit: observe.NewValue(5),
		}
	})
	r.MustRegister("num-box", func(deps *component.Deps) component.Controller {
		box = &numBox{
			Base:  component.Base{Template: `<em>{{count}}</em>`},
			Count: observe.NewValue(0),
		}
		return box
	})

	doc := iqtest.Mount(t, r, `<num-panel></num-panel>`)

	if box == nil {
		t.Fatal("nested component was never constructed")
	}
	if got := box.Count.Get(); got != 5 {
		t.Errorf("Count = %d, want 5 (input copied on first attachment)", got)
	}
	if got := doc.Text("em"); got != "5" {
		t.Errorf("child rendered %q, want 5", got)
	}
}

type outerShell struct {
	component.Base
	Label *observe.Value[string]
}

func TestParentReRenderKeepsChildState(t *testing.T) {
	var outer *outerShell
	r := component.NewRegistry()
	r.MustRegister("outer-shell", func(deps *component.Deps) component.Controller {
		outer = &outerShell{
			Base:  component.Base{Template: `<span>{{label}}</span><click-counter></click-counter>`},
			Label: observe.NewValue("a"),
		}
		return outer
	})
	r.MustRegister("click-counter", newCounterFactory)

	doc := iqtest.Mount(t, r, `<outer-shell></outer-shell>`)

	doc.Fire(doc.Query("button"), "click", nil)
	if got := doc.Text("button"); got != "1" {
		t.Fatalf("button = %q, want 1", got)
	}

	outer.Label.Set("b")

	if got := doc.Text("span"); got != "b" {
		t.Errorf("span = %q, want b", got)
	}
	if got := doc.Text("button"); got != "1" {
		t.Errorf("button = %q after parent re-render, want state kept at 1", got)
	}
}

type stateReader struct {
	component.Base
}

func (c *stateReader) Msg() any {
	v, ok := c.State().Get("msg")
	if !ok {
		return "(none)"
	}
	return v
}

func TestStoreKeySharedBetweenComponents(t *testing.T) {
	var first *stateReader
	r := component.NewRegistry()
	r.MustRegister("state-reader", func(deps *component.Deps) component.Controller {
		c := &stateReader{Base: component.Base{Template: `<p>{{msg()}}</p>`}}
		if first == nil {
			first = c
		}
		return c
	})

	st := store.New()
	doc := iqtest.Mount(t, r,
		`<state-reader></state-reader><state-reader></state-reader>`,
		iqtest.WithStore(st))

	ps := doc.QueryAll("p")
	if len(ps) != 2 {
		t.Fatalf("got %d <p>, want 2", len(ps))
	}
	for _, p := range ps {
		if p.TextContent() != "(none)" {
			t.Errorf("initial text = %q", p.TextContent())
		}
	}

	// A write through one component's view re-renders every component that
	// read the key.
	first.State().Update("msg", "hello")

	for i, p := range doc.QueryAll("p") {
		if p.TextContent() != "hello" {
			t.Errorf("component %d text = %q, want hello", i, p.TextContent())
		}
	}
}

type toggleShell struct {
	component.Base
	Show *observe.Value[bool]
}

func TestRemovedChildStopsStoreReRenders(t *testing.T) {
	var shell *toggleShell
	r := component.NewRegistry()
	r.MustRegister("toggle-shell", func(deps *component.Deps) component.Controller {
		shell = &toggleShell{
			Base: component.Base{
				Template: `<div data-iq.if="show"><state-reader></state-reader></div>`,
			},
			Show: observe.NewValue(true),
		}
		return shell
	})
	r.MustRegister("state-reader", func(deps *component.Deps) component.Controller {
		return &stateReader{Base: component.Base{Template: `<p>{{msg()}}</p>`}}
	})

	st := store.New()
	doc := iqtest.Mount(t, r, `<toggle-shell></toggle-shell>`, iqtest.WithStore(st))

	if doc.Query("p") == nil {
		t.Fatal("child not mounted while condition is true")
	}

	shell.Show.Set(false)
	if doc.Query("p") != nil {
		t.Fatal("child still in tree after condition flipped")
	}

	// The child's mount died with its host: a store write must not re-render
	// the detached subtree.
	doc.ResetPatches()
	st.Update("msg", "hello")
	if n := doc.OpCount(); n != 0 {
		t.Errorf("store write produced %d ops on a removed component: %v", n, doc.Patches)
	}
}

func TestUnknownTagSkippedSiblingsRender(t *testing.T) {
	doc := iqtest.Mount(t, newTickerRegistry(nil),
		`<mystery-widget></mystery-widget><ticker-clock></ticker-clock>`)

	if got := doc.Text("p"); got != "7" {
		t.Errorf("known sibling text = %q, want 7", got)
	}
	mystery := doc.Query("mystery-widget")
	if mystery == nil {
		t.Fatal("unknown element removed from tree")
	}
	if len(mystery.Children) != 0 {
		t.Error("unknown element was rendered")
	}
}

type hookRecorder struct {
	component.Base
	Tick  *observe.Value[int]
	calls *[]string
}

func (h *hookRecorder) OnChange() { *h.calls = append(*h.calls, "change") }

func (h *hookRecorder) OnMount() { *h.calls = append(*h.calls, "mount") }

func TestHookOrderAndFirstMountFlag(t *testing.T) {
	var calls []string
	var rec *hookRecorder
	r := component.NewRegistry()
	r.MustRegister("hook-recorder", func(deps *component.Deps) component.Controller {
		rec = &hookRecorder{
			Base:  component.Base{Template: `<p>{{tick}}</p>`},
			Tick:  observe.NewValue(0),
			calls: &calls,
		}
		return rec
	})

	iqtest.Mount(t, r, `<hook-recorder></hook-recorder>`)

	want := []string{"change", "mount"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("first mount calls = %v, want %v", calls, want)
	}

	calls = nil
	rec.Tick.Set(1)
	if len(calls) != 1 || calls[0] != "change" {
		t.Errorf("re-render calls = %v, want [change] only", calls)
	}
}

type lazyPane struct {
	component.Base
}

func (c *lazyPane) OnMount() {
	if err := c.LoadTemplate(context.Background(), "pane.html"); err != nil {
		return
	}
	c.Notify()
}

func TestLoadTemplateThenNotify(t *testing.T) {
	r := component.NewRegistry()
	r.MustRegister("lazy-pane", func(deps *component.Deps) component.Controller {
		return &lazyPane{Base: component.Base{Template: `<p>loading</p>`}}
	})

	src := iqtest.MapSource{"pane.html": `<p>loaded</p>`}
	doc := iqtest.Mount(t, r, `<lazy-pane></lazy-pane>`, iqtest.WithSource(src))

	if got := doc.Text("p"); got != "loaded" {
		t.Errorf("text = %q, want loaded (fetched template rendered)", got)
	}
}

func TestRegistryRejectsBadTags(t *testing.T) {
	r := component.NewRegistry()
	if err := r.Register("nodash", newCounterFactory); err == nil {
		t.Error("tag without dash accepted")
	}
	if err := r.Register("click-counter", newCounterFactory); err != nil {
		t.Fatalf("valid tag rejected: %v", err)
	}
	if err := r.Register("click-counter", newCounterFactory); err == nil {
		t.Error("duplicate tag accepted")
	}
}

func TestTagToType(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"ticker-clock", "TickerClock"},
		{"a-b-c", "ABC"},
		{"num-box", "NumBox"},
	}
	for _, tt := range tests {
		if got := component.TagToType(tt.tag); got != tt.want {
			t.Errorf("TagToType(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
