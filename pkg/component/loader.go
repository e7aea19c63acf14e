package component

import (
	"fmt"
	"log/slog"

	ierrors "github.com/iqwerty/iq/internal/errors"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/observe"
	"github.com/iqwerty/iq/pkg/store"
	"github.com/iqwerty/iq/pkg/template"
	"github.com/iqwerty/iq/pkg/templates"
	"github.com/iqwerty/iq/pkg/vdom"
)

// Loader drives the discovery/compile/patch cycle. One Loader owns one
// document; it keeps the controller mounts, the binding metadata table, and
// the re-render wiring for every component under the trees it has loaded.
type Loader struct {
	registry *Registry
	store    *store.Store
	source   templates.Source
	meta     *dom.MetaTable
	log      *slog.Logger
	observer func(host *dom.Node, ops []vdom.Op)

	mounts map[*dom.Node]*mount
	roots  map[*dom.Node]bool
}

// mount is the per-host-element controller bookkeeping.
type mount struct {
	ctrl  Controller
	state *StateView
	first bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStore attaches the global state store injected into controllers.
func WithStore(s *store.Store) LoaderOption {
	return func(l *Loader) { l.store = s }
}

// WithSource attaches the template source used by Base.LoadTemplate.
func WithSource(src templates.Source) LoaderOption {
	return func(l *Loader) { l.source = src }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// WithObserver registers a callback invoked after every committed patch with
// the host element and the ops that were applied. The live server streams
// and counts patches through it.
func WithObserver(fn func(host *dom.Node, ops []vdom.Op)) LoaderOption {
	return func(l *Loader) { l.observer = fn }
}

// NewLoader creates a loader over the given registry.
func NewLoader(registry *Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		meta:     dom.NewMetaTable(),
		log:      slog.Default(),
		mounts:   make(map[*dom.Node]*mount),
		roots:    make(map[*dom.Node]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Meta exposes the loader's binding metadata table.
func (l *Loader) Meta() *dom.MetaTable {
	return l.meta
}

// Load runs a full discovery/compile/patch cycle for every component element
// under (and including) root. It is both the initial entry point and the
// dynamic one: root may be a detached subtree that is attached to the
// document later.
func (l *Loader) Load(root *dom.Node) {
	if root == nil {
		return
	}
	l.roots[treeRoot(root)] = true

	if root.IsComponent() {
		l.cycle(root)
	} else {
		for _, host := range childComponents(root) {
			l.cycle(host)
		}
	}
	l.prune()
}

// cycle renders one component element: reuse or create its controller,
// compile its template, patch the result into the host, recurse into nested
// component elements of the freshly patched content, then fire hooks.
// The host's live tree is patched exactly once per cycle.
func (l *Loader) cycle(host *dom.Node) {
	m := l.mounts[host]
	if m == nil {
		var err error
		m, err = l.instantiate(host)
		if err != nil {
			// Fatal for this element only: it stays unrendered and is not
			// retried, siblings are unaffected.
			l.log.Error("component mount failed",
				"tag", host.Tag, "type", TagToType(host.Tag), "err", err)
			return
		}
		l.mounts[host] = m
	}

	b := m.ctrl.base()
	frag, err := template.New(m.ctrl, l.meta, l.log).Compile(b.Template)
	if err != nil {
		// Parse failure: keep the last-good content.
		l.log.Error("template compile failed", "tag", host.Tag, "err", err)
		return
	}

	ops := vdom.Patch(host, frag, l.meta)
	if l.observer != nil && len(ops) > 0 {
		l.observer(host, ops)
	}

	// Nested components resolve on their own cycles; the boundary-aware
	// patcher left their content alone.
	for _, child := range childComponents(host) {
		l.cycle(child)
	}

	if c, ok := m.ctrl.(Changer); ok {
		c.OnChange()
	}
	if m.first {
		m.first = false
		if mo, ok := m.ctrl.(Mounter); ok {
			mo.OnMount()
		}
	}
}

// instantiate constructs the controller for a first-seen host element.
func (l *Loader) instantiate(host *dom.Node) (m *mount, err error) {
	factory, ok := l.registry.Lookup(host.Tag)
	if !ok {
		return nil, ierrors.Newf("E101", "tag %q (expected type %s)", host.Tag, TagToType(host.Tag))
	}

	deps := &Deps{
		Element: host,
		Source:  l.source,
	}
	// A re-render may detach nested component hosts (a conditional flipping
	// off, a shrinking loop); their mounts die with them.
	deps.Notify = func() {
		l.cycle(host)
		l.prune()
	}
	if l.store != nil {
		deps.State = newStateView(l.store, deps.Notify)
	}

	ctrl, err := construct(factory, deps)
	if err != nil {
		return nil, err
	}

	// Inject the dependency bag into the base contract.
	ctrl.base().deps = *deps

	// Copy down input values the parent already set on the element.
	for _, ierr := range copyInputs(host, ctrl) {
		l.log.Warn("input copy failed", "tag", host.Tag, "err", ierr)
	}

	// From here on, committed writes to the controller's cells re-render
	// this element's subtree.
	observe.Observe(ctrl, deps.Notify)

	return &mount{ctrl: ctrl, state: deps.State, first: true}, nil
}

// construct runs the factory with panic containment.
func construct(factory Factory, deps *Deps) (ctrl Controller, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctrl, err = nil, ierrors.Wrap("E102", fmt.Errorf("factory panicked: %v", r))
		}
	}()
	ctrl = factory(deps)
	if ctrl == nil {
		return nil, ierrors.Newf("E102", "factory returned nil")
	}
	if ctrl.base() == nil {
		return nil, ierrors.Newf("E103", "controller %T has a nil Base", ctrl)
	}
	return ctrl, nil
}

// childComponents collects the component elements below n, stopping descent
// at each component boundary: nested components belong to their own cycles.
func childComponents(n *dom.Node) []*dom.Node {
	var out []*dom.Node
	var walk func(*dom.Node)
	walk = func(p *dom.Node) {
		for _, c := range p.Children {
			if c.IsComponent() {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// treeRoot walks to the top of n's tree.
func treeRoot(n *dom.Node) *dom.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// prune drops mounts whose host element no longer belongs to any tree this
// loader has loaded; their controllers are gone with them (there is no
// teardown hook). State subscriptions are released so removed components
// stop re-rendering on store writes.
func (l *Loader) prune() {
	for host, m := range l.mounts {
		if l.roots[treeRoot(host)] {
			continue
		}
		if m.state != nil {
			m.state.release()
		}
		delete(l.mounts, host)
	}
}
