package component

import (
	"context"

	ierrors "github.com/iqwerty/iq/internal/errors"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/templates"
)

// Controller is implemented by every component controller. The unexported
// method forces controllers to embed Base, which reserves the framework's
// base contract at compile time instead of checking for name collisions at
// runtime.
type Controller interface {
	base() *Base
}

// Mounter is implemented by controllers that want a hook after their first
// committed render.
type Mounter interface {
	OnMount()
}

// Changer is implemented by controllers that want a hook after every
// committed render.
type Changer interface {
	OnChange()
}

// Deps is the dependency bag injected into component factories. Every member
// is optional from the controller's point of view; factories may ignore it
// entirely.
type Deps struct {
	// Element is the live host element the controller is mounted on.
	Element *dom.Node

	// Notify re-renders this element's subtree. It is what the loader binds
	// to the controller's observable cells.
	Notify func()

	// State is the global state accessor. Reads subscribe this component to
	// the key, so later writes re-render it.
	State *StateView

	// Source resolves dynamic template fetches for LoadTemplate.
	Source templates.Source
}

// Base carries the framework's per-controller contract: the mutable template
// and the injected dependencies. Embed it as the first field of a controller.
type Base struct {
	// Template is the component's markup, compiled on every render pass.
	Template string

	deps Deps
}

func (b *Base) base() *Base { return b }

// Element returns the live host element.
func (b *Base) Element() *dom.Node { return b.deps.Element }

// Notify triggers a re-render of this component's subtree.
func (b *Base) Notify() {
	if b.deps.Notify != nil {
		b.deps.Notify()
	}
}

// State returns the global state accessor, or nil when no store is attached.
func (b *Base) State() *StateView { return b.deps.State }

// LoadTemplate fetches template markup by name and assigns it to Template.
// It blocks until the fetch resolves; triggering a re-render afterwards is
// the caller's responsibility (typically by calling Notify). A fetch that is
// superseded by a newer one is not cancelled: whichever resolves last wins,
// even if the element has been removed meanwhile.
func (b *Base) LoadTemplate(ctx context.Context, name string) error {
	if b.deps.Source == nil {
		return ierrors.Newf("E202", "no template source configured")
	}
	markup, err := b.deps.Source.Fetch(ctx, name)
	if err != nil {
		return err
	}
	b.Template = markup
	return nil
}
