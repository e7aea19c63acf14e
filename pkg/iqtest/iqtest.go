package iqtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/store"
	"github.com/iqwerty/iq/pkg/templates"
	"github.com/iqwerty/iq/pkg/vdom"
)

// Doc is a mounted test document.
type Doc struct {
	t      *testing.T
	Root   *dom.Node
	Loader *component.Loader

	// Patches records the ops of every committed patch, in order.
	Patches [][]vdom.Op
}

type options struct {
	store  *store.Store
	source templates.Source
	logger *slog.Logger
}

// Option configures Mount.
type Option func(*options)

// WithStore attaches a shared state store.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithSource attaches a template source.
func WithSource(src templates.Source) Option {
	return func(o *options) { o.source = src }
}

// WithLogger overrides the test logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// Mount parses markup into a document, loads its components, and returns
// the live document. Fails the test on unparseable markup.
func Mount(t *testing.T, registry *component.Registry, markup string, opts ...Option) *Doc {
	t.Helper()

	o := options{logger: slog.New(slog.NewTextHandler(testWriter{t}, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	root := dom.NewElement("body")
	if err := dom.ParseFragmentInto(root, markup); err != nil {
		t.Fatalf("parse markup: %v", err)
	}

	d := &Doc{t: t, Root: root}

	loaderOpts := []component.LoaderOption{
		component.WithLogger(o.logger),
		component.WithObserver(func(_ *dom.Node, ops []vdom.Op) {
			d.Patches = append(d.Patches, ops)
		}),
	}
	if o.store != nil {
		loaderOpts = append(loaderOpts, component.WithStore(o.store))
	}
	if o.source != nil {
		loaderOpts = append(loaderOpts, component.WithSource(o.source))
	}

	d.Loader = component.NewLoader(registry, loaderOpts...)
	d.Loader.Load(root)
	return d
}

// Reload runs another full load cycle over the document.
func (d *Doc) Reload() {
	d.Loader.Load(d.Root)
}

// Fire dispatches an event at the target node and lets any re-renders run.
func (d *Doc) Fire(target *dom.Node, event string, detail map[string]any) {
	d.t.Helper()
	if target == nil {
		d.t.Fatalf("Fire: nil target for %q", event)
	}
	target.Dispatch(&dom.Event{Type: event, Target: target, Detail: detail})
}

// Query returns the first element with the given tag, or nil.
func (d *Doc) Query(tag string) *dom.Node {
	return d.Root.Find(func(n *dom.Node) bool {
		return n.Kind == dom.KindElement && n.Tag == tag
	})
}

// QueryAll returns every element with the given tag, in document order.
func (d *Doc) QueryAll(tag string) []*dom.Node {
	return d.Root.FindAll(func(n *dom.Node) bool {
		return n.Kind == dom.KindElement && n.Tag == tag
	})
}

// Text returns the text content of the first element with the given tag.
// Fails the test when no such element exists.
func (d *Doc) Text(tag string) string {
	d.t.Helper()
	n := d.Query(tag)
	if n == nil {
		d.t.Fatalf("Text: no <%s> in document:\n%s", tag, d.HTML())
	}
	return n.TextContent()
}

// HTML returns the document serialized as markup.
func (d *Doc) HTML() string {
	return dom.RenderChildren(d.Root)
}

// OpCount returns the total number of ops across all recorded patches.
func (d *Doc) OpCount() int {
	total := 0
	for _, ops := range d.Patches {
		total += len(ops)
	}
	return total
}

// ResetPatches clears the recorded patches, so a test can assert on the ops
// of its next action alone.
func (d *Doc) ResetPatches() {
	d.Patches = nil
}

// ExpectContains asserts that html contains substr.
func ExpectContains(t *testing.T, html, substr string) {
	t.Helper()
	if !strings.Contains(html, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, html)
	}
}

// ExpectNotContains asserts that html does not contain substr.
func ExpectNotContains(t *testing.T, html, substr string) {
	t.Helper()
	if strings.Contains(html, substr) {
		t.Errorf("expected output to not contain %q, got:\n%s", substr, html)
	}
}

// MapSource is an in-memory template source for tests.
type MapSource map[string]string

// Fetch implements templates.Source.
func (m MapSource) Fetch(_ context.Context, name string) (string, error) {
	markup, ok := m[name]
	if !ok {
		return "", fmt.Errorf("no template %q", name)
	}
	return markup, nil
}

// testWriter routes slog output through t.Log so it shows up with the
// failing test.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
