package template

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	ierrors "github.com/iqwerty/iq/internal/errors"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/expr"
)

// Compiler turns template markup into a compiled fragment bound to one
// controller. A Compiler is cheap; the loader creates one per render pass.
type Compiler struct {
	scope *expr.Scope
	meta  *dom.MetaTable
	owner any
	log   *slog.Logger
}

// New creates a compiler whose expressions resolve against owner (the
// controller). Binding metadata for compiled nodes is recorded in meta.
func New(owner any, meta *dom.MetaTable, log *slog.Logger) *Compiler {
	if log == nil {
		log = slog.Default()
	}
	if meta == nil {
		meta = dom.NewMetaTable()
	}
	return &Compiler{
		scope: expr.NewScope(owner),
		meta:  meta,
		owner: owner,
		log:   log,
	}
}

// Fragment returns an empty container for compiled content.
func Fragment() *dom.Node {
	return dom.NewElement("fragment")
}

// Compile parses markup and evaluates it against the controller, returning a
// fresh fragment. The input markup is never mutated. The only hard error is
// a markup parse failure; expression failures inside the template are
// fail-soft and logged.
func (c *Compiler) Compile(markup string) (*dom.Node, error) {
	frag := Fragment()
	if err := dom.ParseFragmentInto(frag, markup); err != nil {
		return nil, ierrors.Wrap("E201", err)
	}
	for _, kid := range snapshot(frag.Children) {
		c.compileNode(kid)
	}
	return frag, nil
}

// compileNode processes one node in place (or replaces it, for directives).
func (c *Compiler) compileNode(n *dom.Node) {
	switch n.Kind {
	case dom.KindText:
		text, err := expr.Interpolate(n.Text, c.scope)
		if err != nil {
			c.log.Warn("interpolation failed", "err", ierrors.Wrap("E002", err))
		}
		n.Text = text

	case dom.KindElement:
		if src, ok := n.Attr(dom.DirectivePrefix + dom.ForDirective); ok {
			c.expandFor(n, src)
			return
		}
		if src, ok := n.Attr(dom.DirectivePrefix + dom.IfDirective); ok {
			if !c.evalCondition(src) {
				// A neutral placeholder keeps sibling positions aligned
				// for the differ.
				placeholder := dom.NewComment("iq:" + dom.IfDirective)
				if n.Parent != nil {
					n.Parent.ReplaceChild(n, placeholder)
				}
				return
			}
			// The directive is spent; it must not leak into the output.
			n.RemoveAttr(dom.DirectivePrefix + dom.IfDirective)
		}
		c.compileAttrs(n)
		for _, kid := range snapshot(n.Children) {
			c.compileNode(kid)
		}
	}
}

// compileAttrs resolves inputs, event bindings and plain attribute
// interpolation on an element.
func (c *Compiler) compileAttrs(n *dom.Node) {
	for _, a := range n.Attrs() {
		switch {
		case a.Key == dom.DirectivePrefix+dom.ForDirective,
			a.Key == dom.DirectivePrefix+dom.IfDirective:
			// Structural directives, handled by compileNode.

		case strings.HasPrefix(a.Key, dom.EventPrefix):
			c.bindEvent(n, strings.TrimPrefix(a.Key, dom.EventPrefix), a.Value)

		case strings.HasPrefix(a.Key, dom.DirectivePrefix):
			c.applyInput(n, strings.TrimPrefix(a.Key, dom.DirectivePrefix), a.Value)

		default:
			if !expr.HasInterpolation(a.Value) {
				continue
			}
			val, err := expr.Interpolate(a.Value, c.scope)
			if err != nil {
				c.log.Warn("attribute interpolation failed",
					"attr", a.Key, "err", ierrors.Wrap("E002", err))
			}
			// Write-skip: only rewrite when the computed value differs.
			if cur, _ := n.Attr(a.Key); cur != val {
				n.SetAttr(a.Key, val)
			}
		}
	}
}

// applyInput evaluates a typed input expression and assigns the result onto
// the node's property of the same name. The name is recorded in the node's
// binding metadata so the patcher can carry the property forward.
func (c *Compiler) applyInput(n *dom.Node, name, src string) {
	val, err := expr.EvalString(src, c.scope)
	if err != nil {
		c.log.Warn("input expression failed",
			"input", name, "err", ierrors.Wrap("E001", err))
		return
	}
	m := c.meta.Ensure(n)
	m.Owner = c.owner
	if !containsString(m.Inputs, name) {
		m.Inputs = append(m.Inputs, name)
	}
	n.SetProp(name, val)
}

// bindEvent registers a listener that evaluates the handler expression in a
// context of controller plus the local bindings in scope at the node plus
// $event. The context is rebuilt per dispatch, so nothing leaks between
// invocations.
func (c *Compiler) bindEvent(n *dom.Node, event, src string) {
	m := c.meta.Ensure(n)
	m.Owner = c.owner

	meta, owner, log := c.meta, c.owner, c.log
	n.On(event, func(ev *dom.Event) {
		s := expr.NewScope(owner)
		if locals := meta.LocalScope(ev.Target); locals != nil {
			s.Push(locals)
		}
		s.Push(map[string]any{dom.EventVar: ev})
		defer s.Pop()

		if _, err := expr.EvalString(src, s); err != nil {
			log.Warn("event handler failed",
				"event", event, "err", ierrors.Wrap("E001", err))
		}
	})
}

// evalCondition evaluates a conditional directive expression. Failures log
// and render as false, keeping the placeholder in the tree.
func (c *Compiler) evalCondition(src string) bool {
	v, err := expr.EvalString(src, c.scope)
	if err != nil {
		c.log.Warn("conditional directive failed", "err", ierrors.Wrap("E001", err))
		return false
	}
	return expr.Truthy(v)
}

// expandFor replaces a node bearing `data-iq.for="x of expr"` with one
// compiled clone per yielded item, in iteration order. Each clone gets a
// local binding x -> item visible to it and its descendants, and has the
// directive stripped so a later compile pass cannot re-expand it.
func (c *Compiler) expandFor(n *dom.Node, src string) {
	parent := n.Parent
	if parent == nil {
		return
	}
	idx := parent.Index(n)

	varName, iterSrc, ok := splitFor(src)
	if !ok {
		c.log.Warn("malformed for directive",
			"err", ierrors.Wrap("E004", fmt.Errorf("want %q, got %q", "var of expr", src)))
		n.Detach()
		return
	}

	val, err := expr.EvalString(iterSrc, c.scope)
	if err != nil {
		c.log.Warn("for directive iterable failed", "err", ierrors.Wrap("E003", err))
		n.Detach()
		return
	}

	n.Detach()
	for k, item := range iterate(val) {
		clone := n.Clone()
		clone.RemoveAttr(dom.DirectivePrefix + dom.ForDirective)

		m := c.meta.Ensure(clone)
		m.Owner = c.owner
		m.Scope = map[string]any{varName: item}

		parent.InsertAt(idx+k, clone)

		c.scope.Push(m.Scope)
		c.compileNode(clone)
		c.scope.Pop()
	}
}

// splitFor parses "x of expr" directive syntax.
func splitFor(src string) (varName, iterSrc string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(src), " of ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	varName = strings.TrimSpace(parts[0])
	iterSrc = strings.TrimSpace(parts[1])
	if varName == "" || iterSrc == "" || strings.ContainsAny(varName, " \t") {
		return "", "", false
	}
	return varName, iterSrc, true
}

// iterate yields the items of an iterable value in source order: slices and
// arrays by index, strings by rune, maps by sorted key (maps have no source
// order; sorting keeps output deterministic).
func iterate(val any) []any {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		out := make([]any, 0, len(v))
		for _, r := range v {
			out = append(out, string(r))
		}
		return out
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, rv.MapIndex(k).Interface())
		}
		return out
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// snapshot copies a child list so structural edits during iteration are safe.
func snapshot(kids []*dom.Node) []*dom.Node {
	out := make([]*dom.Node, len(kids))
	copy(out, kids)
	return out
}
