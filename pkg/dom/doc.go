// Package dom provides the in-memory document tree that iq renders into.
//
// A Node is either an element, a text node, or a comment. Nodes carry ordered
// string attributes, typed properties (set by component inputs), children with
// parent backreferences, and event listeners. Trees are built by hand or
// parsed from markup with ParseFragment.
//
// Binding metadata (input names, local scope bindings, controller
// backreference) is never stored on the nodes themselves; it lives in an
// explicit MetaTable side-map keyed by node identity.
package dom
