// Package vdom implements the diff/patch step of the render pipeline.
//
// Patch mutates a committed tree in place to match a freshly compiled
// incoming fragment, consuming the fragment's nodes. Reconciliation is
// single-pass and position-aligned: a node's identity across patches is its
// tree position, never a key. Nodes outside the changed region keep reference
// identity, which is what makes re-render cheap on the live tree.
//
// Every mutation is also recorded as an Op so callers can stream the change
// set (live preview protocol) or count it (metrics).
package vdom
