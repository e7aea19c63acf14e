// Package iq provides the public API for the iq component framework.
//
// This is the recommended import for most applications:
//
//	import "github.com/iqwerty/iq"
//
// Usage:
//
//	type TickerClock struct {
//	    iq.Base
//	    Seconds *iq.Value[int]
//	}
//
//	registry := iq.NewRegistry()
//	registry.MustRegister("ticker-clock", func(deps *iq.Deps) iq.Controller {
//	    return &TickerClock{
//	        Base:    iq.Base{Template: "<p>{{seconds}}</p>"},
//	        Seconds: iq.NewValue(0),
//	    }
//	})
//
//	loader := iq.NewLoader(registry)
//	loader.Load(doc)
package iq

import (
	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/observe"
	"github.com/iqwerty/iq/pkg/store"
	"github.com/iqwerty/iq/pkg/templates"
	"github.com/iqwerty/iq/pkg/vdom"
)

// =============================================================================
// Document tree (re-export from pkg/dom)
// =============================================================================

// Node is one node of the server-side document tree.
type Node = dom.Node

// Event is a dispatched DOM-style event.
type Event = dom.Event

// NewElement creates an element node.
var NewElement = dom.NewElement

// NewText creates a text node.
var NewText = dom.NewText

// ParseFragment parses markup into a list of nodes.
var ParseFragment = dom.ParseFragment

// Render serializes a node back to markup.
var Render = dom.Render

// =============================================================================
// Observable cells (re-export from pkg/observe)
// =============================================================================

// Value is an observable scalar cell.
type Value[T any] = observe.Value[T]

// List is an observable slice cell.
type List[T any] = observe.List[T]

// Map is an observable map cell.
type Map[K comparable, V any] = observe.Map[K, V]

// NewValue creates an observable scalar cell.
//
// Example:
//
//	count := iq.NewValue(0)
//	count.Set(1)
//	v := count.Get() // 1
func NewValue[T any](initial T) *Value[T] {
	return observe.NewValue(initial)
}

// NewList creates an observable slice cell.
func NewList[T any](items ...T) *List[T] {
	return observe.NewList(items...)
}

// NewMap creates an observable map cell.
func NewMap[K comparable, V any](initial map[K]V) *Map[K, V] {
	return observe.NewMap(initial)
}

// =============================================================================
// Components (re-export from pkg/component)
// =============================================================================

// Controller is the interface every component controller satisfies by
// embedding Base.
type Controller = component.Controller

// Base is the embeddable component base: template, host element, state
// access, and manual re-render.
type Base = component.Base

// Deps is the dependency bag handed to factories.
type Deps = component.Deps

// Factory constructs a controller for one host element.
type Factory = component.Factory

// Registry maps component tags to factories.
type Registry = component.Registry

// Loader drives the discovery/compile/patch cycle.
type Loader = component.Loader

// StateView is a component's subscribing window onto the global store.
type StateView = component.StateView

// Mounter is implemented by controllers wanting a first-mount hook.
type Mounter = component.Mounter

// Changer is implemented by controllers wanting a post-render hook.
type Changer = component.Changer

// NewRegistry creates an empty component registry.
var NewRegistry = component.NewRegistry

// NewLoader creates a loader over a registry.
var NewLoader = component.NewLoader

// Loader options.
var (
	WithStore    = component.WithStore
	WithSource   = component.WithSource
	WithLogger   = component.WithLogger
	WithObserver = component.WithObserver
)

// =============================================================================
// Patching (re-export from pkg/vdom)
// =============================================================================

// Op is one applied DOM mutation.
type Op = vdom.Op

// OpKind is the type of an applied mutation.
type OpKind = vdom.OpKind

// Patch reconciles a committed tree with freshly rendered content.
var Patch = vdom.Patch

// =============================================================================
// Shared state (re-export from pkg/store)
// =============================================================================

// Store is the global key/value state store.
type Store = store.Store

// NewStore creates a state store.
var NewStore = store.New

// OpenBolt opens a bbolt-backed persistence backend for the store.
var OpenBolt = store.OpenBolt

// =============================================================================
// Template sources (re-export from pkg/templates)
// =============================================================================

// Source fetches component templates by name.
type Source = templates.Source

// NewDirSource serves templates from a local directory.
var NewDirSource = templates.NewDir

// NewHTTPSource serves templates relative to an HTTP base URL.
var NewHTTPSource = templates.NewHTTP

// NewS3Source serves templates from an S3 bucket.
var NewS3Source = templates.NewS3
