package dom

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <ticker-clock>, etc.
	KindText                // Plain text node
	KindComment             // Comment node (also used as directive placeholder)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Attr is a single string attribute.
type Attr struct {
	Key   string
	Value string
}

// Node is a document tree node.
type Node struct {
	Kind Kind
	Tag  string // Element tag name, lower-case (e.g. "div", "ticker-clock")
	Text string // For KindText and KindComment

	// Props holds typed properties assigned by component inputs.
	// These are distinct from string attributes.
	Props map[string]any

	Children []*Node
	Parent   *Node

	attrs     []Attr
	listeners map[string][]Handler
}

// NewElement creates an element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{Kind: KindElement, Tag: strings.ToLower(tag)}
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewComment creates a comment node.
func NewComment(text string) *Node {
	return &Node{Kind: KindComment, Text: text}
}

// IsComponent reports whether this element's tag names a component.
// Component tags contain the dash separator ("ticker-clock").
func (n *Node) IsComponent() bool {
	return n != nil && n.Kind == KindElement && strings.Contains(n.Tag, "-")
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, preserving attribute order for
// existing keys and appending new ones.
func (n *Node) SetAttr(key, value string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
}

// RemoveAttr removes the named attribute if present.
func (n *Node) RemoveAttr(key string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the node's attributes in document order.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// SetProp assigns a typed property onto the node.
func (n *Node) SetProp(name string, value any) {
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[name] = value
}

// Prop returns a typed property previously set with SetProp.
func (n *Node) Prop(name string) (any, bool) {
	v, ok := n.Props[name]
	return v, ok
}

// Append adds children to the end of the child list.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Detach()
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

// InsertAt inserts a child at the given index. Out-of-range indexes clamp
// to the ends of the child list.
func (n *Node) InsertAt(index int, child *Node) {
	child.Detach()
	if index < 0 {
		index = 0
	}
	if index >= len(n.Children) {
		n.Append(child)
		return
	}
	child.Parent = n
	n.Children = append(n.Children[:index], append([]*Node{child}, n.Children[index:]...)...)
}

// Index returns the position of child in n's child list, or -1.
func (n *Node) Index(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// RemoveAt removes and returns the child at index. Returns nil if out of range.
func (n *Node) RemoveAt(index int) *Node {
	if index < 0 || index >= len(n.Children) {
		return nil
	}
	c := n.Children[index]
	n.Children = append(n.Children[:index], n.Children[index+1:]...)
	c.Parent = nil
	return c
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	if i := n.Parent.Index(n); i >= 0 {
		n.Parent.Children = append(n.Parent.Children[:i], n.Parent.Children[i+1:]...)
	}
	n.Parent = nil
}

// ReplaceChild swaps old for new in n's child list.
// Reports whether old was found.
func (n *Node) ReplaceChild(old, repl *Node) bool {
	i := n.Index(old)
	if i < 0 {
		return false
	}
	repl.Detach()
	repl.Parent = n
	n.Children[i] = repl
	old.Parent = nil
	return true
}

// Clone returns a deep copy of the node: tag, text, attributes and children.
// Listeners, typed properties and parent links are not copied; clones are
// produced for template re-expansion, which re-establishes all bindings.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	c.attrs = make([]Attr, len(n.attrs))
	copy(c.attrs, n.attrs)
	for _, child := range n.Children {
		cc := child.Clone()
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.textContent(&b)
	return b.String()
}

func (n *Node) textContent(b *strings.Builder) {
	if n.Kind == KindText {
		b.WriteString(n.Text)
		return
	}
	if n.Kind == KindComment {
		return
	}
	for _, c := range n.Children {
		c.textContent(b)
	}
}

// Walk visits n and its descendants pre-order. Returning false from fn
// stops descent into that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	// Children may be restructured by fn; iterate over a snapshot.
	kids := make([]*Node, len(n.Children))
	copy(kids, n.Children)
	for _, c := range kids {
		c.Walk(fn)
	}
}

// Find returns the first descendant (or n itself) for which pred is true.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant (including n) matching pred, in
// document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}
