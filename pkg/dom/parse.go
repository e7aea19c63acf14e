package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup into a list of top-level nodes, as if the
// markup appeared inside a <div>. Tag and attribute names are lower-cased by
// the HTML tokenizer; iq's directive names are defined lower-case for that
// reason.
func ParseFragment(markup string) ([]*Node, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, hn := range parsed {
		if n := fromHTML(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// ParseFragmentInto parses markup and appends the result to parent.
func ParseFragmentInto(parent *Node, markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	parent.Append(nodes...)
	return nil
}

// fromHTML converts an x/net/html node subtree. Document-structure nodes
// (doctype, document) are flattened away; anything unrepresentable is dropped.
func fromHTML(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return NewText(hn.Data)
	case html.CommentNode:
		return NewComment(hn.Data)
	case html.ElementNode:
		n := NewElement(hn.Data)
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.SetAttr(key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if cn := fromHTML(c); cn != nil {
				cn.Parent = n
				n.Children = append(n.Children, cn)
			}
		}
		return n
	default:
		return nil
	}
}
