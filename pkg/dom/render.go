package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements never carry children and serialize without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Render serializes the node subtree to HTML.
func Render(n *Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

// RenderChildren serializes only the node's children, in order.
func RenderChildren(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		render(&b, c)
	}
	return b.String()
}

func render(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText:
		b.WriteString(html.EscapeString(n.Text))
	case KindComment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	case KindElement:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			render(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}
