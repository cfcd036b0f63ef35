package teitree

import "strings"

// NodeType distinguishes elements from character data.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attr is a single element attribute. Name is the local name without prefix.
type Attr struct {
	Name  string
	Value string
}

// Document is the root of a parsed TEI file.
type Document struct {
	Root   *Node  // Outermost element
	Source string // Filename the document was read from

	// RecoveredFrom holds the strict-pass error when the input was not
	// well-formed and a recovering parser built the tree instead.
	RecoveredFrom error
}

// Node is an element or a text run. Text runs are ordinary children, so the
// "tail" text after an element is the next sibling of that element.
type Node struct {
	Type     NodeType
	Tag      string // Local element name as written in the source (prefix stripped)
	Attrs    []Attr
	Data     string // Character data for TextNode
	Parent   *Node
	Children []*Node
}

// NewElement returns a detached element.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText returns a detached text run.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// Append adds children to n and sets their parent. Adjacent text runs are merged.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c.Type == TextNode && len(n.Children) > 0 {
			if last := n.Children[len(n.Children)-1]; last.Type == TextNode {
				last.Data += c.Data
				continue
			}
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Is reports whether n is an element with the given local name, ignoring case.
func (n *Node) Is(tag string) bool {
	return n != nil && n.Type == ElementNode && strings.EqualFold(n.Tag, tag)
}

// Attr returns the named attribute, ignoring case.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when it is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr replaces or appends an attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if strings.EqualFold(a.Name, name) {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Elements returns the element children of n in document order.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first element child with the given name.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Is(tag) {
			return c
		}
	}
	return nil
}

// Find returns the first descendant element with the given name in document order.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.Children {
		if c.Is(tag) {
			return c
		}
		if f := c.Find(tag); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every descendant element for which match reports true.
// Matched elements are not searched further.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Type != ElementNode {
				continue
			}
			if match(c) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Text returns the concatenated character data of n and all its descendants.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if c.Type == TextNode {
				sb.WriteString(c.Data)
			} else {
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// OwnText returns the text runs that are direct children of n, in order.
func (n *Node) OwnText() []string {
	var out []string
	for _, c := range n.Children {
		if c.Type == TextNode {
			out = append(out, c.Data)
		}
	}
	return out
}

// Clone returns a deep copy of n detached from its parent. rename, when
// non-nil, maps each element's tag in the copy.
func (n *Node) Clone(rename func(tag string) string) *Node {
	cp := &Node{Type: n.Type, Tag: n.Tag, Data: n.Data}
	if rename != nil && n.Type == ElementNode {
		cp.Tag = rename(n.Tag)
	}
	if len(n.Attrs) > 0 {
		cp.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, c := range n.Children {
		cc := c.Clone(rename)
		cc.Parent = cp
		cp.Children = append(cp.Children, cc)
	}
	return cp
}

// LocalName strips a namespace prefix ("tei:div" becomes "div").
func LocalName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
