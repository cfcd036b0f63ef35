package vrt

// Binding records the number and title of one enclosing division.
type Binding struct {
	Type  string `json:"type"`
	N     string `json:"n"`
	Title string `json:"title"`
}

// Context is the ordered chain of divisions enclosing a paragraph. It is a
// value: With returns a new Context and never modifies the receiver, so a
// child division's bindings are invisible to its siblings and parent.
type Context struct {
	bindings []Binding
}

// With returns a copy of c with b added. A type that is already bound keeps
// its position and takes the new number and title.
func (c Context) With(b Binding) Context {
	next := make([]Binding, len(c.bindings), len(c.bindings)+1)
	copy(next, c.bindings)
	for i := range next {
		if next[i].Type == b.Type {
			next[i] = b
			return Context{bindings: next}
		}
	}
	return Context{bindings: append(next, b)}
}

// Bindings returns the bindings outermost first.
func (c Context) Bindings() []Binding {
	return append([]Binding(nil), c.bindings...)
}

// Lookup returns the binding for a division type.
func (c Context) Lookup(typ string) (Binding, bool) {
	for _, b := range c.bindings {
		if b.Type == typ {
			return b, true
		}
	}
	return Binding{}, false
}

// Len returns the number of bindings.
func (c Context) Len() int { return len(c.bindings) }
