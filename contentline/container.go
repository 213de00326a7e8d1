package contentline

import (
	"strings"
)

// Item is either a ContentLine or a *Container.
type Item interface {
	item()
}

// Container is a BEGIN/END delimited block holding content lines and nested
// containers in their original order.
type Container struct {
	Name  string
	Items []Item
}

func (*Container) item() {}

// NewContainer returns a container with a canonical upper case name.
func NewContainer(name string, items ...Item) *Container {
	return &Container{Name: strings.ToUpper(name), Items: items}
}

// Append adds items at the end.
func (c *Container) Append(items ...Item) {
	c.Items = append(c.Items, items...)
}

// Insert adds items before position i.
func (c *Container) Insert(i int, items ...Item) {
	if i >= len(c.Items) {
		c.Items = append(c.Items, items...)
		return
	}
	rest := append([]Item(nil), c.Items[i:]...)
	c.Items = append(append(c.Items[:i], items...), rest...)
}

// Lines returns the content lines with the given name, or all of them when
// name is empty.
func (c *Container) Lines(name string) []ContentLine {
	name = strings.ToUpper(name)
	var r []ContentLine
	for _, it := range c.Items {
		if cl, ok := it.(ContentLine); ok && (name == "" || cl.Name == name) {
			r = append(r, cl)
		}
	}
	return r
}

// Children returns the nested containers with the given name, or all of them
// when name is empty.
func (c *Container) Children(name string) []*Container {
	name = strings.ToUpper(name)
	var r []*Container
	for _, it := range c.Items {
		if cc, ok := it.(*Container); ok && (name == "" || cc.Name == name) {
			r = append(r, cc)
		}
	}
	return r
}

// Clone copies the container. A shallow clone shares nested containers and
// parameter lists with c; a deep clone shares nothing.
func (c *Container) Clone(deep bool) *Container {
	r := &Container{Name: c.Name, Items: make([]Item, len(c.Items))}
	for i, it := range c.Items {
		if deep {
			r.Items[i] = CloneItem(it)
		} else {
			r.Items[i] = it
		}
	}
	return r
}

// CloneItem deep copies a content line or container.
func CloneItem(it Item) Item {
	switch it := it.(type) {
	case ContentLine:
		return it.Clone()
	case *Container:
		return it.Clone(true)
	}
	return it
}

// Serialize renders the container with the default folding width and CRLF
// line endings.
func (c *Container) Serialize() (string, error) {
	b := &strings.Builder{}
	if err := NewWriter(b).WriteContainer(c); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (c *Container) String() string {
	s, err := c.Serialize()
	if err != nil {
		return "BEGIN:" + c.Name + "<" + err.Error() + ">"
	}
	return s
}
