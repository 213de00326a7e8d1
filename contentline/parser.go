package contentline

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Parser builds container trees from a stream of content lines. It pulls
// lines from its Reader on demand, so a caller can bind one top-level
// container before the next one is read.
type Parser struct {
	r      *Reader
	Logger logrus.FieldLogger
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:      NewReader(r),
		Logger: logrus.StandardLogger(),
	}
}

// Next returns the next top-level container. It returns io.EOF once the
// input is exhausted.
func (p *Parser) Next() (*Container, error) {
	cl, no, err := p.r.Next()
	if err != nil {
		return nil, err
	}
	if cl.Name != "BEGIN" {
		return nil, &ContainerError{Line: no, Msg: fmt.Sprintf("expected BEGIN, found %s outside of any container", cl.Name)}
	}
	return p.parseContainer(cl, no)
}

func (p *Parser) parseContainer(begin ContentLine, beginLine int) (*Container, error) {
	name, err := p.blockName(begin, beginLine)
	if err != nil {
		return nil, err
	}
	c := &Container{Name: name}
	for {
		cl, no, err := p.r.Next()
		if err == io.EOF {
			return nil, &ContainerError{Line: beginLine, Msg: fmt.Sprintf("missing END:%s before end of input", name)}
		}
		if err != nil {
			return nil, err
		}
		switch cl.Name {
		case "BEGIN":
			child, err := p.parseContainer(cl, no)
			if err != nil {
				return nil, err
			}
			c.Items = append(c.Items, child)
		case "END":
			end, err := p.blockName(cl, no)
			if err != nil {
				return nil, err
			}
			if end != name {
				return nil, &ContainerError{Line: no, Msg: fmt.Sprintf("END:%s does not match BEGIN:%s on line %d", cl.Value, begin.Value, beginLine)}
			}
			if cl.Value != begin.Value {
				p.Logger.WithField("line", no).Warnf("END:%s differs in case from BEGIN:%s", cl.Value, begin.Value)
			}
			return c, nil
		default:
			c.Items = append(c.Items, cl)
		}
	}
}

func (p *Parser) blockName(cl ContentLine, no int) (string, error) {
	if !isName(cl.Value) {
		return "", &ContainerError{Line: no, Msg: fmt.Sprintf("invalid component name %q in %s", cl.Value, cl.Name)}
	}
	name := strings.ToUpper(cl.Value)
	if cl.Value != name {
		p.Logger.WithField("line", no).Warnf("%s:%s is not upper case", cl.Name, cl.Value)
	}
	return name, nil
}

// ParseContainers reads every top-level container in r.
func ParseContainers(r io.Reader) ([]*Container, error) {
	p := NewParser(r)
	var cs []*Container
	for {
		c, err := p.Next()
		if err == io.EOF {
			return cs, nil
		}
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
}

// ParseContainer reads a single container from s.
func ParseContainer(s string) (*Container, error) {
	cs, err := ParseContainers(strings.NewReader(s))
	if err != nil {
		return nil, err
	}
	if len(cs) != 1 {
		return nil, fmt.Errorf("expected exactly one container, found %d", len(cs))
	}
	return cs[0], nil
}
