package cfgjson

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/muurk/blegw/internal/gwcfg"
)

type nodeKind uint8

const (
	kindObject nodeKind = iota
	kindArray
	kindString
	kindNumber
	kindBool
)

// node is one element of a document under construction. Object members keep
// insertion order.
type node struct {
	kind     nodeKind
	key      string
	str      string
	num      int64
	flag     bool
	children []*node
}

// builder assembles a document tree. The first failed allocation is
// remembered and every later call becomes a no-op, so callers can emit a
// whole section and check the error once.
type builder struct {
	alloc Allocator
	held  int
	err   error
}

func newBuilder(a Allocator) *builder {
	return &builder{alloc: a}
}

func (b *builder) newNode(kind nodeKind, key string) *node {
	if b.err != nil {
		return nil
	}
	if err := b.alloc.Alloc(); err != nil {
		b.err = gwcfg.NewAllocError(key, err)
		return nil
	}
	b.held++
	return &node{kind: kind, key: key}
}

func (b *builder) attach(parent, child *node) {
	if parent == nil || child == nil {
		return
	}
	parent.children = append(parent.children, child)
}

func (b *builder) object(parent *node, key string) *node {
	n := b.newNode(kindObject, key)
	b.attach(parent, n)
	return n
}

func (b *builder) array(parent *node, key string) *node {
	n := b.newNode(kindArray, key)
	b.attach(parent, n)
	return n
}

func (b *builder) addString(parent *node, key, val string) {
	if n := b.newNode(kindString, key); n != nil {
		n.str = val
		b.attach(parent, n)
	}
}

func (b *builder) addNumber(parent *node, key string, val int64) {
	if n := b.newNode(kindNumber, key); n != nil {
		n.num = val
		b.attach(parent, n)
	}
}

func (b *builder) addBool(parent *node, key string, val bool) {
	if n := b.newNode(kindBool, key); n != nil {
		n.flag = val
		b.attach(parent, n)
	}
}

// release returns every held node to the allocator.
func (b *builder) release() {
	for ; b.held > 0; b.held-- {
		b.alloc.Free()
	}
}

// finish renders root and releases the tree. On any earlier failure the
// tree is discarded and only the error is returned.
func (b *builder) finish(root *node) ([]byte, error) {
	defer b.release()
	if b.err != nil {
		return nil, b.err
	}
	if err := b.alloc.Alloc(); err != nil {
		return nil, gwcfg.NewAllocError("", err)
	}
	defer b.alloc.Free()

	var buf bytes.Buffer
	w := &renderer{buf: &buf}
	w.value(root, 0)
	if w.err != nil {
		return nil, w.err
	}
	return buf.Bytes(), nil
}

type renderer struct {
	buf *bytes.Buffer
	err error
}

func (w *renderer) quote(s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		w.err = err
		return
	}
	w.buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

func (w *renderer) value(n *node, depth int) {
	switch n.kind {
	case kindObject, kindArray:
		open, closing := byte('{'), byte('}')
		if n.kind == kindArray {
			open, closing = '[', ']'
		}
		w.buf.WriteByte(open)
		if len(n.children) == 0 {
			w.buf.WriteByte(closing)
			return
		}
		indent := strings.Repeat("\t", depth+1)
		for i, child := range n.children {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.buf.WriteByte('\n')
			w.buf.WriteString(indent)
			if n.kind == kindObject {
				w.quote(child.key)
				w.buf.WriteString(": ")
			}
			w.value(child, depth+1)
		}
		w.buf.WriteByte('\n')
		w.buf.WriteString(strings.Repeat("\t", depth))
		w.buf.WriteByte(closing)
	case kindString:
		w.quote(n.str)
	case kindNumber:
		w.buf.WriteString(strconv.FormatInt(n.num, 10))
	case kindBool:
		w.buf.WriteString(strconv.FormatBool(n.flag))
	}
}
