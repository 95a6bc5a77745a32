package webdav

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

type textChunk struct {
	pos  int //出现在第几个子节点之前
	data []byte
}

// node 是简化的xml树节点, 只按local name匹配, 忽略前缀和命名空间
type node struct {
	name     xml.Name
	children []*node
	chunks   []textChunk
}

func (n *node) is(local string) bool {
	return n.name.Local == local
}

func (n *node) child(local string) *node {
	for _, c := range n.children {
		if c.is(local) {
			return c
		}
	}
	return nil
}

func (n *node) childrenByName(local string) []*node {
	rs := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		if c.is(local) {
			rs = append(rs, c)
		}
	}
	return rs
}

// text 返回节点下全部文本, 嵌套标签只保留其文本
func (n *node) text() string {
	sb := &strings.Builder{}
	n.writeText(sb)
	return sb.String()
}

func (n *node) writeText(sb *strings.Builder) {
	idx := 0
	for i, c := range n.children {
		for ; idx < len(n.chunks) && n.chunks[idx].pos <= i; idx++ {
			sb.Write(n.chunks[idx].data)
		}
		c.writeText(sb)
	}
	for ; idx < len(n.chunks); idx++ {
		sb.Write(n.chunks[idx].data)
	}
}

func (n *node) trimmedText() string {
	return strings.TrimSpace(n.text())
}

func buildTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity
	var root *node
	stack := make([]*node, 0, 8)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root element, second:%s", ErrMalformed, t.Name.Local)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.chunks = append(top.chunks, textChunk{
				pos:  len(top.children),
				data: append([]byte(nil), t...),
			})
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	return root, nil
}
