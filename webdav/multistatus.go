package webdav

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var httpDateLayouts = []string{
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// Parse 解析PROPFIND返回的multistatus文档, 结果按文档顺序排列.
// 第一个元素通常是被枚举的目录自身, 这里不做剔除.
func Parse(raw []byte) ([]*ResourceEntry, error) {
	return ParseReader(bytes.NewReader(raw))
}

func ParseReader(r io.Reader) ([]*ResourceEntry, error) {
	root, err := buildTree(r)
	if err != nil {
		return nil, err
	}
	if !root.is("multistatus") {
		return nil, fmt.Errorf("%w: unexpected root element:%s", ErrNotMultistatus, root.name.Local)
	}
	items := root.childrenByName("response")
	rs := make([]*ResourceEntry, 0, len(items))
	for _, item := range items {
		ent, ok := parseResponse(item)
		if !ok { //缺少href的条目直接跳过
			continue
		}
		rs = append(rs, ent)
	}
	return rs, nil
}

func parseResponse(n *node) (*ResourceEntry, bool) {
	hn := n.child("href")
	if hn == nil {
		return nil, false
	}
	href := hn.trimmedText()
	if len(href) == 0 {
		return nil, false
	}
	ent := &ResourceEntry{href: href}
	for _, ps := range n.childrenByName("propstat") {
		if !isSuccessPropstat(ps) {
			continue
		}
		for _, prop := range ps.childrenByName("prop") {
			applyProps(ent, prop)
		}
	}
	if ent.isCollection {
		ent.contentLength = 0
		ent.hasLength = false
	}
	return ent, true
}

// applyProps 同一属性出现多次时以第一次为准
func applyProps(ent *ResourceEntry, prop *node) {
	for _, p := range prop.children {
		switch p.name.Local {
		case "resourcetype":
			if p.child("collection") != nil {
				ent.isCollection = true
			}
		case "displayname":
			if !ent.hasDisplayName {
				ent.displayName = p.trimmedText()
				ent.hasDisplayName = true
			}
		case "getcontentlength":
			if ent.hasLength {
				continue
			}
			if v, err := strconv.ParseUint(p.trimmedText(), 10, 64); err == nil {
				ent.contentLength = v
				ent.hasLength = true
			}
		case "getcontenttype":
			if len(ent.contentType) == 0 {
				ent.contentType = p.trimmedText()
			}
		case "getlastmodified":
			if ent.hasModified {
				continue
			}
			if t, ok := parseHTTPDate(p.trimmedText()); ok {
				ent.lastModified = t
				ent.hasModified = true
			}
		case "creationdate":
			if ent.hasCreation {
				continue
			}
			if t, ok := parseCreationDate(p.trimmedText()); ok {
				ent.creationDate = t
				ent.hasCreation = true
			}
		case "getetag":
			if ent.hasEtag {
				continue
			}
			if v := p.trimmedText(); len(v) > 0 {
				ent.etag = v
				ent.hasEtag = true
			}
		}
	}
}

// isSuccessPropstat 没有status或status无法识别时按成功处理
func isSuccessPropstat(ps *node) bool {
	sn := ps.child("status")
	if sn == nil {
		return true
	}
	code, ok := parseStatusLine(sn.trimmedText())
	if !ok {
		return true
	}
	return code >= 200 && code < 300
}

// parseStatusLine 解析形如 "HTTP/1.1 200 OK" 的状态行
func parseStatusLine(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

func parseHTTPDate(s string) (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	for _, layout := range httpDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseCreationDate(s string) (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return parseHTTPDate(s)
}
