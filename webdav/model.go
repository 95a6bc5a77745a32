package webdav

import (
	"net/url"
	"strings"
	"time"
)

// ResourceEntry 描述multistatus中的一个资源(文件或目录), 构造后不再修改
type ResourceEntry struct {
	href           string
	isCollection   bool
	displayName    string
	hasDisplayName bool
	contentLength  uint64
	hasLength      bool
	contentType    string
	lastModified   time.Time
	hasModified    bool
	creationDate   time.Time
	hasCreation    bool
	etag           string
	hasEtag        bool
}

func (e *ResourceEntry) Href() string {
	return e.href
}

func (e *ResourceEntry) IsCollection() bool {
	return e.isCollection
}

func (e *ResourceEntry) DisplayName() (string, bool) {
	return e.displayName, e.hasDisplayName
}

// ContentLength 目录永远返回(0, false)
func (e *ResourceEntry) ContentLength() (uint64, bool) {
	return e.contentLength, e.hasLength
}

func (e *ResourceEntry) ContentType() (string, bool) {
	return e.contentType, len(e.contentType) > 0
}

func (e *ResourceEntry) LastModified() (time.Time, bool) {
	return e.lastModified, e.hasModified
}

func (e *ResourceEntry) CreationDate() (time.Time, bool) {
	return e.creationDate, e.hasCreation
}

// ETag 原样返回服务端给出的值, 包括引号和W/前缀
func (e *ResourceEntry) ETag() (string, bool) {
	return e.etag, e.hasEtag
}

// Name 返回href的最后一段, 只对该段做url解码
func (e *ResourceEntry) Name() string {
	p := e.href
	if idx := strings.Index(p, "://"); idx >= 0 {
		p = p[idx+3:]
		if slash := strings.Index(p, "/"); slash >= 0 {
			p = p[slash:]
		} else {
			p = "/"
		}
	}
	p = strings.TrimRight(p, "/")
	if len(p) == 0 {
		return "/"
	}
	seg := p[strings.LastIndex(p, "/")+1:]
	if name, err := url.PathUnescape(seg); err == nil {
		return name
	}
	return seg
}

// Ext 返回文件扩展名(不含点), 目录返回空串
func (e *ResourceEntry) Ext() string {
	if e.isCollection {
		return ""
	}
	name := e.Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return ""
}
