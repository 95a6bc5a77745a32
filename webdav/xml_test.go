package webdav

import "encoding/xml"

// Multistatus 是 WebDAV 返回的根结构
type Multistatus struct {
	XMLName   xml.Name    `xml:"D:multistatus"`
	XMLNS     string      `xml:"xmlns:D,attr"`
	Responses []*Response `xml:"D:response"`
}

// Response 代表每个文件或目录的信息
type Response struct {
	Href      string      `xml:"D:href"`
	Propstats []*Propstat `xml:"D:propstat"`
}

// Propstat 包含资源的属性和状态
type Propstat struct {
	Prop   Prop   `xml:"D:prop"`
	Status string `xml:"D:status"`
}

// Prop 存储 WebDAV 资源的各种属性
type Prop struct {
	DisplayName   string        `xml:"D:displayname,omitempty"`
	LastModified  string        `xml:"D:getlastmodified,omitempty"`
	CreationDate  string        `xml:"D:creationdate,omitempty"`
	ContentLength string        `xml:"D:getcontentlength,omitempty"`
	ContentType   string        `xml:"D:getcontenttype,omitempty"`
	ETag          string        `xml:"D:getetag,omitempty"`
	ResourceType  *ResourceType `xml:"D:resourcetype,omitempty"`
}

// ResourceType 用于区分文件和目录
type ResourceType struct {
	Collection *struct{} `xml:"D:collection,omitempty"`
}

// Render 将multistatus编码为完整的xml文档
func Render(ms *Multistatus) ([]byte, error) {
	if len(ms.XMLNS) == 0 {
		ms.XMLNS = davNamespace
	}
	return marshalDocument(ms)
}
