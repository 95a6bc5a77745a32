package webdav

import (
	"encoding/xml"
	"fmt"
)

const (
	davNamespace = "DAV:"
)

// Propfind 是PROPFIND请求体
type Propfind struct {
	XMLName xml.Name  `xml:"D:propfind"`
	XMLNS   string    `xml:"xmlns:D,attr"`
	Allprop *struct{} `xml:"D:allprop,omitempty"`
}

// AllpropBody 生成请求全部属性的PROPFIND请求体
func AllpropBody() ([]byte, error) {
	pf := &Propfind{
		XMLNS:   davNamespace,
		Allprop: &struct{}{},
	}
	return marshalDocument(pf)
}

func marshalDocument(v interface{}) ([]byte, error) {
	raw, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal xml failed, err:%w", err)
	}
	rs := make([]byte, 0, len(xml.Header)+len(raw))
	rs = append(rs, xml.Header...)
	rs = append(rs, raw...)
	return rs, nil
}
