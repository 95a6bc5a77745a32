package client

import (
	"context"
	"io"
	"net/http"

	"github.com/xxxsen/davclient/webdav"
)

const (
	DepthZero     = "0"
	DepthOne      = "1"
	DepthInfinity = "infinity"
)

// Response 是一次请求完成后的结果, body已经完整读出
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IClient 每个方法对应一个WebDAV动词, link均为服务端的绝对地址
type IClient interface {
	Get(ctx context.Context, link string) (*Response, error)
	GetStream(ctx context.Context, link string) (io.ReadCloser, error)
	Put(ctx context.Context, link string, r io.Reader, size int64, contentType string) (*Response, error)
	Delete(ctx context.Context, link string) (*Response, error)
	Mkcol(ctx context.Context, link string) (*Response, error)
	Move(ctx context.Context, src string, dst string) (*Response, error)
	List(ctx context.Context, link string, depth string) (*Response, error)
	ListEntries(ctx context.Context, link string, depth string) ([]*webdav.ResourceEntry, error)
	Unzip(ctx context.Context, link string) (*Response, error)
}
