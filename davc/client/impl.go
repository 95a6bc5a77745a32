package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davclient/webdav"
	"go.uber.org/zap"
)

const (
	MethodMkcol    = "MKCOL"
	MethodMove     = "MOVE"
	MethodPropfind = "PROPFIND"
)

const (
	defaultContentType = "application/octet-stream"
	xmlContentType     = "application/xml; charset=utf-8"
	formContentType    = "application/x-www-form-urlencoded"
)

var (
	defaultHttpClient = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			IdleConnTimeout:     20 * time.Second,
			MaxIdleConns:        5,
			MaxIdleConnsPerHost: 2,
		},
	}
)

type defaultClient struct {
	c *config
}

type requestOption func(req *http.Request)

func withContentLength(size int64) requestOption {
	return func(req *http.Request) {
		if size < 0 {
			return
		}
		req.ContentLength = size
		if size == 0 {
			req.Body = http.NoBody
			req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
		}
	}
}

func withHeader(k, v string) requestOption {
	return func(req *http.Request) {
		req.Header.Set(k, v)
	}
}

func checkLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("parse link failed, link:%s, err:%w", link, err)
	}
	if len(u.Scheme) == 0 || len(u.Host) == 0 {
		return fmt.Errorf("link should be absolute url, link:%s", link)
	}
	return nil
}

func checkDepth(depth string) error {
	switch depth {
	case DepthZero, DepthOne, DepthInfinity:
		return nil
	}
	return fmt.Errorf("%w, depth:%q, should be one of 0/1/infinity", ErrInvalidDepth, depth)
}

func (d *defaultClient) applyAuth(req *http.Request) {
	if len(d.c.Username) == 0 && len(d.c.Password) == 0 {
		return
	}
	req.SetBasicAuth(d.c.Username, d.c.Password)
}

func (d *defaultClient) buildRequest(ctx context.Context, method string, link string, body io.Reader, opts ...requestOption) (*http.Request, error) {
	if err := checkLink(link); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, link, body)
	if err != nil {
		return nil, fmt.Errorf("build request failed, method:%s, err:%w", method, err)
	}
	d.applyAuth(req)
	if len(d.c.UserAgent) > 0 {
		req.Header.Set("User-Agent", d.c.UserAgent)
	}
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// send 非2xx时读出body并返回StatusError, 成功时body由调用方负责关闭
func (d *defaultClient) send(req *http.Request) (*http.Response, error) {
	link := req.URL.String()
	rsp, err := d.c.Transport.Do(req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Link: link, Err: err}
	}
	if rsp.StatusCode >= 200 && rsp.StatusCode < 300 {
		return rsp, nil
	}
	defer rsp.Body.Close()
	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Link: link, Err: err}
	}
	return nil, &StatusError{Method: req.Method, Link: link, StatusCode: rsp.StatusCode, Body: raw}
}

func (d *defaultClient) do(req *http.Request) (*Response, error) {
	ctx := req.Context()
	link := req.URL.String()
	start := time.Now()
	rsp, err := d.send(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Link: link, Err: err}
	}
	logutil.GetLogger(ctx).Debug("webdav request finish",
		zap.String("method", req.Method),
		zap.String("link", link),
		zap.Int("status", rsp.StatusCode),
		zap.Int("body_size", len(raw)),
		zap.Duration("cost", time.Since(start)),
	)
	return &Response{
		StatusCode: rsp.StatusCode,
		Header:     rsp.Header,
		Body:       raw,
	}, nil
}

func (d *defaultClient) call(ctx context.Context, method string, link string, body io.Reader, opts ...requestOption) (*Response, error) {
	req, err := d.buildRequest(ctx, method, link, body, opts...)
	if err != nil {
		return nil, err
	}
	return d.do(req)
}

func (d *defaultClient) Get(ctx context.Context, link string) (*Response, error) {
	return d.call(ctx, http.MethodGet, link, nil)
}

// transportBody 将读取body时的网络错误包装为TransportError
type transportBody struct {
	rc     io.ReadCloser
	method string
	link   string
}

func (b *transportBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if err != nil && err != io.EOF {
		return n, &TransportError{Method: b.method, Link: b.link, Err: err}
	}
	return n, err
}

func (b *transportBody) Close() error {
	return b.rc.Close()
}

// GetStream 与Get相同, 但body不读入内存, 调用方需要关闭返回的reader
func (d *defaultClient) GetStream(ctx context.Context, link string) (io.ReadCloser, error) {
	req, err := d.buildRequest(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	rsp, err := d.send(req)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("webdav stream opened",
		zap.String("link", req.URL.String()),
		zap.Int("status", rsp.StatusCode),
		zap.Int64("content_length", rsp.ContentLength),
	)
	return &transportBody{rc: rsp.Body, method: req.Method, link: req.URL.String()}, nil
}

// Put size<0表示长度未知, 此时以chunked方式发送
func (d *defaultClient) Put(ctx context.Context, link string, r io.Reader, size int64, contentType string) (*Response, error) {
	if len(contentType) == 0 {
		contentType = defaultContentType
	}
	if r == nil || size == 0 {
		r = http.NoBody
	}
	return d.call(ctx, http.MethodPut, link, r,
		withHeader("Content-Type", contentType),
		withContentLength(size),
	)
}

func (d *defaultClient) Delete(ctx context.Context, link string) (*Response, error) {
	return d.call(ctx, http.MethodDelete, link, nil)
}

func (d *defaultClient) Mkcol(ctx context.Context, link string) (*Response, error) {
	return d.call(ctx, MethodMkcol, link, nil)
}

// Move 同目录下仅修改文件名时等同于重命名
func (d *defaultClient) Move(ctx context.Context, src string, dst string) (*Response, error) {
	if err := checkLink(dst); err != nil {
		return nil, fmt.Errorf("invalid destination, err:%w", err)
	}
	return d.call(ctx, MethodMove, src, nil, withHeader("Destination", dst))
}

func (d *defaultClient) List(ctx context.Context, link string, depth string) (*Response, error) {
	if err := checkDepth(depth); err != nil {
		return nil, err
	}
	body, err := webdav.AllpropBody()
	if err != nil {
		return nil, err
	}
	return d.call(ctx, MethodPropfind, link, bytes.NewReader(body),
		withHeader("Depth", depth),
		withHeader("Content-Type", xmlContentType),
	)
}

// ListEntries 返回的结果第一项通常是link自身
func (d *defaultClient) ListEntries(ctx context.Context, link string, depth string) ([]*webdav.ResourceEntry, error) {
	rsp, err := d.List(ctx, link, depth)
	if err != nil {
		return nil, err
	}
	ents, err := webdav.Parse(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse propfind response failed, link:%s, err:%w", link, err)
	}
	return ents, nil
}

// Unzip 通知服务端解压link指向的zip文件(非标准扩展)
func (d *defaultClient) Unzip(ctx context.Context, link string) (*Response, error) {
	form := url.Values{}
	form.Set("method", "UNZIP")
	return d.call(ctx, http.MethodPost, link, strings.NewReader(form.Encode()),
		withHeader("Content-Type", formContentType),
	)
}

func New(opts ...Option) (IClient, error) {
	c := &config{
		Transport: defaultHttpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Transport == nil {
		return nil, fmt.Errorf("no http transport found")
	}
	return &defaultClient{c: c}, nil
}
