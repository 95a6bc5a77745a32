package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method           string
	Path             string
	Header           http.Header
	Body             []byte
	User             string
	Password         string
	HasAuth          bool
	ContentSize      int64
	TransferEncoding []string
}

type fakeServer struct {
	*httptest.Server
	mu   sync.Mutex
	reqs []*capturedRequest
	code int
	body []byte
}

func newFakeServer(t *testing.T, code int, body string) *fakeServer {
	gin.SetMode(gin.TestMode)
	fs := &fakeServer{code: code, body: []byte(body)}
	engine := gin.New()
	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPost, MethodMkcol, MethodMove, MethodPropfind} {
		engine.Handle(m, "/*path", fs.handle)
	}
	fs.Server = httptest.NewServer(engine)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handle(c *gin.Context) {
	raw, _ := io.ReadAll(c.Request.Body)
	user, pwd, ok := c.Request.BasicAuth()
	fs.mu.Lock()
	fs.reqs = append(fs.reqs, &capturedRequest{
		Method:           c.Request.Method,
		Path:             c.Request.URL.Path,
		Header:           c.Request.Header.Clone(),
		Body:             raw,
		User:             user,
		Password:         pwd,
		HasAuth:          ok,
		ContentSize:      c.Request.ContentLength,
		TransferEncoding: c.Request.TransferEncoding,
	})
	fs.mu.Unlock()
	c.Data(fs.code, "application/xml; charset=utf-8", fs.body)
}

func (fs *fakeServer) last(t *testing.T) *capturedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotEmpty(t, fs.reqs)
	return fs.reqs[len(fs.reqs)-1]
}

func (fs *fakeServer) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.reqs)
}

type countingDoer struct {
	cnt int
}

func (c *countingDoer) Do(req *http.Request) (*http.Response, error) {
	c.cnt++
	return nil, errors.New("should not be called")
}

func newTestClient(t *testing.T, opts ...Option) IClient {
	opts = append([]Option{WithAuth("alice", "s3cret")}, opts...)
	cli, err := New(opts...)
	require.NoError(t, err)
	return cli
}

func TestVerbs(t *testing.T) {
	ctx := context.Background()
	svr := newFakeServer(t, http.StatusCreated, "")
	cli := newTestClient(t, WithUserAgent("davc-test"))

	tests := []struct {
		name   string
		method string
		call   func() (*Response, error)
	}{
		{"get", http.MethodGet, func() (*Response, error) { return cli.Get(ctx, svr.URL+"/a/file.txt") }},
		{"delete", http.MethodDelete, func() (*Response, error) { return cli.Delete(ctx, svr.URL+"/a/file.txt") }},
		{"mkcol", MethodMkcol, func() (*Response, error) { return cli.Mkcol(ctx, svr.URL+"/a/file.txt") }},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			rsp, err := tst.call()
			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, rsp.StatusCode)
			req := svr.last(t)
			assert.Equal(t, tst.method, req.Method)
			assert.Equal(t, "/a/file.txt", req.Path)
			assert.True(t, req.HasAuth)
			assert.Equal(t, "alice", req.User)
			assert.Equal(t, "s3cret", req.Password)
			assert.Equal(t, "davc-test", req.Header.Get("User-Agent"))
			assert.Empty(t, req.Body)
		})
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	svr := newFakeServer(t, http.StatusCreated, "")
	cli := newTestClient(t)
	payload := "davclient is a small webdav library"

	_, err := cli.Put(ctx, svr.URL+"/a/test.txt", strings.NewReader(payload), int64(len(payload)), "")
	require.NoError(t, err)
	req := svr.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, payload, string(req.Body))
	assert.Equal(t, int64(len(payload)), req.ContentSize)
	assert.Equal(t, "application/octet-stream", req.Header.Get("Content-Type"))

	_, err = cli.Put(ctx, svr.URL+"/a/test.txt", strings.NewReader(payload), -1, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", svr.last(t).Header.Get("Content-Type"))
}

func TestPutContentLength(t *testing.T) {
	ctx := context.Background()
	svr := newFakeServer(t, http.StatusCreated, "")
	cli := newTestClient(t)

	p := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(p, []byte("hello world"), 0644))
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	_, err = cli.Put(ctx, svr.URL+"/a/data.bin", f, 11, "")
	require.NoError(t, err)
	req := svr.last(t)
	assert.Equal(t, int64(11), req.ContentSize)
	assert.Empty(t, req.TransferEncoding)
	assert.Equal(t, "hello world", string(req.Body))

	_, err = cli.Put(ctx, svr.URL+"/a/empty.bin", strings.NewReader(""), 0, "")
	require.NoError(t, err)
	req = svr.last(t)
	assert.Equal(t, int64(0), req.ContentSize)
	assert.Empty(t, req.TransferEncoding)

	_, err = cli.Put(ctx, svr.URL+"/a/stream.bin", io.MultiReader(strings.NewReader("abc")), -1, "")
	require.NoError(t, err)
	req = svr.last(t)
	assert.Equal(t, int64(-1), req.ContentSize)
	assert.Equal(t, []string{"chunked"}, req.TransferEncoding)
	assert.Equal(t, "abc", string(req.Body))
}

func TestGetStream(t *testing.T) {
	ctx := context.Background()
	svr := newFakeServer(t, http.StatusOK, "streamed content")
	cli := newTestClient(t)
	rc, err := cli.GetStream(ctx, svr.URL+"/a/file.txt")
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "streamed content", string(raw))
	req := svr.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.True(t, req.HasAuth)

	missing := newFakeServer(t, http.StatusNotFound, "gone")
	rc, err = cli.GetStream(ctx, missing.URL+"/a/file.txt")
	assert.Nil(t, rc)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, []byte("gone"), se.Body)
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	svr := newFakeServer(t, http.StatusCreated, "")
	cli := newTestClient(t)
	dst := svr.URL + "/a/new.txt"
	_, err := cli.Move(ctx, svr.URL+"/a/old.txt", dst)
	require.NoError(t, err)
	req := svr.last(t)
	assert.Equal(t, MethodMove, req.Method)
	assert.Equal(t, "/a/old.txt", req.Path)
	assert.Equal(t, dst, req.Header.Get("Destination"))
	assert.Empty(t, req.Body)
	assert.Equal(t, int64(0), req.ContentSize)

	_, err = cli.Move(ctx, svr.URL+"/a/old.txt", "/a/new.txt")
	assert.Error(t, err)
	assert.Equal(t, 1, svr.count())
}

func TestList(t *testing.T) {
	ctx := context.Background()
	body := `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:">
<d:response><d:href>/a/</d:href><d:propstat><d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>
<d:response><d:href>/a/file.txt</d:href><d:propstat><d:prop><d:resourcetype/><d:getcontentlength>234</d:getcontentlength><d:getetag>"x1"</d:getetag></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>
</d:multistatus>`
	svr := newFakeServer(t, http.StatusMultiStatus, body)
	cli := newTestClient(t)

	for _, depth := range []string{DepthZero, DepthOne, DepthInfinity} {
		rsp, err := cli.List(ctx, svr.URL+"/a/", depth)
		require.NoError(t, err)
		assert.Equal(t, http.StatusMultiStatus, rsp.StatusCode)
		assert.Equal(t, body, string(rsp.Body))
		req := svr.last(t)
		assert.Equal(t, MethodPropfind, req.Method)
		assert.Equal(t, depth, req.Header.Get("Depth"))
		assert.Contains(t, string(req.Body), "allprop")
		assert.Contains(t, req.Header.Get("Content-Type"), "xml")
	}

	ents, err := cli.ListEntries(ctx, svr.URL+"/a/", DepthOne)
	require.NoError(t, err)
	require.Equal(t, 2, len(ents))
	assert.True(t, ents[0].IsCollection())
	size, ok := ents[1].ContentLength()
	assert.True(t, ok)
	assert.Equal(t, uint64(234), size)
}

func TestListInvalidDepth(t *testing.T) {
	doer := &countingDoer{}
	cli := newTestClient(t, WithHTTPClient(doer))
	for _, depth := range []string{"", "2", "Infinity", "-1", " 1"} {
		_, err := cli.List(context.Background(), "http://127.0.0.1/a/", depth)
		assert.ErrorIs(t, err, ErrInvalidDepth, depth)
		_, err = cli.ListEntries(context.Background(), "http://127.0.0.1/a/", depth)
		assert.ErrorIs(t, err, ErrInvalidDepth, depth)
	}
	assert.Equal(t, 0, doer.cnt)
}

func TestRelativeLinkRejected(t *testing.T) {
	doer := &countingDoer{}
	cli := newTestClient(t, WithHTTPClient(doer))
	_, err := cli.Get(context.Background(), "/a/file.txt")
	assert.Error(t, err)
	assert.Equal(t, 0, doer.cnt)
}

func TestUnzip(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "")
	cli := newTestClient(t)
	_, err := cli.Unzip(context.Background(), svr.URL+"/a/archive.zip")
	require.NoError(t, err)
	req := svr.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/a/archive.zip", req.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	form, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	assert.Equal(t, "UNZIP", form.Get("method"))
}

func TestStatusError(t *testing.T) {
	body := "<html><body>no such file</body></html>\x00\xff"
	svr := newFakeServer(t, http.StatusNotFound, body)
	cli := newTestClient(t)
	rsp, err := cli.Get(context.Background(), svr.URL+"/missing.txt")
	assert.Nil(t, rsp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, []byte(body), se.Body)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.True(t, IsNotFound(err))
	code, ok := StatusCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)

	_, err = cli.ListEntries(context.Background(), svr.URL+"/missing/", DepthOne)
	assert.True(t, IsNotFound(err))
}

func TestListNotMultistatus(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "<html><body>login required</body></html>")
	cli := newTestClient(t)
	ents, err := cli.ListEntries(context.Background(), svr.URL+"/a/", DepthOne)
	assert.Nil(t, ents)
	assert.Error(t, err)
	_, ok := StatusCodeOf(err)
	assert.False(t, ok)
}

func TestTransportError(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "")
	link := svr.URL + "/a/file.txt"
	svr.Close()
	cli := newTestClient(t)
	_, err := cli.Get(context.Background(), link)
	require.Error(t, err)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
	var ue *url.Error
	assert.True(t, errors.As(err, &ue))
	assert.False(t, errors.Is(err, ErrStatus))
}

func TestCanceledContext(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "")
	cli := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cli.Get(ctx, svr.URL+"/a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoAuth(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "")
	cli, err := New()
	require.NoError(t, err)
	_, err = cli.Get(context.Background(), svr.URL+"/pub")
	require.NoError(t, err)
	assert.False(t, svr.last(t).HasAuth)
}

func TestConcurrentCalls(t *testing.T) {
	svr := newFakeServer(t, http.StatusOK, "ok")
	cli := newTestClient(t)
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rsp, err := cli.Get(context.Background(), svr.URL+"/a")
			assert.NoError(t, err)
			if rsp != nil {
				assert.Equal(t, "ok", string(rsp.Body))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, svr.count())
}
