package davc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/retry"
	"github.com/xxxsen/davclient/davc/client"
	"github.com/xxxsen/davclient/webdav"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WalkFunc 返回false时不再进入该目录
type WalkFunc func(ctx context.Context, link string, ent *webdav.ResourceEntry) (bool, error)

type UploadItem struct {
	Src string
	Dst string
}

type DavClient struct {
	c *config
}

func New(opts ...Option) (*DavClient, error) {
	c := &config{
		Thread:        4,
		RetryTimes:    3,
		RetryInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Client == nil {
		return nil, fmt.Errorf("no webdav client found")
	}
	if c.Thread <= 0 {
		c.Thread = 1
	}
	return &DavClient{c: c}, nil
}

// isRetryable 只有网络错误和5xx才重试
func isRetryable(err error) bool {
	var te *client.TransportError
	if errors.As(err, &te) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code, ok := client.StatusCodeOf(err)
	return ok && code >= 500
}

// retryDo 总共尝试RetryTimes+1次, 返回最后一次的原始错误
func (c *DavClient) retryDo(ctx context.Context, fn func(ctx context.Context) error) error {
	var final error
	if err := retry.RetryDo(ctx, c.c.RetryTimes, c.c.RetryInterval, func(ctx context.Context) error {
		err := fn(ctx)
		final = err
		if err != nil && !isRetryable(err) {
			return nil
		}
		return err
	}); err != nil && final == nil {
		return err
	}
	return final
}

// ListChildren 枚举目录的直接子项, 服务端返回的第一项(目录自身)会被剔除
func (c *DavClient) ListChildren(ctx context.Context, dir string) ([]*webdav.ResourceEntry, error) {
	ents, err := c.c.Client.ListEntries(ctx, dir, client.DepthOne)
	if err != nil {
		return nil, err
	}
	if len(ents) == 0 {
		return ents, nil
	}
	return ents[1:], nil
}

// Stat 获取单个资源的属性
func (c *DavClient) Stat(ctx context.Context, link string) (*webdav.ResourceEntry, error) {
	ents, err := c.c.Client.ListEntries(ctx, link, client.DepthZero)
	if err != nil {
		return nil, err
	}
	if len(ents) == 0 {
		return nil, fmt.Errorf("no entry found in propfind response, link:%s", link)
	}
	return ents[0], nil
}

func resolveHref(base string, href string) (string, error) {
	bu, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	hu, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return bu.ResolveReference(hu).String(), nil
}

func sameLocation(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

// Walk 深度优先遍历dir下的全部子项, 顺序与服务端返回一致
func (c *DavClient) Walk(ctx context.Context, dir string, fn WalkFunc) error {
	ents, err := c.ListChildren(ctx, dir)
	if err != nil {
		return err
	}
	for _, ent := range ents {
		link, err := resolveHref(dir, ent.Href())
		if err != nil {
			return fmt.Errorf("resolve href failed, href:%s, err:%w", ent.Href(), err)
		}
		if sameLocation(link, dir) {
			continue
		}
		next, err := fn(ctx, link, ent)
		if err != nil {
			return err
		}
		if !next || !ent.IsCollection() {
			continue
		}
		if err := c.Walk(ctx, link, fn); err != nil {
			return err
		}
	}
	return nil
}

// MkcolAll 逐级创建目录, 已存在的目录忽略
func (c *DavClient) MkcolAll(ctx context.Context, link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("parse link failed, err:%w", err)
	}
	items := strings.Split(strings.Trim(u.Path, "/"), "/")
	cur := *u
	cur.Path = "/"
	cur.RawPath = ""
	for _, item := range items {
		if len(item) == 0 {
			continue
		}
		cur.Path = path.Join(cur.Path, item) + "/"
		_, err := c.c.Client.Mkcol(ctx, cur.String())
		if err == nil {
			continue
		}
		code, ok := client.StatusCodeOf(err)
		if ok && code == http.StatusMethodNotAllowed { //已存在
			continue
		}
		return fmt.Errorf("mkcol failed, link:%s, err:%w", cur.String(), err)
	}
	return nil
}

func detectContentType(src string) string {
	mt, err := mimetype.DetectFile(src)
	if err != nil {
		return ""
	}
	return mt.String()
}

func (c *DavClient) UploadFile(ctx context.Context, src string, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("upload source should be a regular file, src:%s", src)
	}
	contentType := detectContentType(src)
	start := time.Now()
	if err := c.retryDo(ctx, func(ctx context.Context) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := c.c.Client.Put(ctx, dst, f, info.Size(), contentType); err != nil {
			logutil.GetLogger(ctx).Error("upload file failed", zap.Error(err), zap.String("src", src), zap.String("dst", dst))
			return err
		}
		return nil
	}); err != nil {
		return err
	}
	cost := time.Since(start)
	speed := "-"
	if cost > 0 {
		speed = humanize.IBytes(uint64(float64(info.Size())*float64(time.Second)/float64(cost))) + "/s"
	}
	logutil.GetLogger(ctx).Debug("upload file finish", zap.String("dst", dst),
		zap.String("size", humanize.IBytes(uint64(info.Size()))), zap.Duration("cost", cost), zap.String("speed", speed))
	return nil
}

// UploadFiles 并发上传, 任意一个失败则整体失败
func (c *DavClient) UploadFiles(ctx context.Context, items []*UploadItem) error {
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.c.Thread)
	for _, item := range items {
		item := item
		eg.Go(func() error {
			return c.UploadFile(subctx, item.Src, item.Dst)
		})
	}
	if err := eg.Wait(); err != nil {
		logutil.GetLogger(ctx).Error("upload files failed", zap.Error(err), zap.Int("count", len(items)))
		return err
	}
	return nil
}

// DownloadFile 边下载边写入临时文件, 读取中断同样按网络错误重试
func (c *DavClient) DownloadFile(ctx context.Context, link string, dst string) error {
	return c.retryDo(ctx, func(ctx context.Context) error {
		rc, err := c.c.Client.GetStream(ctx, link)
		if err != nil {
			return err
		}
		defer rc.Close()
		if err := safeSaveToFile(dst, rc); err != nil {
			return fmt.Errorf("save file failed, dst:%s, err:%w", dst, err)
		}
		return nil
	})
}
