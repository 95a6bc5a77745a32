package cmd

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// buildLink 将远端路径拼接到endpoint之后, 已经是完整url的直接返回
func buildLink(endpoint string, remote string) (string, error) {
	if strings.HasPrefix(remote, "http://") || strings.HasPrefix(remote, "https://") {
		return remote, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint failed, err:%w", err)
	}
	if len(u.Scheme) == 0 || len(u.Host) == 0 {
		return "", fmt.Errorf("endpoint should be absolute url, endpoint:%s", endpoint)
	}
	p := path.Join("/", u.Path, remote)
	if strings.HasSuffix(remote, "/") && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u.Path = p
	u.RawPath = ""
	return u.String(), nil
}

func (c *Context) link(remote string) (string, error) {
	return buildLink(c.Config.Endpoint, remote)
}
