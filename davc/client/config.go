package client

import "net/http"

// Doer 是底层的http传输, *http.Client 满足该接口
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type config struct {
	Username  string
	Password  string
	UserAgent string
	Transport Doer
}

type Option func(*config)

func WithAuth(user string, pwd string) Option {
	return func(c *config) {
		c.Username = user
		c.Password = pwd
	}
}

func WithHTTPClient(d Doer) Option {
	return func(c *config) {
		c.Transport = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.UserAgent = ua
	}
}
