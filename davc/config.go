package davc

import (
	"time"

	"github.com/xxxsen/davclient/davc/client"
)

type config struct {
	Thread        int
	RetryTimes    uint32 //失败后额外重试的次数, 总尝试次数为RetryTimes+1
	RetryInterval time.Duration
	Client        client.IClient
}

type Option func(*config)

func WithClient(cli client.IClient) Option {
	return func(c *config) {
		c.Client = cli
	}
}

func WithThread(t int) Option {
	return func(c *config) {
		c.Thread = t
	}
}

// WithRetry times为失败后的额外重试次数, 0表示只尝试一次
func WithRetry(times uint32, interval time.Duration) Option {
	return func(c *config) {
		c.RetryTimes = times
		c.RetryInterval = interval
	}
}
