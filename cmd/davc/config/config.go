package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Endpoint      string `json:"endpoint"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Thread        int    `json:"thread"`
	LogLevel      string `json:"log_level"`
	Timeout       int64  `json:"timeout"`
	RetryTimes    uint32 `json:"retry_times"`    //额外重试次数
	RetryInterval int64  `json:"retry_interval"` //毫秒
	UserAgent     string `json:"user_agent"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		Thread:        4,
		LogLevel:      "info",
		Timeout:       600,
		RetryTimes:    3,
		RetryInterval: 2000,
		UserAgent:     "davc/1.0",
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal file:%w", err)
	}
	if len(c.Endpoint) == 0 {
		return nil, fmt.Errorf("no endpoint found")
	}
	return c, nil
}
