package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidDepth = errors.New("invalid depth")
	ErrStatus       = errors.New("status code not ok")
)

// StatusError 请求已完成, 但服务端返回了非成功状态码
type StatusError struct {
	Method     string
	Link       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code not ok, method:%s, link:%s, code:%d", e.Method, e.Link, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// TransportError 包装底层传输返回的错误, Unwrap可拿到原始错误
type TransportError struct {
	Method string
	Link   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send request failed, method:%s, link:%s, err:%v", e.Method, e.Link, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCodeOf 返回错误中携带的http状态码, 不是StatusError时返回false
func StatusCodeOf(err error) (int, bool) {
	var se *StatusError
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.StatusCode, true
}

func IsNotFound(err error) bool {
	code, ok := StatusCodeOf(err)
	return ok && code == http.StatusNotFound
}
