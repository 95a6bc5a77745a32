package webdav

import "errors"

var (
	ErrMalformed      = errors.New("malformed xml")
	ErrNotMultistatus = errors.New("not a multistatus document")
)
