package transport

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidForwardURL is returned when the forwarding relay URL cannot be parsed
	// or is not an absolute http(s) URL.
	ErrInvalidForwardURL = errors.New("invalid forward URL: expected absolute http(s) URL")
)
