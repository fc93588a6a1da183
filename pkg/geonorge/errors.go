package geonorge

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// Kind classifies an upstream failure.
type Kind int

const (
	// KindUnavailable is a transport failure or a non-200 reply.
	KindUnavailable Kind = iota
	// KindMalformed is a reply that does not have the expected shape.
	KindMalformed
	// KindEmpty is a well-formed reply without any result.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindEmpty:
		return "empty"
	default:
		return "unavailable"
	}
}

// UpstreamError wraps a failure of one Geonorge service.
type UpstreamError struct {
	Service    string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msg := "geonorge: " + e.Service + " " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. An UpstreamError anywhere in the chain decides;
// otherwise decode errors are malformed and everything else, including
// network errors and context cancellation, is unavailable.
func KindOf(err error) Kind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var xmlErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &xmlErr) {
		return KindMalformed
	}

	return KindUnavailable
}

// IsNetworkError reports whether err looks like a connection-level failure
// rather than a reply from the service.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
