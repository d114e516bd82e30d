package architecture

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrInvalidResponse is returned when the upstream answers 200 with a body
// that does not decode as a Response.
var ErrInvalidResponse = errors.New("architecture: invalid upstream response")

// StatusError reports a non-200 answer from the architecture service.
// Body holds at most maxErrorBody bytes of the upstream payload.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("architecture: unexpected upstream status %d: %s", e.StatusCode, e.Body)
}

// Cause is a coarse classification of a transport failure.
type Cause string

const (
	CauseTimeout           Cause = "timeout"
	CauseDNS               Cause = "dns"
	CauseConnectionRefused Cause = "connection_refused"
	CauseTLS               Cause = "tls"
	CauseCanceled          Cause = "canceled"
	CauseOther             Cause = "other"
)

// UnavailableError reports that the architecture service could not be reached.
type UnavailableError struct {
	Cause Cause
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("architecture: service unavailable (%s): %v", e.Cause, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func newUnavailableError(err error) *UnavailableError {
	return &UnavailableError{Cause: classifyTransportError(err), Err: err}
}

// classifyTransportError inspects typed errors first and falls back to the
// message text for wrapped errors that lose their type.
func classifyTransportError(err error) Cause {
	if err == nil {
		return CauseOther
	}
	if errors.Is(err, context.Canceled) {
		return CauseCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CauseTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CauseDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CauseConnectionRefused
	}
	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return CauseTLS
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return CauseTimeout
	case strings.Contains(msg, "connection refused"):
		return CauseConnectionRefused
	case strings.Contains(msg, "no such host"):
		return CauseDNS
	case strings.Contains(msg, "tls"), strings.Contains(msg, "certificate"), strings.Contains(msg, "handshake"):
		return CauseTLS
	}
	return CauseOther
}
