package client

import (
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can tell a misconfigured client from
// a broken network from a misbehaving backend.
type Kind int

const (
	KindConfiguration Kind = iota + 1 // required property missing or unparseable
	KindTransport                     // connection failure, timeout, non-2xx status
	KindProtocol                      // body is not json, or a poll returned no records
	KindPending                       // operation still pending after a failed wait
	KindInvalid                       // argument rejected before any request is sent
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindPending:
		return "pending"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Sentinels for errors.Is, matched by kind only.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrProtocol      = &Error{Kind: KindProtocol}
	ErrPending       = &Error{Kind: KindPending}
	ErrInvalid       = &Error{Kind: KindInvalid}
)

type Error struct {
	Kind       Kind
	Op         string
	Service    string
	StatusCode int
	Err        error
}

func NewError(kind Kind, op string, service string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Service: service,
		Err:     err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Service != "" {
		b.WriteString(" (")
		b.WriteString(e.Service)
		b.WriteString(")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
