package kb

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestTransportUserMessageNamesCause(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://127.0.0.1:8000/status", Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}}

	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"no cause", nil, "Could not reach the knowledge-base service."},
		{"refused", refused, "Could not reach the knowledge-base service: connection refused."},
		{"deadline", &url.Error{Op: "Get", URL: "http://kb/status", Err: context.DeadlineExceeded}, "Could not reach the knowledge-base service: request timed out."},
		{"dns", &url.Error{Op: "Get", URL: "http://kb/status", Err: &net.DNSError{Err: "no such host", Name: "kb"}}, "Could not reach the knowledge-base service: host not found."},
		{"other", &url.Error{Op: "Get", URL: "http://kb/status", Err: errors.New("tls: handshake failure")}, "Could not reach the knowledge-base service: tls: handshake failure."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := &Error{Kind: KindTransport, Op: "GET /status", Cause: tc.cause}
			if got := UserMessage(err); got != tc.want {
				t.Fatalf("UserMessage = %q, want %q", got, tc.want)
			}
		})
	}
}
