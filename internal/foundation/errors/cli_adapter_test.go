package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCLIErrorAdapterExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"config", ConfigError("bad").Build(), 7},
		{"auth", AuthError("denied").Build(), 5},
		{"notion", NotionError("502").Build(), 8},
		{"not found", NotFoundError("missing").Build(), 9},
		{"render", RenderError("template").Build(), 11},
		{"lock", LockError("queue full").Build(), 12},
	}
	for _, c := range cases {
		if got := a.ExitCodeFor(c.err); got != c.want {
			t.Errorf("%s: expected exit code %d got %d", c.name, c.want, got)
		}
	}
}

func TestCLIErrorAdapterFormatIncludesIdentifier(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	msg := a.FormatError(NotFoundError("post not found").WithContext("slug", "hello-world").Build())
	if !strings.Contains(msg, "slug=hello-world") {
		t.Fatalf("expected slug in message, got %q", msg)
	}

	verbose := NewCLIErrorAdapter(true, nil)
	cause := errors.New("dial tcp: timeout")
	msg = verbose.FormatError(NetworkError("request failed").WithCause(cause).Build())
	if !strings.Contains(msg, "dial tcp: timeout") {
		t.Fatalf("verbose output should include cause, got %q", msg)
	}
}
