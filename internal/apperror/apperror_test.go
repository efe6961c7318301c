package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Duplicate("already exists"), http.StatusBadRequest},
		{Auth("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("no such log"), http.StatusNotFound},
		{Storage("db down", errors.New("timeout")), http.StatusBadGateway},
		{errors.New("unclassified"), http.StatusBadGateway},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHTTPStatusWrapped(t *testing.T) {
	err := fmt.Errorf("while creating: %w", Duplicate("already exists"))
	if got := HTTPStatus(err); got != http.StatusBadRequest {
		t.Fatalf("wrapped error lost its kind: got %d", got)
	}
}

func TestPayloadHidesCause(t *testing.T) {
	err := Storage("failed to store expense bill", errors.New("disk quota exceeded at /var/uploads"))
	payload := Payload(err)

	inner, ok := payload["error"].(map[string]string)
	if !ok {
		t.Fatalf("unexpected payload shape: %#v", payload)
	}
	if inner["kind"] != string(KindStorage) {
		t.Fatalf("unexpected kind: %q", inner["kind"])
	}
	if inner["message"] != "failed to store expense bill" {
		t.Fatalf("message must not leak internals: %q", inner["message"])
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFound("log not found"))
	if !IsKind(err, KindNotFound) {
		t.Fatal("expected KindNotFound")
	}
	if IsKind(err, KindForbidden) {
		t.Fatal("did not expect KindForbidden")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Fatal("plain errors have no kind")
	}
}
