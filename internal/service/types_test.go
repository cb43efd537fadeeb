package service_test

import (
	"errors"
	"fmt"
	"testing"

	"duties/internal/service"
)

func TestStatusNext(t *testing.T) {
	tests := []struct {
		from service.Status
		want service.Status
	}{
		{service.StatusPending, service.StatusInProgress},
		{service.StatusInProgress, service.StatusDone},
		{service.StatusDone, service.StatusPending},
		{service.Status("archived"), service.StatusPending},
		{service.Status(""), service.StatusPending},
	}
	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("%q.Next() = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestStatusFullCycle(t *testing.T) {
	s := service.StatusPending
	for i := 0; i < 3; i++ {
		s = s.Next()
	}
	if s != service.StatusPending {
		t.Errorf("expected cycle to return to pending, got %q", s)
	}
}

func TestDutyFilterKey(t *testing.T) {
	id := "list-1"
	if got := (service.DutyFilter{}).Key(); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
	if got := (service.DutyFilter{ListID: &id}).Key(); got != "list:list-1" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestNetworkErrorFallbackMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := service.NewNetworkError(0, "", cause)
	if err.Error() != service.GenericErrorMessage {
		t.Errorf("expected generic message, got %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}

	wrapped := fmt.Errorf("fetch lists: %w", service.NewNetworkError(403, "forbidden", nil))
	if !service.IsAuthError(wrapped) {
		t.Error("expected wrapped 403 to be an auth error")
	}
	if got := service.ErrorMessage(wrapped); got != "forbidden" {
		t.Errorf("expected server message, got %q", got)
	}
}
