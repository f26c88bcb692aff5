package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/petal-labs/bundlecheck/catalog"
)

func noop(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func TestRegisterAndCallByID(t *testing.T) {
	r := New()
	_, err := r.Register("translate", catalog.Tool{ID: "translate"}, func(ctx context.Context, args map[string]any) (any, error) {
		return args["dx"], nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.CallByID(context.Background(), "translate", map[string]any{"dx": 4})
	if err != nil {
		t.Fatalf("CallByID() error = %v", err)
	}
	if got != 4 {
		t.Fatalf("CallByID() = %v, want 4", got)
	}
}

func TestCallByIDUnknownTool(t *testing.T) {
	r := New()
	_, err := r.CallByID(context.Background(), "ghost", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("CallByID() error = %v, want ErrUnknownTool", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	if _, err := r.Register("translate", catalog.Tool{ID: "translate"}, noop); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := r.Register("translate", catalog.Tool{ID: "translate"}, noop)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second Register() error = %v, want ErrDuplicate", err)
	}
}

func TestRegisterRejectsNilInvokerAndEmptyName(t *testing.T) {
	r := New()
	if _, err := r.Register("translate", catalog.Tool{}, nil); err == nil {
		t.Fatal("Register() with nil invoker succeeded")
	}
	if _, err := r.Register("", catalog.Tool{}, noop); err == nil {
		t.Fatal("Register() with empty name succeeded")
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	r := New()
	names := []string{"zeta", "alpha", "mike"}
	for _, n := range names {
		if _, err := r.Register(n, catalog.Tool{ID: n}, noop); err != nil {
			t.Fatalf("Register(%s) error = %v", n, err)
		}
	}
	all := r.All()
	if len(all) != len(names) {
		t.Fatalf("All() len = %d, want %d", len(all), len(names))
	}
	for i, n := range names {
		if all[i].Name != n {
			t.Fatalf("All()[%d].Name = %q, want %q", i, all[i].Name, n)
		}
	}
}

func TestHandleUnregisterIsIdempotent(t *testing.T) {
	r := New()
	h, err := r.Register("translate", catalog.Tool{ID: "translate"}, noop)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !r.Has("translate") {
		t.Fatal("Has() = false after Register")
	}

	h.Unregister()
	h.Unregister()

	if r.Has("translate") || r.Len() != 0 {
		t.Fatal("binding still present after Unregister")
	}
	if _, err := r.CallByID(context.Background(), "translate", nil); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("CallByID() after Unregister error = %v, want ErrUnknownTool", err)
	}

	// The name is free again once the handle released it.
	if _, err := r.Register("translate", catalog.Tool{ID: "translate"}, noop); err != nil {
		t.Fatalf("re-Register() error = %v", err)
	}
}
