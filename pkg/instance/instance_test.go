package instance

import "testing"

func TestIDPrefersEnvironment(t *testing.T) {
	t.Setenv("BACKOFFICE_INSTANCE_ID", " api-2 ")
	if got := ID(); got != "api-2" {
		t.Fatalf("expected api-2, got %q", got)
	}
}

func TestIDFallsBack(t *testing.T) {
	t.Setenv("BACKOFFICE_INSTANCE_ID", "")
	if got := ID(); got == "" {
		t.Fatal("expected a non-empty fallback id")
	}
}
