package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewHasPrefixAndUUID(t *testing.T) {
	id := New("ord")
	if !strings.HasPrefix(id, "ord-") {
		t.Fatalf("expected ord- prefix, got %s", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "ord-")); err != nil {
		t.Fatalf("expected uuid suffix, got %s: %v", id, err)
	}
	if New("ord") == id {
		t.Fatalf("expected unique ids")
	}
}
