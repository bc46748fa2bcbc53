package xid

import (
	"github.com/google/uuid"
)

// New returns a random identifier with a readable type prefix.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
