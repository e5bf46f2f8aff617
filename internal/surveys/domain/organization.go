package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization escrows member surveys' KEKs under a 32-byte master key.
// The master key is used directly as the AEAD key with no derivation, and is
// immutable once set; rotation is a separate operational procedure.
type Organization struct {
	ID        uuid.UUID
	Name      string
	MasterKey []byte // 32 bytes, or empty if escrow is not enabled
	CreatedAt time.Time
}

// HasMasterKey reports whether the organization can escrow survey keys.
func (o *Organization) HasMasterKey() bool {
	return len(o.MasterKey) > 0
}
