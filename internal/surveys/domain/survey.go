package domain

import (
	"time"

	"github.com/google/uuid"
)

// SurveyEncryption holds the persisted encryption state of one survey.
//
// Every non-empty wrap column is an independent AEAD envelope of the same
// KEK; unwrapping any of them yields bit-identical key material. The KEK
// itself is never stored. Wrap columns are only ever replaced whole, never
// mutated in place.
type SurveyEncryption struct {
	SurveyID       uuid.UUID     // Survey this state belongs to
	OrganizationID uuid.NullUUID // Owning organization, if any

	WrappedPassword []byte // KEK wrapped under a scrypt-derived password key (derived layout)
	WrappedRecovery []byte // KEK wrapped under a scrypt-derived recovery phrase key (derived layout)
	WrappedOrg      []byte // KEK wrapped directly under the org master key (direct layout)
	WrappedOIDC     []byte // KEK wrapped under the derived OIDC identity secret (derived layout)

	// RecoveryHint is "<first>...<last>" of the recovery phrase, stored in
	// clear for display. It must never narrow brute-force search beyond the
	// two boundary words.
	RecoveryHint string

	// LegacyKeyHash/LegacyKeySalt are the deprecated verification-only PBKDF2
	// record. They can confirm a submitted opaque key but cannot decrypt
	// ciphertext from the wrap-based era; the two eras must not be conflated.
	LegacyKeyHash []byte
	LegacyKeySalt []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDualEncryption reports whether the paired password+recovery wraps are installed.
func (s *SurveyEncryption) HasDualEncryption() bool {
	return len(s.WrappedPassword) > 0 && len(s.WrappedRecovery) > 0
}

// HasOrgEncryption reports whether the organization master key wrap is installed.
func (s *SurveyEncryption) HasOrgEncryption() bool {
	return len(s.WrappedOrg) > 0
}

// HasOIDCEncryption reports whether the OIDC identity wrap is installed.
func (s *SurveyEncryption) HasOIDCEncryption() bool {
	return len(s.WrappedOIDC) > 0
}

// HasLegacyKeyHash reports whether the deprecated verify-only record is present.
func (s *SurveyEncryption) HasLegacyKeyHash() bool {
	return len(s.LegacyKeyHash) > 0 && len(s.LegacyKeySalt) > 0
}

// HasAnyEncryption reports whether any wrap column is installed. Each column
// counts on its own, so a partially installed state (a lone recovery wrap,
// for example) still reads as encrypted and cannot be set up again.
func (s *SurveyEncryption) HasAnyEncryption() bool {
	return len(s.WrappedPassword) > 0 ||
		len(s.WrappedRecovery) > 0 ||
		len(s.WrappedOrg) > 0 ||
		len(s.WrappedOIDC) > 0
}
