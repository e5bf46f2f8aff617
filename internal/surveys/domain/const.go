// Package domain defines the survey encryption domain models: the per-survey
// wrap state, organizations with master keys, OIDC identities, and the unlock
// method taxonomy.
package domain

// UnlockMethod identifies which wrap path recovered (or can recover) a
// survey's KEK. Adding a method is a compile-time-checked addition here plus
// a new variant in the session grant; string keys are never guessed at call
// sites.
type UnlockMethod string

const (
	// UnlockPassword unwraps via the user password wrap.
	UnlockPassword UnlockMethod = "password"

	// UnlockRecovery unwraps via the recovery phrase wrap.
	UnlockRecovery UnlockMethod = "recovery"

	// UnlockOrg unwraps via the organization master key wrap.
	UnlockOrg UnlockMethod = "org"

	// UnlockOIDC unwraps via the OIDC identity secret wrap.
	UnlockOIDC UnlockMethod = "oidc"

	// UnlockLegacy verifies (but cannot re-derive) the deprecated opaque key.
	UnlockLegacy UnlockMethod = "legacy"
)

// ParseUnlockMethod converts a string to an UnlockMethod.
// Returns false for unknown values.
func ParseUnlockMethod(s string) (UnlockMethod, bool) {
	switch UnlockMethod(s) {
	case UnlockPassword, UnlockRecovery, UnlockOrg, UnlockOIDC, UnlockLegacy:
		return UnlockMethod(s), true
	default:
		return "", false
	}
}
