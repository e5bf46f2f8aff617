package domain

// Zero overwrites a byte slice with zeros. Used to clear KEKs and derived
// keys from memory as soon as they are no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
