package domain

// Zero overwrites b in place so key material does not linger in memory after
// use. A nil slice is a no-op.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
