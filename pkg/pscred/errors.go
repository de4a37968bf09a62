package pscred

import "errors"

// Error kinds from spec §7. All failures are returned at the call site; no
// partial state persists on any of these paths.
var (
	// ErrInvalidEncoding covers a wire tag mismatch, a truncated buffer, or a
	// varint outside the canonical range.
	ErrInvalidEncoding = errors.New("pscred: invalid encoding")

	// ErrInvalidKeyShape covers len(Yi) != len(YYi), or either being empty.
	ErrInvalidKeyShape = errors.New("pscred: invalid public key shape")

	// ErrAttributeCountMismatch covers an attribute vector whose length
	// doesn't match the public key's capacity L.
	ErrAttributeCountMismatch = errors.New("pscred: attribute count mismatch")

	// ErrProofRejected covers a NIZK challenge mismatch or a failing pairing
	// verification equation.
	ErrProofRejected = errors.New("pscred: proof rejected")

	// ErrIdentityPoint covers a group element that must be non-identity but
	// is the identity.
	ErrIdentityPoint = errors.New("pscred: unexpected identity point")

	// ErrAccountabilityBinding covers the Open Question resolved in
	// DESIGN.md: requesting accountability while attribute slot 0 is
	// plaintext makes the ElGamal binding meaningless, so it is rejected
	// rather than silently accepted.
	ErrAccountabilityBinding = errors.New("pscred: accountability requires the first attribute slot to be hidden")
)
