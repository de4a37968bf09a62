// Package pscred holds the EL PASSO PS-signature protocol's shared data
// model (spec §3): key material, attributes, and the three wire messages
// exchanged between the Signer (IdP), the Requester (User), and the
// Verifier (RP).
package pscred

import (
	bls12381 "github.com/kilic/bls12-381"
)

// SecretKey is the IdP's private material: x ∈ Fr and y[0..L] ∈ Fr. It is
// created once at setup and never serialized (spec §3 Lifecycles).
type SecretKey struct {
	X *bls12381.Fr
	Y []*bls12381.Fr // len L+1; Y[0] binds the user secret t, Y[1..L] bind attributes
}

// L returns the attribute capacity implied by this key's shape.
func (sk *SecretKey) L() int {
	return len(sk.Y) - 1
}

// PublicKey is the IdP's broadcast key material, deterministically derived
// from a SecretKey given fixed generators (g, gg) (spec §3).
type PublicKey struct {
	G   *bls12381.PointG1   // generator of G1
	GG  *bls12381.PointG2   // generator of G2
	XX  *bls12381.PointG2   // gg·x
	Yi  []*bls12381.PointG1 // Yi[k] = g·y[k], len L+1
	YYi []*bls12381.PointG2 // YYi[k] = gg·y[k], len L+1
}

// L returns the attribute capacity this key was generated for.
func (pk *PublicKey) L() int {
	return len(pk.Yi) - 1
}

// Validate checks the shape invariant from spec §3: len(Yi) == len(YYi) and
// neither is empty. It does not check individual points for being
// non-identity; callers that need that guarantee use IsIdentity-sensitive
// checks at the point of use (spec §7 ErrIdentityPoint is about signature
// and proof elements, not static key material).
func (pk *PublicKey) Validate() error {
	if len(pk.Yi) == 0 || len(pk.YYi) == 0 || len(pk.Yi) != len(pk.YYi) {
		return ErrInvalidKeyShape
	}
	return nil
}

// Attribute is a single credential attribute slot (spec §3): its plaintext
// value, and whether it is hidden from the IdP at signing time.
type Attribute struct {
	Value  string
	Hidden bool
}

// SignRequest is the User's blind-signing request (spec §3, §6): a
// Pedersen-style commitment A to the user secret and hidden attributes, and
// a Fiat–Shamir NIZK (c, Rs) of its opening. Attrs carries the plaintext
// attribute values in slot order, with hidden slots as empty strings.
type SignRequest struct {
	A     *bls12381.PointG1
	C     *bls12381.Fr
	Rs    []*bls12381.Fr
	Attrs []string
}

// Credential is a PS signature: two G1 elements, before or after unblinding
// and randomization (spec §3).
type Credential struct {
	Sig1 *bls12381.PointG1
	Sig2 *bls12381.PointG1
}

// Accountability is the optional ElGamal ciphertext of the accountability
// attribute attached to an IdProof (spec §3, §4.3 step 4). A nil
// *Accountability on an IdProof means no accountability ciphertext was
// attached; this is the idiomatic Go stand-in for the spec's "optional
// trailing fields" sum type (spec §9).
type Accountability struct {
	E1 *bls12381.PointG1
	E2 *bls12381.PointG1
}

// AccountabilityParams are the authority's public material needed to attach
// or verify an Accountability ciphertext (spec §4.3 step 4, §4.4): an
// ElGamal public key and two independent G1 bases distinct from the
// signature's own generators.
type AccountabilityParams struct {
	AuthorityPK *bls12381.PointG1
	G           *bls12381.PointG1
	H           *bls12381.PointG1
}

// IdProof is the User's ProveID message to the RP (spec §3, §6): a
// randomized credential, a blinded verification commitment k, a
// service-scoped pseudonym phi, a joint NIZK (c, Rs) over the hidden
// attributes (and, when present, the accountability ciphertext), and the
// plaintext attributes in slot order.
type IdProof struct {
	Sig1           *bls12381.PointG1
	Sig2           *bls12381.PointG1
	K              *bls12381.PointG2
	Phi            *bls12381.PointG1
	C              *bls12381.Fr
	Rs             []*bls12381.Fr
	Attrs          []string
	Accountability *Accountability
}

// HasAccountability reports whether this proof carries an ElGamal
// accountability ciphertext.
func (p *IdProof) HasAccountability() bool {
	return p.Accountability != nil
}

// HiddenIndices returns the indices (in attribute-slot order, 0-based) of
// the hidden attributes among attrs.
func HiddenIndices(attrs []Attribute) []int {
	var idx []int
	for i, a := range attrs {
		if a.Hidden {
			idx = append(idx, i)
		}
	}
	return idx
}

// PlaintextValues returns the (index, value) pairs of the plaintext
// attributes among attrs, in slot order.
func PlaintextValues(attrs []Attribute) []struct {
	Index int
	Value string
} {
	var out []struct {
		Index int
		Value string
	}
	for i, a := range attrs {
		if !a.Hidden {
			out = append(out, struct {
				Index int
				Value string
			}{i, a.Value})
		}
	}
	return out
}

// OutAttrs projects attrs to the plaintext-or-empty slot-ordered string
// vector carried on the wire in SignRequest.Attrs / IdProof.Attrs (spec §3
// invariants: "attrs in IdProof must be the plaintext attribute strings in
// original slot order; hidden slots are carried as empty strings").
func OutAttrs(attrs []Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		if !a.Hidden {
			out[i] = a.Value
		}
	}
	return out
}
