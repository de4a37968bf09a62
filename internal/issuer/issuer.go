// Package issuer implements the Signer role (the Identity Provider) of the
// EL PASSO PS-signature protocol: key generation and blind signing of a
// user's attribute vector (spec §4.2).
package issuer

import (
	"fmt"
	"log"
	"time"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/lugondev/elpasso-ps-credential/internal/curve"
	"github.com/lugondev/elpasso-ps-credential/pkg/pscred"
)

// Signer holds the IdP's secret key (x, {y_i}) and the attribute capacity L
// fixed at setup. The secret key never leaves the Signer.
type Signer struct {
	params *curve.Params
	l      int

	sk *pscred.SecretKey
	pk *pscred.PublicKey
}

// NewSigner configures a Signer for an attribute capacity of l (the L of
// spec §3). Call KeyGen before using it to sign requests.
func NewSigner(l int) (*Signer, error) {
	if l < 1 {
		return nil, fmt.Errorf("issuer: attribute capacity must be >= 1, got %d", l)
	}
	return &Signer{params: curve.NewParams(), l: l}, nil
}

// KeyGen samples the IdP's secret key and derives the matching public key
// (spec §4.2). The secret key is retained internally; only the public key is
// returned.
func (s *Signer) KeyGen() (*pscred.PublicKey, error) {
	start := time.Now()
	defer func() {
		log.Printf("issuer: key_gen completed in %v for L=%d", time.Since(start), s.l)
	}()

	x, err := curve.RandomFr()
	if err != nil {
		return nil, fmt.Errorf("issuer: key_gen: sample x: %w", err)
	}

	y := make([]*bls12381.Fr, s.l+1)
	for k := range y {
		yk, err := curve.RandomFr()
		if err != nil {
			return nil, fmt.Errorf("issuer: key_gen: sample y[%d]: %w", k, err)
		}
		y[k] = yk
	}

	xx := s.params.MulG2(s.params.GG, x)
	yi := make([]*bls12381.PointG1, s.l+1)
	yyi := make([]*bls12381.PointG2, s.l+1)
	for k := range y {
		yi[k] = s.params.MulG1(s.params.G, y[k])
		yyi[k] = s.params.MulG2(s.params.GG, y[k])
	}

	s.sk = &pscred.SecretKey{X: x, Y: y}
	s.pk = &pscred.PublicKey{G: s.params.G, GG: s.params.GG, XX: xx, Yi: yi, YYi: yyi}

	log.Printf("issuer: generated key pair for L=%d", s.l)
	return s.pk, nil
}

// PublicKey returns the public key derived by the last KeyGen call, or nil
// if KeyGen has not been called yet.
func (s *Signer) PublicKey() *pscred.PublicKey {
	return s.pk
}

// SignCredRequest verifies the user's NIZK of the hidden attributes in req
// and, on success, blind-signs the resulting commitment (spec §4.2). The IdP
// never learns the value of any attribute the user marked hidden: it only
// ever touches req.A (an opaque commitment) and the plaintext slots.
func (s *Signer) SignCredRequest(req *pscred.SignRequest, associatedData string) (*pscred.Credential, error) {
	start := time.Now()
	log.Printf("issuer: sign_cred_request: %d attribute slots", len(req.Attrs))
	defer func() {
		log.Printf("issuer: sign_cred_request completed in %v", time.Since(start))
	}()

	if s.sk == nil {
		return nil, fmt.Errorf("issuer: sign_cred_request: key_gen has not been called")
	}
	if len(req.Attrs) != s.l {
		return nil, fmt.Errorf("issuer: sign_cred_request: %w: got %d slots, want %d", pscred.ErrAttributeCountMismatch, len(req.Attrs), s.l)
	}

	hiddenIdx := hiddenSlots(req.Attrs)
	if len(req.Rs) != 1+len(hiddenIdx) {
		return nil, fmt.Errorf("issuer: sign_cred_request: %w: got %d responses, want %d", pscred.ErrAttributeCountMismatch, len(req.Rs), 1+len(hiddenIdx))
	}

	// Reconstruct the prover's blinding commitment from the NIZK responses:
	// A' = Yi[0]·r_t + Σ_hidden Yi[i+1]·r_{m_i} - A·c (the standard Schnorr
	// opening recompute; plaintext attributes are not part of A's opening).
	aPrime := s.params.MulG1(s.pk.Yi[0], req.Rs[0])
	for rank, idx := range hiddenIdx {
		aPrime = s.params.AddG1(aPrime, s.params.MulG1(s.pk.Yi[idx+1], req.Rs[1+rank]))
	}
	negC := curve.NegFr(req.C)
	aPrime = s.params.AddG1(aPrime, s.params.MulG1(req.A, negC))

	th := curve.NewTranscriptHasher()
	th.WriteG1(s.params.G1, s.pk.G)
	th.WriteG1List(s.params.G1, s.pk.Yi)
	th.WriteG1(s.params.G1, req.A)
	th.WriteG1(s.params.G1, aPrime)
	th.WriteString(associatedData)
	cPrime := th.Challenge()

	if !cPrime.Equal(req.C) {
		return nil, fmt.Errorf("issuer: sign_cred_request: %w: challenge mismatch", pscred.ErrProofRejected)
	}

	u, err := curve.RandomFr()
	if err != nil {
		return nil, fmt.Errorf("issuer: sign_cred_request: sample u: %w", err)
	}
	h := s.params.MulG1(s.params.G, u)

	// M = A + Σ_plaintext Yi[i+1]·H(attrs[i]); A already carries the hidden
	// attributes' contribution (spec §4.2 step 4).
	m := req.A
	for i, value := range req.Attrs {
		if value == "" {
			continue
		}
		m = s.params.AddG1(m, s.params.MulG1(s.pk.Yi[i+1], curve.HashAttribute(value)))
	}

	// sig2 = h·x + M·u (spec §4.2 step 4, "Equivalently" form).
	sig2 := s.params.AddG1(s.params.MulG1(h, s.sk.X), s.params.MulG1(m, u))

	return &pscred.Credential{Sig1: h, Sig2: sig2}, nil
}

// hiddenSlots returns the indices of attribute slots carried as empty
// strings in req.Attrs — the wire convention for "this slot is hidden"
// (spec §3 invariants).
func hiddenSlots(attrs []string) []int {
	var idx []int
	for i, v := range attrs {
		if v == "" {
			idx = append(idx, i)
		}
	}
	return idx
}
