// Package holder implements the Requester role (the User) of the EL PASSO
// PS-signature protocol: request generation, credential unblinding and
// randomization, plaintext verification, and the ProveID selective
// disclosure proof (spec §4.3).
package holder

import (
	"fmt"
	"log"
	"time"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/google/uuid"

	"github.com/lugondev/elpasso-ps-credential/internal/curve"
	"github.com/lugondev/elpasso-ps-credential/pkg/pscred"
)

// NewAssociatedData mints a fresh, opaque session token suitable for binding
// into the Fiat–Shamir transcript of GenerateRequest or ElPassoProveID as
// associatedData (spec §1, §6): callers that have no natural session or
// request identifier of their own can use this instead of rolling one.
func NewAssociatedData() string {
	return uuid.NewString()
}

// Requester holds the user's view of the IdP's public key and the attribute
// capacity it was issued against.
type Requester struct {
	params *curve.Params
	pk     *pscred.PublicKey
}

// NewRequester configures a Requester against an IdP's public key.
func NewRequester(pk *pscred.PublicKey) (*Requester, error) {
	if err := pk.Validate(); err != nil {
		return nil, fmt.Errorf("holder: %w", err)
	}
	return &Requester{params: curve.NewParams(), pk: pk}, nil
}

// GenerateRequest samples a fresh user secret t and builds a SignRequest
// committing to it and the hidden attributes, along with a Fiat–Shamir NIZK
// of the commitment's opening (spec §4.3 steps 1-7). The caller must retain
// the returned secret t; Verify and ElPassoProveID need it to use the
// credential.
func (r *Requester) GenerateRequest(attrs []pscred.Attribute, associatedData string) (*pscred.SignRequest, *bls12381.Fr, error) {
	start := time.Now()
	defer func() {
		log.Printf("holder: generate_request completed in %v", time.Since(start))
	}()

	if len(attrs) != r.pk.L() {
		return nil, nil, fmt.Errorf("holder: generate_request: %w: got %d attributes, want %d", pscred.ErrAttributeCountMismatch, len(attrs), r.pk.L())
	}

	t, err := curve.RandomFr()
	if err != nil {
		return nil, nil, fmt.Errorf("holder: generate_request: sample t: %w", err)
	}

	hiddenIdx := pscred.HiddenIndices(attrs)

	a := r.params.MulG1(r.pk.Yi[0], t)
	for _, idx := range hiddenIdx {
		a = r.params.AddG1(a, r.params.MulG1(r.pk.Yi[idx+1], curve.HashAttribute(attrs[idx].Value)))
	}

	vt, err := curve.RandomFr()
	if err != nil {
		return nil, nil, fmt.Errorf("holder: generate_request: sample v_t: %w", err)
	}
	vm := make([]*bls12381.Fr, len(hiddenIdx))
	for rank := range hiddenIdx {
		vm[rank], err = curve.RandomFr()
		if err != nil {
			return nil, nil, fmt.Errorf("holder: generate_request: sample v_m[%d]: %w", rank, err)
		}
	}

	aBlind := r.params.MulG1(r.pk.Yi[0], vt)
	for rank, idx := range hiddenIdx {
		aBlind = r.params.AddG1(aBlind, r.params.MulG1(r.pk.Yi[idx+1], vm[rank]))
	}

	th := curve.NewTranscriptHasher()
	th.WriteG1(r.params.G1, r.pk.G)
	th.WriteG1List(r.params.G1, r.pk.Yi)
	th.WriteG1(r.params.G1, a)
	th.WriteG1(r.params.G1, aBlind)
	th.WriteString(associatedData)
	c := th.Challenge()

	rt := curve.AddFr(vt, curve.MulFr(c, t))
	rs := make([]*bls12381.Fr, 1+len(hiddenIdx))
	rs[0] = rt
	for rank, idx := range hiddenIdx {
		rs[1+rank] = curve.AddFr(vm[rank], curve.MulFr(c, curve.HashAttribute(attrs[idx].Value)))
	}

	req := &pscred.SignRequest{A: a, C: c, Rs: rs, Attrs: pscred.OutAttrs(attrs)}
	return req, t, nil
}

// UnblindCredential returns the credential the Signer produced, unchanged.
//
// Under this tree's Yi[0]-bound convention for the user secret (DESIGN.md,
// "g vs Yi[0]"), A (and therefore M, and therefore sig2) already carries
// Yi[0]·t as part of its exponent — there is no separate sig1·t blinding
// term left for the Requester to strip. t is kept only as the argument
// Verify/ElPassoProveID need to reconstruct that same exponent. The
// parameter is retained so call sites keep passing t explicitly, matching
// the shape of RandomizeCredential/Verify that follow it.
func (r *Requester) UnblindCredential(cred *pscred.Credential, t *bls12381.Fr) *pscred.Credential {
	return &pscred.Credential{Sig1: cred.Sig1, Sig2: cred.Sig2}
}

// RandomizeCredential re-randomizes a credential by a fresh scalar r,
// preserving the verification equation (spec §4.3 "randomize_credential"):
// (sig1, sig2) -> (sig1·r, sig2·r).
func (r *Requester) RandomizeCredential(cred *pscred.Credential) (*pscred.Credential, error) {
	rr, err := curve.RandomFr()
	if err != nil {
		return nil, fmt.Errorf("holder: randomize_credential: sample r: %w", err)
	}
	return &pscred.Credential{
		Sig1: r.params.MulG1(cred.Sig1, rr),
		Sig2: r.params.MulG1(cred.Sig2, rr),
	}, nil
}

// Verify checks a credential against the user secret t and the full,
// cleartext attribute vector (spec §4.3 "verify"): e(sig1, K) == e(sig2,
// gg), K = XX + YYi[0]·t + Σ_{i=1..L} YYi[i]·H(allAttrs[i-1]). sig1 must be
// non-identity.
func (r *Requester) Verify(cred *pscred.Credential, t *bls12381.Fr, allAttrs []string) bool {
	if len(allAttrs) != r.pk.L() {
		return false
	}
	if r.params.G1.IsZero(cred.Sig1) {
		return false
	}

	k := r.params.AddG2(r.pk.XX, r.params.MulG2(r.pk.YYi[0], t))
	for i, value := range allAttrs {
		k = r.params.AddG2(k, r.params.MulG2(r.pk.YYi[i+1], curve.HashAttribute(value)))
	}

	return r.params.PairingEqual(cred.Sig1, k, cred.Sig2, r.params.GG)
}

// ElPassoProveID produces a service-scoped, selectively-disclosing proof of
// possession of cred (spec §4.3): a randomized credential, a deterministic
// pseudonym for serviceName, a blinded verification commitment k over every
// attribute (plaintext values read directly, hidden values supplied from
// the caller's own attrs — k hides them exactly as A hid them from the
// Signer at issuance), and a joint NIZK binding t, the hidden attributes,
// and (when acct is non-nil) an ElGamal ciphertext of the first attribute to
// this specific (associatedData, serviceName) context.
//
// acct may be nil to omit the accountability ciphertext. When non-nil,
// attrs[0] must be hidden (spec's Open Question on accountability binding,
// resolved in DESIGN.md): otherwise ErrAccountabilityBinding is returned.
func (r *Requester) ElPassoProveID(cred *pscred.Credential, attrs []pscred.Attribute, t *bls12381.Fr, associatedData, serviceName string, acct *pscred.AccountabilityParams) (*pscred.IdProof, error) {
	start := time.Now()
	log.Printf("holder: el_passo_prove_id: service=%q accountability=%v", serviceName, acct != nil)
	defer func() {
		log.Printf("holder: el_passo_prove_id completed in %v", time.Since(start))
	}()

	if len(attrs) != r.pk.L() {
		return nil, fmt.Errorf("holder: el_passo_prove_id: %w: got %d attributes, want %d", pscred.ErrAttributeCountMismatch, len(attrs), r.pk.L())
	}
	if acct != nil && !attrs[0].Hidden {
		return nil, fmt.Errorf("holder: el_passo_prove_id: %w", pscred.ErrAccountabilityBinding)
	}

	randomized, err := r.RandomizeCredential(cred)
	if err != nil {
		return nil, fmt.Errorf("holder: el_passo_prove_id: %w", err)
	}

	hiddenIdx := pscred.HiddenIndices(attrs)

	k := r.params.AddG2(r.pk.XX, r.params.MulG2(r.pk.YYi[0], t))
	for i, attr := range attrs {
		k = r.params.AddG2(k, r.params.MulG2(r.pk.YYi[i+1], curve.HashAttribute(attr.Value)))
	}

	service, err := r.params.HashServiceToG1(serviceName)
	if err != nil {
		return nil, fmt.Errorf("holder: el_passo_prove_id: %w", err)
	}
	phi := r.params.MulG1(service, t)

	vt, err := curve.RandomFr()
	if err != nil {
		return nil, fmt.Errorf("holder: el_passo_prove_id: sample v_t: %w", err)
	}
	vm := make([]*bls12381.Fr, len(hiddenIdx))
	for rank := range hiddenIdx {
		vm[rank], err = curve.RandomFr()
		if err != nil {
			return nil, fmt.Errorf("holder: el_passo_prove_id: sample v_m[%d]: %w", rank, err)
		}
	}

	kBlind := r.params.MulG2(r.pk.YYi[0], vt)
	for rank, idx := range hiddenIdx {
		kBlind = r.params.AddG2(kBlind, r.params.MulG2(r.pk.YYi[idx+1], vm[rank]))
	}
	phiBlind := r.params.MulG1(service, vt)

	var e *bls12381.Fr
	var ve *bls12381.Fr
	var acctCT *pscred.Accountability
	var e1, e2, e1Blind, e2Blind *bls12381.PointG1
	if acct != nil {
		e, err = curve.RandomFr()
		if err != nil {
			return nil, fmt.Errorf("holder: el_passo_prove_id: sample e: %w", err)
		}
		ve, err = curve.RandomFr()
		if err != nil {
			return nil, fmt.Errorf("holder: el_passo_prove_id: sample v_e: %w", err)
		}

		e1 = r.params.MulG1(acct.G, e)
		e2 = r.params.AddG1(r.params.MulG1(acct.AuthorityPK, e), r.params.MulG1(acct.H, curve.HashAttribute(attrs[hiddenIdx[0]].Value)))
		acctCT = &pscred.Accountability{E1: e1, E2: e2}

		e1Blind = r.params.MulG1(acct.G, ve)
		e2Blind = r.params.AddG1(r.params.MulG1(acct.AuthorityPK, ve), r.params.MulG1(acct.H, vm[0]))
	}

	th := curve.NewTranscriptHasher()
	th.WriteG1(r.params.G1, r.pk.G)
	th.WriteG2(r.params.G2, r.pk.GG)
	th.WriteG2(r.params.G2, r.pk.XX)
	th.WriteG1List(r.params.G1, r.pk.Yi)
	th.WriteG2List(r.params.G2, r.pk.YYi)
	th.WriteG1(r.params.G1, randomized.Sig1)
	th.WriteG1(r.params.G1, randomized.Sig2)
	th.WriteG2(r.params.G2, k)
	th.WriteG2(r.params.G2, kBlind)
	th.WriteG1(r.params.G1, phi)
	th.WriteG1(r.params.G1, phiBlind)
	th.WriteStrings(pscred.OutAttrs(attrs))
	th.WriteString(associatedData)
	th.WriteString(serviceName)
	if acct != nil {
		th.WriteG1(r.params.G1, acct.AuthorityPK)
		th.WriteG1(r.params.G1, acct.G)
		th.WriteG1(r.params.G1, acct.H)
		th.WriteG1(r.params.G1, e1)
		th.WriteG1(r.params.G1, e2)
		th.WriteG1(r.params.G1, e1Blind)
		th.WriteG1(r.params.G1, e2Blind)
	}
	c := th.Challenge()

	rt := curve.AddFr(vt, curve.MulFr(c, t))
	rs := make([]*bls12381.Fr, 0, 2+len(hiddenIdx))
	rs = append(rs, rt)
	for rank, idx := range hiddenIdx {
		rs = append(rs, curve.AddFr(vm[rank], curve.MulFr(c, curve.HashAttribute(attrs[idx].Value))))
	}
	if acct != nil {
		re := curve.AddFr(ve, curve.MulFr(c, e))
		rs = append(rs, re)
	}

	return &pscred.IdProof{
		Sig1:           randomized.Sig1,
		Sig2:           randomized.Sig2,
		K:              k,
		Phi:            phi,
		C:              c,
		Rs:             rs,
		Attrs:          pscred.OutAttrs(attrs),
		Accountability: acctCT,
	}, nil
}
