// Package verifier implements the Verifier role (the Relying Party) of the
// EL PASSO PS-signature protocol: cleartext credential verification and the
// two VerifyID entry points over a ProveID proof (spec §4.4).
package verifier

import (
	"fmt"
	"log"
	"time"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/lugondev/elpasso-ps-credential/internal/curve"
	"github.com/lugondev/elpasso-ps-credential/pkg/pscred"
)

// Verifier holds the RP's view of the IdP's public key.
type Verifier struct {
	params *curve.Params
	pk     *pscred.PublicKey
}

// NewVerifier configures a Verifier against an IdP's public key.
func NewVerifier(pk *pscred.PublicKey) (*Verifier, error) {
	if err := pk.Validate(); err != nil {
		return nil, fmt.Errorf("verifier: %w", err)
	}
	return &Verifier{params: curve.NewParams(), pk: pk}, nil
}

// Verify checks a credential against a raw user secret t and the full,
// cleartext attribute vector (spec §4.4 "verify"), mirroring the Requester's
// own check: e(sig1, K) == e(sig2, gg).
func (v *Verifier) Verify(cred *pscred.Credential, t *bls12381.Fr, allAttrs []string) bool {
	if len(allAttrs) != v.pk.L() {
		return false
	}
	if v.params.G1.IsZero(cred.Sig1) {
		return false
	}

	k := v.params.AddG2(v.pk.XX, v.params.MulG2(v.pk.YYi[0], t))
	for i, value := range allAttrs {
		k = v.params.AddG2(k, v.params.MulG2(v.pk.YYi[i+1], curve.HashAttribute(value)))
	}

	return v.params.PairingEqual(cred.Sig1, k, cred.Sig2, v.params.GG)
}

// ElPassoVerifyID checks a ProveID proof for a given (associatedData,
// serviceName) context and, when acct is non-nil, an expected accountability
// binding (spec §4.4). On success it returns the service-scoped pseudonym
// phi so the caller can perform identity retrieval (e.g. look up a returning
// user by pseudonym); on failure it returns (false, nil).
func (v *Verifier) ElPassoVerifyID(proof *pscred.IdProof, associatedData, serviceName string, acct *pscred.AccountabilityParams) (bool, *bls12381.PointG1) {
	start := time.Now()
	defer func() {
		log.Printf("verifier: el_passo_verify_id completed in %v", time.Since(start))
	}()

	if !v.checkProof(proof, associatedData, serviceName, acct) {
		return false, nil
	}
	return true, proof.Phi
}

// ElPassoVerifyIDWithoutIDRetrieval checks a ProveID proof identically to
// ElPassoVerifyID but does not surface the pseudonym, for callers that only
// need a yes/no admission decision and never perform identity retrieval
// (spec §4.4).
func (v *Verifier) ElPassoVerifyIDWithoutIDRetrieval(proof *pscred.IdProof, associatedData, serviceName string, acct *pscred.AccountabilityParams) bool {
	start := time.Now()
	defer func() {
		log.Printf("verifier: el_passo_verify_id_without_id_retrieval completed in %v", time.Since(start))
	}()

	return v.checkProof(proof, associatedData, serviceName, acct)
}

func (v *Verifier) checkProof(proof *pscred.IdProof, associatedData, serviceName string, acct *pscred.AccountabilityParams) bool {
	if len(proof.Attrs) != v.pk.L() {
		return false
	}
	if v.params.G1.IsZero(proof.Sig1) {
		return false
	}
	if proof.HasAccountability() != (acct != nil) {
		return false
	}

	hiddenIdx := hiddenSlots(proof.Attrs)
	wantRs := 1 + len(hiddenIdx)
	if acct != nil {
		wantRs++
	}
	if len(proof.Rs) != wantRs {
		return false
	}

	// knownPart = XX + Σ_plaintext YYi[i+1]·H(attrs[i]); k - knownPart is the
	// (unrevealed) hidden-attribute contribution the NIZK proves knowledge of.
	knownPart := v.pk.XX
	for i, value := range proof.Attrs {
		if value == "" {
			continue
		}
		knownPart = v.params.AddG2(knownPart, v.params.MulG2(v.pk.YYi[i+1], curve.HashAttribute(value)))
	}
	hiddenPart := v.params.AddG2(proof.K, v.params.NegG2(knownPart))
	negC := curve.NegFr(proof.C)

	rt := proof.Rs[0]
	kBlind := v.params.AddG2(v.params.MulG2(v.pk.YYi[0], rt), v.params.MulG2(hiddenPart, negC))
	for rank, idx := range hiddenIdx {
		kBlind = v.params.AddG2(kBlind, v.params.MulG2(v.pk.YYi[idx+1], proof.Rs[1+rank]))
	}

	service, err := v.params.HashServiceToG1(serviceName)
	if err != nil {
		return false
	}
	phiBlind := v.params.AddG1(v.params.MulG1(service, rt), v.params.MulG1(proof.Phi, negC))

	var e1Blind, e2Blind *bls12381.PointG1
	if acct != nil {
		re := proof.Rs[len(proof.Rs)-1]
		rm1 := proof.Rs[1] // first hidden attribute's response, reused as v_m1
		e1Blind = v.params.AddG1(v.params.MulG1(acct.G, re), v.params.MulG1(proof.Accountability.E1, negC))
		e2Blind = v.params.AddG1(v.params.AddG1(v.params.MulG1(acct.AuthorityPK, re), v.params.MulG1(acct.H, rm1)), v.params.MulG1(proof.Accountability.E2, negC))
	}

	th := curve.NewTranscriptHasher()
	th.WriteG1(v.params.G1, v.pk.G)
	th.WriteG2(v.params.G2, v.pk.GG)
	th.WriteG2(v.params.G2, v.pk.XX)
	th.WriteG1List(v.params.G1, v.pk.Yi)
	th.WriteG2List(v.params.G2, v.pk.YYi)
	th.WriteG1(v.params.G1, proof.Sig1)
	th.WriteG1(v.params.G1, proof.Sig2)
	th.WriteG2(v.params.G2, proof.K)
	th.WriteG2(v.params.G2, kBlind)
	th.WriteG1(v.params.G1, proof.Phi)
	th.WriteG1(v.params.G1, phiBlind)
	th.WriteStrings(proof.Attrs)
	th.WriteString(associatedData)
	th.WriteString(serviceName)
	if acct != nil {
		th.WriteG1(v.params.G1, acct.AuthorityPK)
		th.WriteG1(v.params.G1, acct.G)
		th.WriteG1(v.params.G1, acct.H)
		th.WriteG1(v.params.G1, proof.Accountability.E1)
		th.WriteG1(v.params.G1, proof.Accountability.E2)
		th.WriteG1(v.params.G1, e1Blind)
		th.WriteG1(v.params.G1, e2Blind)
	}
	cPrime := th.Challenge()

	if !cPrime.Equal(proof.C) {
		return false
	}

	return v.params.PairingEqual(proof.Sig1, proof.K, proof.Sig2, v.params.GG)
}

func hiddenSlots(attrs []string) []int {
	var idx []int
	for i, val := range attrs {
		if val == "" {
			idx = append(idx, i)
		}
	}
	return idx
}
