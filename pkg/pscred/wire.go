package pscred

import (
	"fmt"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/lugondev/elpasso-ps-credential/pkg/wire"
)

// EncodePublicKey serializes a PublicKey per spec §6:
// G1 g | G2 gg | G2 XX | G1List Yi | G2List YYi.
func EncodePublicKey(g1 *bls12381.G1, g2 *bls12381.G2, pk *PublicKey) []byte {
	b := wire.New()
	b.AppendG1(g1, pk.G, true)
	b.AppendG2(g2, pk.GG, true)
	b.AppendG2(g2, pk.XX, true)
	b.AppendG1List(g1, pk.Yi)
	b.AppendG2List(g2, pk.YYi)
	return b.Bytes()
}

// DecodePublicKey parses a PublicKey encoded by EncodePublicKey.
func DecodePublicKey(g1 *bls12381.G1, g2 *bls12381.G2, data []byte) (*PublicKey, error) {
	b := wire.FromBytes(data)
	offset := 0

	g, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: public key g: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: public key g: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	gg, n, err := b.ParseG2(g2, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: public key gg: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: public key gg: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	xx, n, err := b.ParseG2(g2, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: public key XX: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: public key XX: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	yi, n, err := b.ParseG1List(g1, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: public key Yi: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: public key Yi: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	yyi, n, err := b.ParseG2List(g2, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: public key YYi: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: public key YYi: wrong tag", ErrInvalidEncoding)
	}

	pk := &PublicKey{G: g, GG: gg, XX: xx, Yi: yi, YYi: yyi}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// EncodeCredential serializes a Credential per spec §6: G1 sig1 | G1 sig2.
func EncodeCredential(g1 *bls12381.G1, c *Credential) []byte {
	b := wire.New()
	b.AppendG1(g1, c.Sig1, true)
	b.AppendG1(g1, c.Sig2, true)
	return b.Bytes()
}

// DecodeCredential parses a Credential encoded by EncodeCredential.
func DecodeCredential(g1 *bls12381.G1, data []byte) (*Credential, error) {
	b := wire.FromBytes(data)
	offset := 0

	sig1, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: credential sig1: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: credential sig1: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	sig2, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: credential sig2: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: credential sig2: wrong tag", ErrInvalidEncoding)
	}

	return &Credential{Sig1: sig1, Sig2: sig2}, nil
}

// EncodeSignRequest serializes a SignRequest per spec §6:
// G1 A | Fr c | FrList rs | StrList attrs.
func EncodeSignRequest(g1 *bls12381.G1, req *SignRequest) []byte {
	b := wire.New()
	b.AppendG1(g1, req.A, true)
	b.AppendFr(req.C, true)
	b.AppendFrList(req.Rs)
	b.AppendStrList(req.Attrs)
	return b.Bytes()
}

// DecodeSignRequest parses a SignRequest encoded by EncodeSignRequest.
func DecodeSignRequest(g1 *bls12381.G1, data []byte) (*SignRequest, error) {
	b := wire.FromBytes(data)
	offset := 0

	a, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: sign request A: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: sign request A: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	c, n, err := b.ParseFr(offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: sign request c: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: sign request c: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	rs, n, err := b.ParseFrList(offset)
	if err != nil {
		return nil, fmt.Errorf("%w: sign request rs: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: sign request rs: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	attrs, n, err := b.ParseStrList(offset)
	if err != nil {
		return nil, fmt.Errorf("%w: sign request attrs: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: sign request attrs: wrong tag", ErrInvalidEncoding)
	}

	return &SignRequest{A: a, C: c, Rs: rs, Attrs: attrs}, nil
}

// EncodeIdProof serializes an IdProof per spec §6: G1 sig1 | G1 sig2 | G2 k |
// G1 phi | Fr c | FrList rs | StrList attrs | [optional: G1 E1 | G1 E2].
// Presence of E1/E2 is a pure function of whether the proof carries an
// Accountability ciphertext — there is no presence byte (spec §9).
func EncodeIdProof(g1 *bls12381.G1, g2 *bls12381.G2, p *IdProof) []byte {
	b := wire.New()
	b.AppendG1(g1, p.Sig1, true)
	b.AppendG1(g1, p.Sig2, true)
	b.AppendG2(g2, p.K, true)
	b.AppendG1(g1, p.Phi, true)
	b.AppendFr(p.C, true)
	b.AppendFrList(p.Rs)
	b.AppendStrList(p.Attrs)
	if p.Accountability != nil {
		b.AppendG1(g1, p.Accountability.E1, true)
		b.AppendG1(g1, p.Accountability.E2, true)
	}
	return b.Bytes()
}

// DecodeIdProof parses an IdProof encoded by EncodeIdProof. Whether the
// trailing Accountability pair is present is inferred from whether any bytes
// remain after attrs (spec §6, §9).
func DecodeIdProof(g1 *bls12381.G1, g2 *bls12381.G2, data []byte) (*IdProof, error) {
	b := wire.FromBytes(data)
	offset := 0

	sig1, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof sig1: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof sig1: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	sig2, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof sig2: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof sig2: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	k, n, err := b.ParseG2(g2, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof k: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof k: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	phi, n, err := b.ParseG1(g1, offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof phi: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof phi: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	c, n, err := b.ParseFr(offset, true)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof c: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof c: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	rs, n, err := b.ParseFrList(offset)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof rs: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof rs: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	attrs, n, err := b.ParseStrList(offset)
	if err != nil {
		return nil, fmt.Errorf("%w: id proof attrs: %v", ErrInvalidEncoding, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: id proof attrs: wrong tag", ErrInvalidEncoding)
	}
	offset += n

	proof := &IdProof{Sig1: sig1, Sig2: sig2, K: k, Phi: phi, C: c, Rs: rs, Attrs: attrs}

	if b.Remaining(offset) > 0 {
		e1, n, err := b.ParseG1(g1, offset, true)
		if err != nil {
			return nil, fmt.Errorf("%w: id proof E1: %v", ErrInvalidEncoding, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: id proof E1: wrong tag", ErrInvalidEncoding)
		}
		offset += n

		e2, n, err := b.ParseG1(g1, offset, true)
		if err != nil {
			return nil, fmt.Errorf("%w: id proof E2: %v", ErrInvalidEncoding, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: id proof E2: wrong tag", ErrInvalidEncoding)
		}

		proof.Accountability = &Accountability{E1: e1, E2: e2}
	}

	return proof, nil
}
