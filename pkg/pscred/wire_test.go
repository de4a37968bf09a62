package pscred

import (
	"testing"

	bls12381 "github.com/kilic/bls12-381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/elpasso-ps-credential/internal/curve"
)

func testKeyPair(t *testing.T, p *curve.Params, l int) (*SecretKey, *PublicKey) {
	t.Helper()

	x, err := curve.RandomFr()
	require.NoError(t, err)

	y := make([]*bls12381.Fr, l+1)
	yi := make([]*bls12381.PointG1, l+1)
	yyi := make([]*bls12381.PointG2, l+1)
	for i := range y {
		yk, err := curve.RandomFr()
		require.NoError(t, err)
		y[i] = yk
		yi[i] = p.MulG1(p.G, yk)
		yyi[i] = p.MulG2(p.GG, yk)
	}

	sk := &SecretKey{X: x, Y: y}
	pk := &PublicKey{G: p.G, GG: p.GG, XX: p.MulG2(p.GG, x), Yi: yi, YYi: yyi}
	return sk, pk
}

func TestPublicKeyWireRoundTrip(t *testing.T) {
	p := curve.NewParams()
	_, pk := testKeyPair(t, p, 3)

	encoded := EncodePublicKey(p.G1, p.G2, pk)
	decoded, err := DecodePublicKey(p.G1, p.G2, encoded)
	require.NoError(t, err)

	assert.True(t, p.G1.Equal(pk.G, decoded.G))
	assert.True(t, p.G2.Equal(pk.GG, decoded.GG))
	assert.True(t, p.G2.Equal(pk.XX, decoded.XX))
	require.Len(t, decoded.Yi, len(pk.Yi))
	for i := range pk.Yi {
		assert.True(t, p.G1.Equal(pk.Yi[i], decoded.Yi[i]))
	}
}

func TestPublicKeyWireRejectsTruncation(t *testing.T) {
	p := curve.NewParams()
	_, pk := testKeyPair(t, p, 2)

	encoded := EncodePublicKey(p.G1, p.G2, pk)
	_, err := DecodePublicKey(p.G1, p.G2, encoded[:len(encoded)-1])
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestCredentialWireRoundTrip(t *testing.T) {
	p := curve.NewParams()
	u, err := curve.RandomFr()
	require.NoError(t, err)
	cred := &Credential{Sig1: p.MulG1(p.G, u), Sig2: p.G1.One()}

	encoded := EncodeCredential(p.G1, cred)
	decoded, err := DecodeCredential(p.G1, encoded)
	require.NoError(t, err)

	assert.True(t, p.G1.Equal(cred.Sig1, decoded.Sig1))
	assert.True(t, p.G1.Equal(cred.Sig2, decoded.Sig2))
}

func TestSignRequestWireRoundTrip(t *testing.T) {
	p := curve.NewParams()
	c, err := curve.RandomFr()
	require.NoError(t, err)
	r0, err := curve.RandomFr()
	require.NoError(t, err)

	req := &SignRequest{
		A:     p.G,
		C:     c,
		Rs:    []*bls12381.Fr{r0},
		Attrs: []string{"", "public-value"},
	}

	encoded := EncodeSignRequest(p.G1, req)
	decoded, err := DecodeSignRequest(p.G1, encoded)
	require.NoError(t, err)

	assert.True(t, p.G1.Equal(req.A, decoded.A))
	assert.True(t, req.C.Equal(decoded.C))
	require.Len(t, decoded.Rs, 1)
	assert.True(t, req.Rs[0].Equal(decoded.Rs[0]))
	assert.Equal(t, req.Attrs, decoded.Attrs)
}

func TestIdProofWireRoundTripWithoutAccountability(t *testing.T) {
	p := curve.NewParams()
	c, err := curve.RandomFr()
	require.NoError(t, err)

	proof := &IdProof{
		Sig1:  p.G,
		Sig2:  p.G,
		K:     p.GG,
		Phi:   p.G,
		C:     c,
		Rs:    []*bls12381.Fr{c},
		Attrs: []string{"svc-value", ""},
	}

	encoded := EncodeIdProof(p.G1, p.G2, proof)
	decoded, err := DecodeIdProof(p.G1, p.G2, encoded)
	require.NoError(t, err)

	assert.False(t, decoded.HasAccountability())
	assert.Equal(t, proof.Attrs, decoded.Attrs)
}

func TestIdProofWireRoundTripWithAccountability(t *testing.T) {
	p := curve.NewParams()
	c, err := curve.RandomFr()
	require.NoError(t, err)

	proof := &IdProof{
		Sig1:  p.G,
		Sig2:  p.G,
		K:     p.GG,
		Phi:   p.G,
		C:     c,
		Rs:    []*bls12381.Fr{c},
		Attrs: []string{""},
		Accountability: &Accountability{
			E1: p.G,
			E2: p.G,
		},
	}

	encoded := EncodeIdProof(p.G1, p.G2, proof)
	decoded, err := DecodeIdProof(p.G1, p.G2, encoded)
	require.NoError(t, err)

	require.True(t, decoded.HasAccountability())
	assert.True(t, p.G1.Equal(proof.Accountability.E1, decoded.Accountability.E1))
	assert.True(t, p.G1.Equal(proof.Accountability.E2, decoded.Accountability.E2))
}
