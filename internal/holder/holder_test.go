package holder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/elpasso-ps-credential/internal/curve"
	"github.com/lugondev/elpasso-ps-credential/internal/issuer"
	"github.com/lugondev/elpasso-ps-credential/pkg/pscred"
)

func setup(t *testing.T, l int) (*issuer.Signer, *Requester, *pscred.PublicKey) {
	t.Helper()
	s, err := issuer.NewSigner(l)
	require.NoError(t, err)
	pk, err := s.KeyGen()
	require.NoError(t, err)
	r, err := NewRequester(pk)
	require.NoError(t, err)
	return s, r, pk
}

func TestGenerateRequestRejectsAttributeCountMismatch(t *testing.T) {
	_, r, _ := setup(t, 3)

	_, _, err := r.GenerateRequest([]pscred.Attribute{{Value: "a"}}, "ad")
	assert.ErrorIs(t, err, pscred.ErrAttributeCountMismatch)
}

func TestFullRoundTripAllHidden(t *testing.T) {
	s, r, _ := setup(t, 2)

	ad := NewAssociatedData()
	attrs := []pscred.Attribute{
		{Value: "alice", Hidden: true},
		{Value: "bob", Hidden: true},
	}
	req, t0, err := r.GenerateRequest(attrs, ad)
	require.NoError(t, err)

	cred, err := s.SignCredRequest(req, ad)
	require.NoError(t, err)

	unblinded := r.UnblindCredential(cred, t0)
	assert.True(t, r.Verify(unblinded, t0, []string{"alice", "bob"}))
}

func TestNewAssociatedDataIsUniquePerCall(t *testing.T) {
	a := NewAssociatedData()
	b := NewAssociatedData()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestFullRoundTripMixedHiddenAndPlaintext(t *testing.T) {
	s, r, _ := setup(t, 3)

	attrs := []pscred.Attribute{
		{Value: "secret-id", Hidden: true},
		{Value: "alice", Hidden: false},
		{Value: "secret-role", Hidden: true},
	}
	req, t0, err := r.GenerateRequest(attrs, "ad-2")
	require.NoError(t, err)

	cred, err := s.SignCredRequest(req, "ad-2")
	require.NoError(t, err)

	unblinded := r.UnblindCredential(cred, t0)
	all := []string{"secret-id", "alice", "secret-role"}
	assert.True(t, r.Verify(unblinded, t0, all))

	t.Run("wrong attribute value fails verification", func(t *testing.T) {
		wrong := []string{"secret-id", "alice", "wrong-role"}
		assert.False(t, r.Verify(unblinded, t0, wrong))
	})

	t.Run("wrong t fails verification", func(t *testing.T) {
		other, err := curve.RandomFr()
		require.NoError(t, err)
		assert.False(t, r.Verify(unblinded, other, all))
	})
}

func TestRandomizeCredentialPreservesValidity(t *testing.T) {
	s, r, _ := setup(t, 1)

	attrs := []pscred.Attribute{{Value: "only-attr", Hidden: false}}
	req, t0, err := r.GenerateRequest(attrs, "ad-3")
	require.NoError(t, err)

	cred, err := s.SignCredRequest(req, "ad-3")
	require.NoError(t, err)

	unblinded := r.UnblindCredential(cred, t0)
	randomized, err := r.RandomizeCredential(unblinded)
	require.NoError(t, err)

	assert.False(t, randomized.Sig1.Equal(unblinded.Sig1))
	assert.True(t, r.Verify(randomized, t0, []string{"only-attr"}))
}

func TestElPassoProveIDRejectsAccountabilityWithoutHiddenSlot0(t *testing.T) {
	s, r, _ := setup(t, 2)

	attrs := []pscred.Attribute{
		{Value: "plaintext-first", Hidden: false},
		{Value: "hidden-second", Hidden: true},
	}
	req, t0, err := r.GenerateRequest(attrs, "ad-4")
	require.NoError(t, err)

	cred, err := s.SignCredRequest(req, "ad-4")
	require.NoError(t, err)
	unblinded := r.UnblindCredential(cred, t0)

	params := r.params
	acct := &pscred.AccountabilityParams{
		AuthorityPK: params.G,
		G:           params.G,
		H:           params.G,
	}

	_, err = r.ElPassoProveID(unblinded, attrs, t0, "ad-4", "service-a", acct)
	assert.ErrorIs(t, err, pscred.ErrAccountabilityBinding)
}

func TestElPassoProveIDProducesServiceScopedPseudonym(t *testing.T) {
	s, r, _ := setup(t, 1)

	attrs := []pscred.Attribute{{Value: "hidden-only", Hidden: true}}
	req, t0, err := r.GenerateRequest(attrs, "ad-5")
	require.NoError(t, err)

	cred, err := s.SignCredRequest(req, "ad-5")
	require.NoError(t, err)
	unblinded := r.UnblindCredential(cred, t0)

	proofA, err := r.ElPassoProveID(unblinded, attrs, t0, "ad-5", "service-a", nil)
	require.NoError(t, err)

	proofB, err := r.ElPassoProveID(unblinded, attrs, t0, "ad-5", "service-b", nil)
	require.NoError(t, err)

	assert.False(t, proofA.Phi.Equal(proofB.Phi), "pseudonyms for distinct services must differ")

	proofA2, err := r.ElPassoProveID(unblinded, attrs, t0, "ad-5", "service-a", nil)
	require.NoError(t, err)
	assert.True(t, proofA.Phi.Equal(proofA2.Phi), "the pseudonym for the same service must be stable across proofs")
}
