package wire

import (
	"testing"

	bls12381 "github.com/kilic/bls12-381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []int{0, 1, 100, 252, 253, 254, 300, 65535}

	for _, n := range cases {
		b := New()
		b.AppendVar(n)
		got, step, err := parseVar(b.Bytes(), 0)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, b.Len(), step)
	}
}

func TestVarintCanonicalRejection(t *testing.T) {
	t.Run("marker byte encoding a value that fits in one byte is rejected", func(t *testing.T) {
		data := []byte{253, 0, 252}
		_, _, err := parseVar(data, 0)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("marker byte encoding the boundary value 253 is accepted", func(t *testing.T) {
		data := []byte{253, 0, 253}
		n, step, err := parseVar(data, 0)
		require.NoError(t, err)
		assert.Equal(t, 253, n)
		assert.Equal(t, 3, step)
	})

	t.Run("undefined marker value is rejected", func(t *testing.T) {
		data := []byte{254}
		_, _, err := parseVar(data, 0)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("truncated marker is rejected", func(t *testing.T) {
		data := []byte{253, 1}
		_, _, err := parseVar(data, 0)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestG1RoundTrip(t *testing.T) {
	g1 := bls12381.NewG1()
	p := g1.One()

	b := New()
	b.AppendG1(g1, p, true)

	got, step, err := b.ParseG1(g1, 0, true)
	require.NoError(t, err)
	assert.Equal(t, b.Len(), step)
	assert.True(t, g1.Equal(p, got))
}

func TestG1WrongTagReturnsZeroStep(t *testing.T) {
	g1 := bls12381.NewG1()
	b := New()
	b.AppendFr(new(bls12381.Fr), true)

	got, step, err := b.ParseG1(g1, 0, true)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, step)
}

func TestG2RoundTrip(t *testing.T) {
	g2 := bls12381.NewG2()
	p := g2.One()

	b := New()
	b.AppendG2(g2, p, true)

	got, step, err := b.ParseG2(g2, 0, true)
	require.NoError(t, err)
	assert.Equal(t, b.Len(), step)
	assert.True(t, g2.Equal(p, got))
}

func TestFrRoundTrip(t *testing.T) {
	fr := new(bls12381.Fr)
	fr.FromBytes([]byte("0123456789abcdef0123456789abcdef"[:32]))

	b := New()
	b.AppendFr(fr, true)

	got, step, err := b.ParseFr(0, true)
	require.NoError(t, err)
	assert.Equal(t, b.Len(), step)
	assert.True(t, fr.Equal(got))
}

func TestListRoundTrips(t *testing.T) {
	g1 := bls12381.NewG1()
	g2 := bls12381.NewG2()

	t.Run("G1List", func(t *testing.T) {
		ps := []*bls12381.PointG1{g1.One(), g1.Zero(), g1.One()}
		b := New()
		b.AppendG1List(g1, ps)

		got, step, err := b.ParseG1List(g1, 0)
		require.NoError(t, err)
		assert.Equal(t, b.Len(), step)
		require.Len(t, got, 3)
		for i := range ps {
			assert.True(t, g1.Equal(ps[i], got[i]))
		}
	})

	t.Run("G2List", func(t *testing.T) {
		ps := []*bls12381.PointG2{g2.One(), g2.Zero()}
		b := New()
		b.AppendG2List(g2, ps)

		got, step, err := b.ParseG2List(g2, 0)
		require.NoError(t, err)
		assert.Equal(t, b.Len(), step)
		require.Len(t, got, 2)
		for i := range ps {
			assert.True(t, g2.Equal(ps[i], got[i]))
		}
	})

	t.Run("FrList", func(t *testing.T) {
		fs := []*bls12381.Fr{new(bls12381.Fr), new(bls12381.Fr)}
		fs[0].FromBytes([]byte("0123456789abcdef0123456789abcdef"[:32]))
		fs[1].FromBytes([]byte("fedcba9876543210fedcba9876543210"[:32]))

		b := New()
		b.AppendFrList(fs)

		got, step, err := b.ParseFrList(0)
		require.NoError(t, err)
		assert.Equal(t, b.Len(), step)
		require.Len(t, got, 2)
		for i := range fs {
			assert.True(t, fs[i].Equal(got[i]))
		}
	})

	t.Run("StrList with empty slots", func(t *testing.T) {
		strs := []string{"alice", "", "bob@example.com", ""}
		b := New()
		b.AppendStrList(strs)

		got, step, err := b.ParseStrList(0)
		require.NoError(t, err)
		assert.Equal(t, b.Len(), step)
		assert.Equal(t, strs, got)
	})
}

func TestBase64RoundTrip(t *testing.T) {
	data := []byte{0, 1, 2, 253, 254, 255, 10, 20}
	encoded := ToBase64(data)

	got, err := FromBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = FromBase64("not valid base64!!")
	assert.Error(t, err)
}

func TestTruncatedBufferRejected(t *testing.T) {
	g1 := bls12381.NewG1()
	b := New()
	b.AppendG1(g1, g1.One(), true)
	truncated := FromBytes(b.Bytes()[:b.Len()-1])

	_, _, err := truncated.ParseG1(g1, 0, true)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestRemainingDetectsTrailingBytes(t *testing.T) {
	b := New()
	b.AppendFr(new(bls12381.Fr), true)
	assert.Equal(t, 0, b.Remaining(b.Len()))

	b.AppendFr(new(bls12381.Fr), true)
	assert.Greater(t, b.Remaining(b.Len()/2), 0)
}
