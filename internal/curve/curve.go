// Package curve wraps the BLS12-381 pairing primitives (github.com/kilic/bls12-381)
// with the generator setup, domain-separated hashing, and pairing-equation
// checks shared by the Signer, Requester, and Verifier.
package curve

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"

	bls12381 "github.com/kilic/bls12-381"
)

// groupOrder is the BLS12-381 scalar field order r.
var groupOrder, _ = new(big.Int).SetString("52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

const (
	attributeDST = "ELPASSO_BLS12381G1_XMD:SHA-256_SSWU_RO_ATTR_"
	pseudonymDST = "EL-PASSO-PSEUDONYM-G1-"
)

var (
	initOnce   sync.Once
	initSeed   string
	initDone   bool
	initSeedMu sync.Mutex
)

// InitPairing performs the one-shot, process-wide curve setup (spec §5, §9).
// It is idempotent: calling it again with the same seed is a no-op. Calling
// it again with a different seed panics. The seed is only recorded to detect
// such conflicting re-initialization; it does not select the generators,
// which NewParams always takes from the library's standard G1/G2 generators.
// NewParams initializes with the empty seed when nothing has been set yet.
func InitPairing(seed string) {
	initSeedMu.Lock()
	defer initSeedMu.Unlock()
	if initDone && seed != initSeed {
		panic(fmt.Sprintf("curve: InitPairing called twice with different seeds (%q then %q)", initSeed, seed))
	}
	initOnce.Do(func() {
		initSeed = seed
		initDone = true
	})
}

// Params bundles the group helpers and fixed generators operations are
// performed against. Constructing a Params is cheap and safe to do per
// Signer/Requester/Verifier instance; InitPairing need only run once per
// process beforehand.
type Params struct {
	G1     *bls12381.G1
	G2     *bls12381.G2
	GT     *bls12381.GT
	Engine *bls12381.Engine

	G  *bls12381.PointG1 // generator of G1
	GG *bls12381.PointG2 // generator of G2
}

// NewParams builds the group helpers and fixed generators (g, gg) used
// throughout the protocol. It initializes the curve with the default (empty)
// seed if the caller has not already done so through InitPairing.
func NewParams() *Params {
	initSeedMu.Lock()
	initOnce.Do(func() {
		initSeed = ""
		initDone = true
	})
	initSeedMu.Unlock()
	g1 := bls12381.NewG1()
	g2 := bls12381.NewG2()
	return &Params{
		G1:     g1,
		G2:     g2,
		GT:     bls12381.NewGT(),
		Engine: bls12381.NewEngine(),
		G:      g1.One(),
		GG:     g2.One(),
	}
}

// MulG1 returns base·scalar, a fresh point.
func (p *Params) MulG1(base *bls12381.PointG1, scalar *bls12381.Fr) *bls12381.PointG1 {
	out := &bls12381.PointG1{}
	p.G1.MulScalar(out, base, scalar)
	return out
}

// AddG1 returns a+b, a fresh point.
func (p *Params) AddG1(a, b *bls12381.PointG1) *bls12381.PointG1 {
	out := &bls12381.PointG1{}
	p.G1.Add(out, a, b)
	return out
}

// NegG1 returns -a, a fresh point.
func (p *Params) NegG1(a *bls12381.PointG1) *bls12381.PointG1 {
	out := &bls12381.PointG1{}
	p.G1.Neg(out, a)
	return out
}

// SumG1 accumulates base[i]·scalar[i] starting from the identity.
func (p *Params) SumG1(bases []*bls12381.PointG1, scalars []*bls12381.Fr) *bls12381.PointG1 {
	acc := p.G1.Zero()
	for i, base := range bases {
		acc = p.AddG1(acc, p.MulG1(base, scalars[i]))
	}
	return acc
}

// MulG2 returns base·scalar, a fresh point.
func (p *Params) MulG2(base *bls12381.PointG2, scalar *bls12381.Fr) *bls12381.PointG2 {
	out := &bls12381.PointG2{}
	p.G2.MulScalar(out, base, scalar)
	return out
}

// AddG2 returns a+b, a fresh point.
func (p *Params) AddG2(a, b *bls12381.PointG2) *bls12381.PointG2 {
	out := &bls12381.PointG2{}
	p.G2.Add(out, a, b)
	return out
}

// NegG2 returns -a, a fresh point.
func (p *Params) NegG2(a *bls12381.PointG2) *bls12381.PointG2 {
	out := &bls12381.PointG2{}
	p.G2.Neg(out, a)
	return out
}

// SumG2 accumulates base[i]·scalar[i] starting from the identity.
func (p *Params) SumG2(bases []*bls12381.PointG2, scalars []*bls12381.Fr) *bls12381.PointG2 {
	acc := p.G2.Zero()
	for i, base := range bases {
		acc = p.AddG2(acc, p.MulG2(base, scalars[i]))
	}
	return acc
}

// AddFr returns a+b, a fresh scalar.
func AddFr(a, b *bls12381.Fr) *bls12381.Fr {
	out := new(bls12381.Fr)
	out.Add(a, b)
	return out
}

// SubFr returns a-b, a fresh scalar.
func SubFr(a, b *bls12381.Fr) *bls12381.Fr {
	out := new(bls12381.Fr)
	out.Sub(a, b)
	return out
}

// MulFr returns a*b, a fresh scalar.
func MulFr(a, b *bls12381.Fr) *bls12381.Fr {
	out := new(bls12381.Fr)
	out.Mul(a, b)
	return out
}

// NegFr returns -a, a fresh scalar.
func NegFr(a *bls12381.Fr) *bls12381.Fr {
	out := new(bls12381.Fr)
	out.Neg(a)
	return out
}

// InverseFr returns a^-1, a fresh scalar. a must be non-zero.
func InverseFr(a *bls12381.Fr) *bls12381.Fr {
	out := new(bls12381.Fr)
	out.Inverse(a)
	return out
}

// RandomFr samples a scalar uniformly from Fr using a CSPRNG.
func RandomFr() (*bls12381.Fr, error) {
	v, err := rand.Int(rand.Reader, groupOrder)
	if err != nil {
		return nil, fmt.Errorf("curve: sample random scalar: %w", err)
	}
	return frFromBigInt(v), nil
}

func frFromBigInt(v *big.Int) *bls12381.Fr {
	padded := make([]byte, 32)
	b := v.Bytes()
	copy(padded[32-len(b):], b)
	fr := new(bls12381.Fr)
	fr.FromBytes(padded)
	return fr
}

// HashToFr is the domain-separated H(·) of spec §4.2/§4.5: a uniform digest
// of the tagged input, reduced modulo the scalar field order.
func HashToFr(tag string, data []byte) *bls12381.Fr {
	h := sha256.New()
	h.Write([]byte(tag))
	h.Write(data)
	digest := h.Sum(nil)
	reduced := new(big.Int).SetBytes(digest)
	reduced.Mod(reduced, groupOrder)
	return frFromBigInt(reduced)
}

// HashAttribute hashes a plaintext attribute (or user secret) string to Fr,
// used to fold attribute values into commitments and challenges.
func HashAttribute(value string) *bls12381.Fr {
	return HashToFr(attributeDST, []byte(value))
}

// HashServiceToG1 derives the deterministic, service-scoped base point used
// for pseudonym generation (spec §4.3 step 3): hash_to_G1(service_name),
// under a domain-separation tag distinct from every other hash-to-curve call
// site so pseudonym derivation can never collide with attribute commitments.
func (p *Params) HashServiceToG1(serviceName string) (*bls12381.PointG1, error) {
	pt, err := p.G1.HashToCurve([]byte(serviceName), []byte(pseudonymDST))
	if err != nil {
		return nil, fmt.Errorf("curve: hash service name to G1: %w", err)
	}
	return pt, nil
}

// PairingEqual reports whether e(a1, a2) == e(b1, b2), which is exactly the
// PS-signature verification equation's shape (spec GLOSSARY). It uses the
// engine's AddPair/AddPairInv/Check combinator rather than computing two
// independent GT elements and comparing them, avoiding one full pairing.
func (p *Params) PairingEqual(a1 *bls12381.PointG1, a2 *bls12381.PointG2, b1 *bls12381.PointG1, b2 *bls12381.PointG2) bool {
	p.Engine.Reset()
	p.Engine.AddPair(a1, a2)
	p.Engine.AddPairInv(b1, b2)
	return p.Engine.Check()
}

// TranscriptHasher accumulates the canonical, positionally-ordered byte
// concatenation fed into a Fiat–Shamir challenge (spec §4.2 step 2, §4.3 step
// 6, §4.5). Unlike pkg/wire's tagged codec, the transcript has no type tags
// or top-level framing: order alone disambiguates fields, matching
// _examples/original_source's ps-encoding.cc concatenation style.
type TranscriptHasher struct {
	buf []byte
}

// NewTranscriptHasher returns an empty transcript accumulator.
func NewTranscriptHasher() *TranscriptHasher {
	return &TranscriptHasher{}
}

// WriteG1 appends the canonical serialization of a G1 element.
func (t *TranscriptHasher) WriteG1(g1 *bls12381.G1, p *bls12381.PointG1) *TranscriptHasher {
	t.buf = append(t.buf, g1.ToBytes(p)...)
	return t
}

// WriteG2 appends the canonical serialization of a G2 element.
func (t *TranscriptHasher) WriteG2(g2 *bls12381.G2, p *bls12381.PointG2) *TranscriptHasher {
	t.buf = append(t.buf, g2.ToBytes(p)...)
	return t
}

// WriteG1List appends each element of a G1 slice in order.
func (t *TranscriptHasher) WriteG1List(g1 *bls12381.G1, ps []*bls12381.PointG1) *TranscriptHasher {
	for _, p := range ps {
		t.WriteG1(g1, p)
	}
	return t
}

// WriteG2List appends each element of a G2 slice in order.
func (t *TranscriptHasher) WriteG2List(g2 *bls12381.G2, ps []*bls12381.PointG2) *TranscriptHasher {
	for _, p := range ps {
		t.WriteG2(g2, p)
	}
	return t
}

// WriteBytes appends raw bytes (an associated-data string, a service name, ...).
func (t *TranscriptHasher) WriteBytes(b []byte) *TranscriptHasher {
	t.buf = append(t.buf, b...)
	return t
}

// WriteString appends the UTF-8 bytes of s.
func (t *TranscriptHasher) WriteString(s string) *TranscriptHasher {
	return t.WriteBytes([]byte(s))
}

// WriteStrings appends each string of a slice in order.
func (t *TranscriptHasher) WriteStrings(strs []string) *TranscriptHasher {
	for _, s := range strs {
		t.WriteString(s)
	}
	return t
}

// Challenge reduces the accumulated transcript to a Fiat–Shamir challenge in Fr.
func (t *TranscriptHasher) Challenge() *bls12381.Fr {
	return HashToFr("ELPASSO_FIAT_SHAMIR_", t.buf)
}
