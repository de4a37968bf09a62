// Package wire implements the compact tagged binary codec EL PASSO uses to
// move public keys, signing requests, credentials, and proofs between the
// IdP, the User, and the RP (spec §4.1, §6).
package wire

import (
	"encoding/base64"
	"errors"
	"fmt"

	bls12381 "github.com/kilic/bls12-381"
)

// Tag identifies the type of a tagged value on the wire.
type Tag byte

const (
	TagG1      Tag = 0
	TagG2      Tag = 1
	TagFr      Tag = 2
	TagG1List  Tag = 3
	TagG2List  Tag = 4
	TagFrList  Tag = 5
	TagStrList Tag = 6
)

// ErrInvalidEncoding covers tag mismatches, truncated buffers, and varints
// out of the canonical range (spec §7).
var ErrInvalidEncoding = errors.New("wire: invalid encoding")

// Buffer is an append/parse cursor over a tagged binary buffer. The zero
// value is an empty buffer ready to append to.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// FromBytes wraps an existing byte slice for parsing. The slice is copied.
func FromBytes(b []byte) *Buffer {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Buffer{data: cp}
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len reports the number of bytes currently in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// ToBase64 encodes data using the standard, padded alphabet (spec §4.1, §6).
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes data encoded with ToBase64.
func FromBase64(s string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("wire: decode base64: %w", err)
	}
	return out, nil
}

// AppendType appends a single tag byte.
func (b *Buffer) AppendType(tag Tag) {
	b.data = append(b.data, byte(tag))
}

// parseType reads a tag byte at offset. ok is false if offset is out of range.
func parseType(data []byte, offset int) (tag Tag, step int, ok bool) {
	if offset >= len(data) {
		return 0, 0, false
	}
	return Tag(data[offset]), 1, true
}

// AppendVar appends the spec §4.1 variable-length size prefix: a single byte
// for n < 253, else the marker byte 253 followed by a two-byte big-endian n.
func (b *Buffer) AppendVar(n int) {
	if n < 253 {
		b.data = append(b.data, byte(n))
		return
	}
	b.data = append(b.data, 253, byte(n>>8), byte(n))
}

// parseVar reads a varint at offset, rejecting non-canonical 3-byte encodings
// of values that would fit in one byte (spec §6: "parsers MAY reject
// non-canonical forms"; this codec does).
func parseVar(data []byte, offset int) (value int, step int, err error) {
	if offset >= len(data) {
		return 0, 0, fmt.Errorf("%w: truncated varint", ErrInvalidEncoding)
	}
	first := data[offset]
	if first < 253 {
		return int(first), 1, nil
	}
	if first > 253 {
		return 0, 0, fmt.Errorf("%w: undefined varint marker %d", ErrInvalidEncoding, first)
	}
	if offset+3 > len(data) {
		return 0, 0, fmt.Errorf("%w: truncated varint", ErrInvalidEncoding)
	}
	n := int(data[offset+1])<<8 | int(data[offset+2])
	if n < 253 {
		return 0, 0, fmt.Errorf("%w: non-canonical varint", ErrInvalidEncoding)
	}
	return n, 3, nil
}

// AppendG1 appends a G1 element, type-tagged when withType is true.
func (b *Buffer) AppendG1(g1 *bls12381.G1, p *bls12381.PointG1, withType bool) {
	raw := g1.ToBytes(p)
	if withType {
		b.AppendType(TagG1)
	}
	b.AppendVar(len(raw))
	b.data = append(b.data, raw...)
}

// ParseG1 reads a G1 element at offset. When withType is true and the tag at
// offset doesn't match TagG1, it returns (nil, 0, nil): "not this type" per
// spec §7, distinguished from a real error by a nil err and zero step.
func (b *Buffer) ParseG1(g1 *bls12381.G1, offset int, withType bool) (*bls12381.PointG1, int, error) {
	step := 0
	if withType {
		tag, n, ok := parseType(b.data, offset)
		if !ok {
			return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
		}
		if tag != TagG1 {
			return nil, 0, nil
		}
		step += n
	}
	size, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	if offset+step+size > len(b.data) {
		return nil, 0, fmt.Errorf("%w: truncated G1 element", ErrInvalidEncoding)
	}
	pt, err := g1.FromBytes(b.data[offset+step : offset+step+size])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: malformed G1 element: %v", ErrInvalidEncoding, err)
	}
	step += size
	return pt, step, nil
}

// AppendG2 appends a G2 element, type-tagged when withType is true.
func (b *Buffer) AppendG2(g2 *bls12381.G2, p *bls12381.PointG2, withType bool) {
	raw := g2.ToBytes(p)
	if withType {
		b.AppendType(TagG2)
	}
	b.AppendVar(len(raw))
	b.data = append(b.data, raw...)
}

// ParseG2 reads a G2 element at offset, following the same "not this type"
// convention as ParseG1.
func (b *Buffer) ParseG2(g2 *bls12381.G2, offset int, withType bool) (*bls12381.PointG2, int, error) {
	step := 0
	if withType {
		tag, n, ok := parseType(b.data, offset)
		if !ok {
			return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
		}
		if tag != TagG2 {
			return nil, 0, nil
		}
		step += n
	}
	size, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	if offset+step+size > len(b.data) {
		return nil, 0, fmt.Errorf("%w: truncated G2 element", ErrInvalidEncoding)
	}
	pt, err := g2.FromBytes(b.data[offset+step : offset+step+size])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: malformed G2 element: %v", ErrInvalidEncoding, err)
	}
	step += size
	return pt, step, nil
}

// AppendFr appends a scalar element, type-tagged when withType is true.
func (b *Buffer) AppendFr(f *bls12381.Fr, withType bool) {
	raw := f.ToBytes()
	if withType {
		b.AppendType(TagFr)
	}
	b.AppendVar(len(raw))
	b.data = append(b.data, raw...)
}

// ParseFr reads a scalar element at offset, following the same "not this
// type" convention as ParseG1.
func (b *Buffer) ParseFr(offset int, withType bool) (*bls12381.Fr, int, error) {
	step := 0
	if withType {
		tag, n, ok := parseType(b.data, offset)
		if !ok {
			return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
		}
		if tag != TagFr {
			return nil, 0, nil
		}
		step += n
	}
	size, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	if offset+step+size > len(b.data) {
		return nil, 0, fmt.Errorf("%w: truncated Fr element", ErrInvalidEncoding)
	}
	fr := new(bls12381.Fr)
	fr.FromBytes(b.data[offset+step : offset+step+size])
	step += size
	return fr, step, nil
}

// AppendG1List appends a type-tagged, varint-counted list of untagged G1 elements.
func (b *Buffer) AppendG1List(g1 *bls12381.G1, ps []*bls12381.PointG1) {
	b.AppendType(TagG1List)
	b.AppendVar(len(ps))
	for _, p := range ps {
		b.AppendG1(g1, p, false)
	}
}

// ParseG1List reads a G1List at offset.
func (b *Buffer) ParseG1List(g1 *bls12381.G1, offset int) ([]*bls12381.PointG1, int, error) {
	step := 0
	tag, n, ok := parseType(b.data, offset)
	if !ok {
		return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
	}
	if tag != TagG1List {
		return nil, 0, nil
	}
	step += n
	count, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	out := make([]*bls12381.PointG1, 0, count)
	for i := 0; i < count; i++ {
		p, n, err := b.ParseG1(g1, offset+step, false)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return nil, 0, fmt.Errorf("%w: malformed G1List element", ErrInvalidEncoding)
		}
		step += n
		out = append(out, p)
	}
	return out, step, nil
}

// AppendG2List appends a type-tagged, varint-counted list of untagged G2 elements.
func (b *Buffer) AppendG2List(g2 *bls12381.G2, ps []*bls12381.PointG2) {
	b.AppendType(TagG2List)
	b.AppendVar(len(ps))
	for _, p := range ps {
		b.AppendG2(g2, p, false)
	}
}

// ParseG2List reads a G2List at offset.
func (b *Buffer) ParseG2List(g2 *bls12381.G2, offset int) ([]*bls12381.PointG2, int, error) {
	step := 0
	tag, n, ok := parseType(b.data, offset)
	if !ok {
		return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
	}
	if tag != TagG2List {
		return nil, 0, nil
	}
	step += n
	count, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	out := make([]*bls12381.PointG2, 0, count)
	for i := 0; i < count; i++ {
		p, n, err := b.ParseG2(g2, offset+step, false)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return nil, 0, fmt.Errorf("%w: malformed G2List element", ErrInvalidEncoding)
		}
		step += n
		out = append(out, p)
	}
	return out, step, nil
}

// AppendFrList appends a type-tagged, varint-counted list of untagged Fr elements.
func (b *Buffer) AppendFrList(fs []*bls12381.Fr) {
	b.AppendType(TagFrList)
	b.AppendVar(len(fs))
	for _, f := range fs {
		b.AppendFr(f, false)
	}
}

// ParseFrList reads an FrList at offset.
func (b *Buffer) ParseFrList(offset int) ([]*bls12381.Fr, int, error) {
	step := 0
	tag, n, ok := parseType(b.data, offset)
	if !ok {
		return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
	}
	if tag != TagFrList {
		return nil, 0, nil
	}
	step += n
	count, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	out := make([]*bls12381.Fr, 0, count)
	for i := 0; i < count; i++ {
		f, n, err := b.ParseFr(offset+step, false)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return nil, 0, fmt.Errorf("%w: malformed FrList element", ErrInvalidEncoding)
		}
		step += n
		out = append(out, f)
	}
	return out, step, nil
}

// AppendStrList appends a type-tagged, varint-counted list of length-prefixed
// UTF-8 strings.
func (b *Buffer) AppendStrList(strs []string) {
	b.AppendType(TagStrList)
	b.AppendVar(len(strs))
	for _, s := range strs {
		raw := []byte(s)
		b.AppendVar(len(raw))
		b.data = append(b.data, raw...)
	}
}

// ParseStrList reads a StrList at offset.
func (b *Buffer) ParseStrList(offset int) ([]string, int, error) {
	step := 0
	tag, n, ok := parseType(b.data, offset)
	if !ok {
		return nil, 0, fmt.Errorf("%w: truncated tag", ErrInvalidEncoding)
	}
	if tag != TagStrList {
		return nil, 0, nil
	}
	step += n
	count, n, err := parseVar(b.data, offset+step)
	if err != nil {
		return nil, 0, err
	}
	step += n
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		strLen, n, err := parseVar(b.data, offset+step)
		if err != nil {
			return nil, 0, err
		}
		step += n
		if offset+step+strLen > len(b.data) {
			return nil, 0, fmt.Errorf("%w: truncated string", ErrInvalidEncoding)
		}
		out = append(out, string(b.data[offset+step:offset+step+strLen]))
		step += strLen
	}
	return out, step, nil
}

// Remaining reports how many bytes are left after offset, used to detect
// IdProof's optional trailing E1/E2 pair (spec §9: "present iff bytes remain").
func (b *Buffer) Remaining(offset int) int {
	return len(b.data) - offset
}
