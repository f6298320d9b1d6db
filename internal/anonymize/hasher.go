// Package anonymize turns identifying values into salted SHA-256 digests.
//
// Static digests use the configured salt and are reproducible, so two columns
// hashed with Static can still be joined. Random digests mix in fresh entropy
// on every call and cannot be correlated with anything.
package anonymize

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
)

// EntropySize is the number of random bytes mixed into each Random digest.
const EntropySize = 16

var ErrEmptySalt = errors.New("anonymize: salt must not be empty")

// Digest is an optional hex digest. The zero value is null.
type Digest struct {
	hex   string
	valid bool
}

// Null is the digest of a missing value.
func Null() Digest { return Digest{} }

func (d Digest) Value() (string, bool) { return d.hex, d.valid }

func (d Digest) IsNull() bool { return !d.valid }

// String returns the hex digest, or "" for null.
func (d Digest) String() string { return d.hex }

func (d Digest) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.hex)
}

type Hasher struct {
	salt    []byte
	entropy io.Reader
}

type Option func(*Hasher)

// WithEntropy replaces crypto/rand as the source of per-call randomness.
func WithEntropy(r io.Reader) Option {
	return func(h *Hasher) { h.entropy = r }
}

func NewHasher(salt []byte, opts ...Option) (*Hasher, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	h := &Hasher{
		salt:    append([]byte(nil), salt...),
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Static hashes v with the fixed salt. Same input, same digest.
func (h *Hasher) Static(v any) Digest {
	s, ok := scalar(v)
	if !ok {
		return Null()
	}
	return digest([]byte(s), h.salt)
}

// Random hashes v with fresh entropy. A failing entropy source yields null.
func (h *Hasher) Random(v any) Digest {
	s, ok := scalar(v)
	if !ok {
		return Null()
	}
	buf := make([]byte, EntropySize)
	if _, err := io.ReadFull(h.entropy, buf); err != nil {
		return Null()
	}
	return digest([]byte(s), buf)
}

func digest(data, salt []byte) Digest {
	sum := sha256.New()
	sum.Write(data)
	sum.Write(salt)
	return Digest{hex: hex.EncodeToString(sum.Sum(nil)), valid: true}
}

// scalar renders v the way it is hashed. Missing and unhashable values
// report false.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	default:
		return "", false
	}
}

func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
