package elgamal

import (
	"crypto/cipher"

	"github.com/drand/kyber"
)

// SecretKey is a scalar known only to its owner. It is never printed: String
// returns a redacted placeholder.
type SecretKey struct {
	group kyber.Group
	key   kyber.Scalar
}

// GenerateSecretKey picks a uniformly random scalar of g from rand. rand must
// be a cryptographically secure stream; this is not checked.
func GenerateSecretKey(g kyber.Group, rand cipher.Stream) *SecretKey {
	return &SecretKey{
		group: g,
		key:   g.Scalar().Pick(rand),
	}
}

// NewSecretKey wraps an existing scalar of g. The SecretKey takes ownership of
// s, so Erase also clears the caller's value.
func NewSecretKey(g kyber.Group, s kyber.Scalar) *SecretKey {
	return &SecretKey{group: g, key: s}
}

// Group returns the group the key lives in.
func (s *SecretKey) Group() kyber.Group {
	return s.group
}

// Scalar returns a copy of the secret scalar, for serialization by the caller.
func (s *SecretKey) Scalar() kyber.Scalar {
	return s.key.Clone()
}

// Public derives the public key G*s.
func (s *SecretKey) Public() PublicKey {
	return NewPublicKey(s)
}

// Decrypt returns e.Encryption - e.Commitment*s. It never fails: checking that
// the result is the expected Message is up to the caller.
func (s *SecretKey) Decrypt(e Encryption) kyber.Point {
	shared := s.group.Point().Mul(s.key, e.Commitment)
	return s.group.Point().Sub(e.Encryption, shared)
}

// Erase overwrites the secret scalar with zeroes. Long-lived keys are not
// erased automatically.
func (s *SecretKey) Erase() {
	zeroize(s.key)
}

func (s *SecretKey) String() string {
	return "SecretKey(redacted)"
}

// PublicKey is the group element G*secret. It carries no secret and can be
// copied freely.
type PublicKey struct {
	group kyber.Group
	key   kyber.Point
}

// NewPublicKey computes the public key of s.
func NewPublicKey(s *SecretKey) PublicKey {
	return PublicKey{
		group: s.group,
		key:   s.group.Point().Mul(s.key, nil),
	}
}

// NewPublicKeyFromPoint wraps a point previously obtained through Point, e.g.
// after deserialization.
func NewPublicKeyFromPoint(g kyber.Group, p kyber.Point) PublicKey {
	return PublicKey{group: g, key: p.Clone()}
}

// Group returns the group the key lives in.
func (p PublicKey) Group() kyber.Group {
	return p.group
}

// Point returns a copy of the underlying group element.
func (p PublicKey) Point() kyber.Point {
	return p.key.Clone()
}

// Equal reports whether both keys are the same group element.
func (p PublicKey) Equal(o PublicKey) bool {
	return p.key.Equal(o.key)
}

// Encrypt encrypts m under p with the given nonce:
//
//	commitment = G*nonce
//	encryption = m + p*nonce
//
// The nonce is not erased here, it stays available to a proof built next to
// the encryption. Encrypt panics with ErrEphemeralErased if nonce was already
// erased.
func (p PublicKey) Encrypt(m Message, nonce *Ephemeral) Encryption {
	n := nonce.Scalar()
	commitment := p.group.Point().Mul(n, nil)
	blind := p.group.Point().Mul(n, p.key)
	return Encryption{
		Commitment: commitment,
		Encryption: p.group.Point().Add(m.point, blind),
	}
}

func (p PublicKey) String() string {
	return p.key.String()
}

// Keypair binds a SecretKey to its PublicKey. Public is computed once at
// construction.
type Keypair struct {
	Secret *SecretKey
	Public PublicKey
}

// GenerateKeypair picks a fresh secret key from rand and derives its public
// key.
func GenerateKeypair(g kyber.Group, rand cipher.Stream) *Keypair {
	return NewKeypair(GenerateSecretKey(g, rand))
}

// NewKeypair builds the pair for an existing secret key.
func NewKeypair(s *SecretKey) *Keypair {
	return &Keypair{
		Secret: s,
		Public: s.Public(),
	}
}

// Encrypt encrypts with the public half of the pair.
func (k *Keypair) Encrypt(m Message, nonce *Ephemeral) Encryption {
	return k.Public.Encrypt(m, nonce)
}

// Decrypt decrypts with the secret half of the pair.
func (k *Keypair) Decrypt(e Encryption) kyber.Point {
	return k.Secret.Decrypt(e)
}
