package key

import (
	"encoding/hex"

	"github.com/drand/kyber"
	"golang.org/x/crypto/blake2b"

	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
)

// PointToString returns a hex-encoded string representation of the given point.
func PointToString(p kyber.Point) string {
	buff, _ := p.MarshalBinary()
	return hex.EncodeToString(buff)
}

// ScalarToString returns a hex-encoded string representation of the given scalar.
func ScalarToString(s kyber.Scalar) string {
	buff, _ := s.MarshalBinary()
	return hex.EncodeToString(buff)
}

// StringToPoint unmarshals a point of the scheme from the given string. Points
// outside the prime-order subgroup are rejected.
func StringToPoint(sch *crypto.Scheme, s string) (kyber.Point, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	p := sch.Group.Point()
	if err := p.UnmarshalBinary(buff); err != nil {
		return nil, err
	}
	return p, sch.CheckPoint(p)
}

// StringToScalar unmarshals a scalar in the given group from the given string.
func StringToScalar(g kyber.Group, s string) (kyber.Scalar, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	sc := g.Scalar()
	return sc, sc.UnmarshalBinary(buff)
}

// fingerprintLen is the number of hex characters of a fingerprint
const fingerprintLen = 16

// Fingerprint is a short identifier of a public key, the first 8 bytes of the
// blake2b-256 digest of its encoding, in hex.
func Fingerprint(pk elgamal.PublicKey) string {
	buff, _ := pk.Point().MarshalBinary()
	h := blake2b.Sum256(buff)
	return hex.EncodeToString(h[:])[:fingerprintLen]
}
