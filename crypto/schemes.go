package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/group/edwards25519"
)

// ErrUnknownScheme is returned when a scheme name is not registered.
var ErrUnknownScheme = errors.New("unknown scheme")

// ErrInvalidPoint is returned when a decoded point is outside the prime-order
// subgroup of its scheme.
var ErrInvalidPoint = errors.New("point not in the prime-order subgroup")

// Scheme names the prime-order group keys and ciphertexts live in. Keys,
// messages and ciphertexts from different schemes never mix.
//
// Note: Scheme is not meant to be marshaled directly. Store its Name and use
// SchemeFromName.
type Scheme struct {
	// The name of the scheme
	Name string
	// Group is the group of all points and scalars of the scheme
	Group kyber.Group
}

func (s *Scheme) String() string {
	if s != nil {
		return s.Name
	}
	return ""
}

// CheckPoint fails with ErrInvalidPoint when p has a component of small
// order, like the torsion points edwards25519 happily unmarshals.
func (s *Scheme) CheckPoint(p kyber.Point) error {
	// the order reduces to zero as a scalar: compute (order-1)*p + p
	lp := s.Group.Point().Mul(s.Group.Scalar().SetInt64(-1), p)
	lp.Add(lp, p)
	if !lp.Equal(s.Group.Point().Null()) {
		return fmt.Errorf("%w: %s", ErrInvalidPoint, s.Name)
	}
	return nil
}

// DefaultSchemeID is the default scheme ID.
const DefaultSchemeID = "ed25519"

// NewEd25519Scheme uses the prime-order subgroup of edwards25519, 32 byte
// points and scalars.
func NewEd25519Scheme() *Scheme {
	return &Scheme{
		Name:  DefaultSchemeID,
		Group: edwards25519.NewBlakeSHA256Ed25519(),
	}
}

// BLS12381G1SchemeID uses G1 of BLS12-381.
const BLS12381G1SchemeID = "bls12381-g1"

// NewBLS12381G1Scheme uses the G1 group of BLS12-381: 48 byte points.
func NewBLS12381G1Scheme() *Scheme {
	pairing := bls.NewBLS12381Suite()
	return &Scheme{
		Name:  BLS12381G1SchemeID,
		Group: pairing.G1(),
	}
}

// BLS12381G2SchemeID uses G2 of BLS12-381.
const BLS12381G2SchemeID = "bls12381-g2"

// NewBLS12381G2Scheme uses the G2 group of BLS12-381: 96 byte points. It is
// only useful when ciphertexts have to live next to G2 credentials.
func NewBLS12381G2Scheme() *Scheme {
	pairing := bls.NewBLS12381Suite()
	return &Scheme{
		Name:  BLS12381G2SchemeID,
		Group: pairing.G2(),
	}
}

// SchemeFromName returns the scheme registered under schemeName.
func SchemeFromName(schemeName string) (*Scheme, error) {
	switch schemeName {
	case DefaultSchemeID:
		return NewEd25519Scheme(), nil
	case BLS12381G1SchemeID:
		return NewBLS12381G1Scheme(), nil
	case BLS12381G2SchemeID:
		return NewBLS12381G2Scheme(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownScheme, schemeName)
	}
}

var schemeIDs = []string{DefaultSchemeID, BLS12381G1SchemeID, BLS12381G2SchemeID}

// ListSchemes will return a slice of valid scheme ids
func ListSchemes() []string {
	return schemeIDs
}

// GetSchemeByIDWithDefault returns the scheme with the given ID, or the
// default scheme when id is empty.
func GetSchemeByIDWithDefault(id string) (*Scheme, error) {
	if id == "" {
		id = DefaultSchemeID
	}

	return SchemeFromName(id)
}

// GetSchemeFromEnv returns the scheme named by the SCHEME_ID environment
// variable, or the default one when it is unset.
func GetSchemeFromEnv() (*Scheme, error) {
	id := os.Getenv("SCHEME_ID")

	return GetSchemeByIDWithDefault(id)
}
