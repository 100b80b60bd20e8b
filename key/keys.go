// Package key persists elgamal key material as TOML files. The elgamal package
// defines no wire format; this package owns it.
package key

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
)

// ErrInconsistentKeypair is returned when a loaded public key is not the one
// derived from the loaded secret key.
var ErrInconsistentKeypair = errors.New("public key does not match secret key")

// Pair is an elgamal keypair together with the scheme its group comes from.
type Pair struct {
	Scheme *crypto.Scheme
	Key    *elgamal.Keypair
}

// Public is a public key together with the scheme its group comes from.
type Public struct {
	Scheme *crypto.Scheme
	Key    elgamal.PublicKey
}

// NewKeyPair returns a freshly created keypair of the given scheme, picked
// from rand.
func NewKeyPair(sch *crypto.Scheme, rand cipher.Stream) *Pair {
	return &Pair{
		Scheme: sch,
		Key:    elgamal.GenerateKeypair(sch.Group, rand),
	}
}

// Public returns the public half of the pair.
func (p *Pair) Public() *Public {
	return &Public{Scheme: p.Scheme, Key: p.Key.Public}
}

// PairTOML is the TOML-able version of a private key
type PairTOML struct {
	Key        string
	SchemeName string
}

// PublicTOML is the TOML-able version of a public key
type PublicTOML struct {
	Key         string
	Fingerprint string
	SchemeName  string
}

// TOML returns a struct that can be marshaled using a TOML-encoding library
func (p *Pair) TOML() interface{} {
	secret := p.Key.Secret.Scalar()
	defer elgamal.EraseScalar(secret)
	return &PairTOML{ScalarToString(secret), p.Scheme.Name}
}

// FromTOML constructs the private key from an unmarshalled structure from TOML.
// The public half is derived from it.
func (p *Pair) FromTOML(i interface{}) error {
	ptoml, ok := i.(*PairTOML)
	if !ok {
		return errors.New("private can't decode toml from non PairTOML struct")
	}
	sch, err := crypto.GetSchemeByIDWithDefault(ptoml.SchemeName)
	if err != nil {
		return err
	}
	s, err := StringToScalar(sch.Group, ptoml.Key)
	if err != nil {
		return fmt.Errorf("decoding secret key: %w", err)
	}
	p.Scheme = sch
	p.Key = elgamal.NewKeypair(elgamal.NewSecretKey(sch.Group, s))
	return nil
}

// TOMLValue returns an empty TOML-compatible interface value
func (p *Pair) TOMLValue() interface{} {
	return &PairTOML{}
}

// TOML returns a TOML-compatible version of the public key
func (p *Public) TOML() interface{} {
	var schemeName string
	if p.Scheme == nil {
		schemeName = "nil scheme"
	} else {
		schemeName = p.Scheme.Name
	}
	return &PublicTOML{
		Key:         PointToString(p.Key.Point()),
		Fingerprint: Fingerprint(p.Key),
		SchemeName:  schemeName,
	}
}

// FromTOML loads reads the TOML description of the public key
func (p *Public) FromTOML(i interface{}) error {
	ptoml, ok := i.(*PublicTOML)
	if !ok {
		return errors.New("public can't decode from non PublicTOML struct")
	}
	sch, err := crypto.GetSchemeByIDWithDefault(ptoml.SchemeName)
	if err != nil {
		return err
	}
	point, err := StringToPoint(sch, ptoml.Key)
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}
	p.Scheme = sch
	p.Key = elgamal.NewPublicKeyFromPoint(sch.Group, point)
	return nil
}

// TOMLValue returns a TOML-compatible interface value
func (p *Public) TOMLValue() interface{} {
	return &PublicTOML{}
}

// Equal returns true if both keys are the same point of the same scheme.
func (p *Public) Equal(p2 *Public) bool {
	if p.Scheme.Name != p2.Scheme.Name {
		return false
	}
	return p.Key.Equal(p2.Key)
}

func (p *Public) String() string {
	return fmt.Sprintf("{%s %s}", p.Scheme, Fingerprint(p.Key))
}
