// Package ciphertext provides the JSON envelope in which encryptions travel
// between the command line tool, files and the ciphertext store.
package ciphertext

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	json "github.com/nikkolasg/hexjson"

	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
)

// ErrSchemeMismatch is returned when an envelope was produced in another group
// than the one it is decoded into.
var ErrSchemeMismatch = errors.New("ciphertext: scheme mismatch")

// Envelope is the serializable form of an encryption. Byte fields are encoded
// as hex strings.
type Envelope struct {
	// Scheme is the name of the group both points live in
	Scheme string
	// Commitment is the marshalled G*n
	Commitment []byte
	// Encryption is the marshalled M + Y*n
	Encryption []byte
	// Label is an optional tag set by the producer
	Label string `json:",omitempty"`
}

// NewEnvelope marshals both points of enc.
func NewEnvelope(sch *crypto.Scheme, enc elgamal.Encryption) (*Envelope, error) {
	c, err := enc.Commitment.MarshalBinary()
	if err != nil {
		return nil, err
	}
	e, err := enc.Encryption.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Envelope{Scheme: sch.Name, Commitment: c, Encryption: e}, nil
}

// Open returns the encryption held in the envelope, checking that it belongs
// to the given scheme.
func (env *Envelope) Open(sch *crypto.Scheme) (elgamal.Encryption, error) {
	if env.Scheme != sch.Name {
		return elgamal.Encryption{}, fmt.Errorf("%w: envelope is %q, expected %q", ErrSchemeMismatch, env.Scheme, sch.Name)
	}
	c := sch.Group.Point()
	if err := c.UnmarshalBinary(env.Commitment); err != nil {
		return elgamal.Encryption{}, fmt.Errorf("decoding commitment: %w", err)
	}
	if err := sch.CheckPoint(c); err != nil {
		return elgamal.Encryption{}, fmt.Errorf("decoding commitment: %w", err)
	}
	e := sch.Group.Point()
	if err := e.UnmarshalBinary(env.Encryption); err != nil {
		return elgamal.Encryption{}, fmt.Errorf("decoding encryption: %w", err)
	}
	if err := sch.CheckPoint(e); err != nil {
		return elgamal.Encryption{}, fmt.Errorf("decoding encryption: %w", err)
	}
	return elgamal.Encryption{Commitment: c, Encryption: e}, nil
}

// Marshal provides a JSON encoding of the envelope
func (env *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(env)
}

// Unmarshal decodes an envelope from JSON
func (env *Envelope) Unmarshal(buff []byte) error {
	return json.Unmarshal(buff, env)
}

// Encode returns the JSON envelope of enc.
func Encode(sch *crypto.Scheme, enc elgamal.Encryption) ([]byte, error) {
	env, err := NewEnvelope(sch, enc)
	if err != nil {
		return nil, err
	}
	return env.Marshal()
}

// Decode reads a JSON envelope and opens it in the given scheme.
func Decode(data []byte, sch *crypto.Scheme) (elgamal.Encryption, error) {
	env := new(Envelope)
	if err := env.Unmarshal(data); err != nil {
		return elgamal.Encryption{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return env.Open(sch)
}

// ReadFile reads the envelope stored at path without opening it.
func ReadFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	env := new(Envelope)
	if err := env.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%s: decoding envelope: %w", path, err)
	}
	return env, nil
}

// LoadFile decodes the envelope stored at path.
func LoadFile(sch *crypto.Scheme, path string) (elgamal.Encryption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return elgamal.Encryption{}, err
	}
	enc, err := Decode(data, sch)
	if err != nil {
		return elgamal.Encryption{}, fmt.Errorf("%s: %w", path, err)
	}
	return enc, nil
}

// LoadFiles decodes every file, in order. It does not stop at the first bad
// file: the returned error lists all of them.
func LoadFiles(sch *crypto.Scheme, paths ...string) ([]elgamal.Encryption, error) {
	var result *multierror.Error
	encs := make([]elgamal.Encryption, 0, len(paths))
	for _, p := range paths {
		enc, err := LoadFile(sch, p)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		encs = append(encs, enc)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return encs, nil
}
