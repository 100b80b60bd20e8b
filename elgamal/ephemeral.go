package elgamal

import (
	"crypto/cipher"
	"errors"
	"runtime"
	"sync"

	"github.com/drand/kyber"
)

// ErrEphemeralErased is the panic value when an erased Ephemeral is used.
var ErrEphemeralErased = errors.New("elgamal: ephemeral used after erasure")

// Ephemeral is a one-time nonce. It owns its scalar and overwrites it with
// zeroes on Erase; once erased it cannot be used again.
//
// Never reuse an Ephemeral for two encryptions: two ciphertexts under the same
// nonce reveal the difference of their messages.
type Ephemeral struct {
	group kyber.Group
	nonce kyber.Scalar

	once   sync.Once
	erased bool
}

// NewEphemeral picks a fresh nonce of g from rand.
func NewEphemeral(g kyber.Group, rand cipher.Stream) *Ephemeral {
	return WrapEphemeral(g, g.Scalar().Pick(rand))
}

// WrapEphemeral takes ownership of s: erasing the Ephemeral clears s.
func WrapEphemeral(g kyber.Group, s kyber.Scalar) *Ephemeral {
	e := &Ephemeral{group: g, nonce: s}
	// safety net for callers that drop an Ephemeral without erasing it
	runtime.SetFinalizer(e, (*Ephemeral).Erase)
	return e
}

// WithEphemeral samples a nonce, hands it to fn and erases it when fn
// returns, whether it returns normally, with an error or by panicking.
func WithEphemeral(g kyber.Group, rand cipher.Stream, fn func(*Ephemeral) error) error {
	e := NewEphemeral(g, rand)
	defer e.Erase()
	return fn(e)
}

// Scalar returns the nonce itself, not a copy, so that a proof built alongside
// the encryption reads the same memory that Erase clears. Callers must not
// modify or erase it. Scalar panics with ErrEphemeralErased after Erase.
func (e *Ephemeral) Scalar() kyber.Scalar {
	if e.erased {
		panic(ErrEphemeralErased)
	}
	return e.nonce
}

// MulBase returns G*nonce.
func (e *Ephemeral) MulBase() kyber.Point {
	return e.group.Point().Mul(e.Scalar(), nil)
}

// Erase zeroes the nonce. Calling it more than once is fine.
func (e *Ephemeral) Erase() {
	e.once.Do(func() {
		zeroize(e.nonce)
		e.erased = true
		runtime.SetFinalizer(e, nil)
	})
}

// Erased reports whether Erase has run.
func (e *Ephemeral) Erased() bool {
	return e.erased
}
