package elgamal

import (
	"runtime"

	"github.com/drand/kyber"
	"github.com/drand/kyber/group/mod"
)

// zeroize overwrites s in place. Fixed-size scalars (edwards25519) are cleared
// by Zero itself; modular integers (bls12-381) would only get their length
// reset, so their limbs are cleared first.
func zeroize(s kyber.Scalar) {
	if s == nil {
		return
	}
	if i, ok := s.(*mod.Int); ok {
		words := i.V.Bits()
		for j := range words {
			words[j] = 0
		}
		runtime.KeepAlive(words)
	}
	s.Zero()
	// prevent dead store elimination, see golang/go#33325
	runtime.KeepAlive(s)
}

// EraseScalar overwrites s in place, limbs included. Use it on copies of
// secrets, such as the one returned by SecretKey.Scalar.
func EraseScalar(s kyber.Scalar) {
	zeroize(s)
}
