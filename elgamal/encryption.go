package elgamal

import (
	"fmt"

	"github.com/drand/kyber"
)

// Encryption is an ElGamal ciphertext (G*n, M + Y*n).
type Encryption struct {
	Commitment kyber.Point
	Encryption kyber.Point
}

// Add returns the componentwise sum e + o, which decrypts to the sum of both
// messages. Both operands must be under the same public key; the nonce of the
// result is the sum of both nonces, which matters to any proof over it.
func (e Encryption) Add(o Encryption) Encryption {
	return Encryption{
		Commitment: e.Commitment.Clone().Add(e.Commitment, o.Commitment),
		Encryption: e.Encryption.Clone().Add(e.Encryption, o.Encryption),
	}
}

// Equal reports whether both ciphertexts have the same components.
func (e Encryption) Equal(o Encryption) bool {
	return e.Commitment.Equal(o.Commitment) && e.Encryption.Equal(o.Encryption)
}

func (e Encryption) String() string {
	return fmt.Sprintf("Encryption{%s, %s}", e.Commitment, e.Encryption)
}

// Add returns a + b.
func Add(a, b Encryption) Encryption {
	return a.Add(b)
}

// Sum folds Add over encs. It panics on an empty list since there is no group
// to take the neutral element from.
func Sum(encs ...Encryption) Encryption {
	if len(encs) == 0 {
		panic("elgamal: sum of no encryptions")
	}
	acc := encs[0]
	for _, e := range encs[1:] {
		acc = acc.Add(e)
	}
	return acc
}
