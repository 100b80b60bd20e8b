// Package elgamal implements additive ElGamal encryption over a prime-order
// kyber group, the building block used for blind issuance of algebraic-MAC
// credentials.
//
// A plaintext scalar m is mapped to the group element m*G. That map is not
// inverted anywhere: the issuance protocol has the user keep m and only hand
// out the encryption, so decryption returns the point m*G and the caller
// compares it against the Message it built itself.
//
// Ciphertexts are (n*G, M + n*Y) where Y is the public key and n a one-time
// nonce held in an Ephemeral. Ephemerals overwrite their scalar with zeroes
// when erased; use WithEphemeral to get the erasure on every exit path:
//
//	err := elgamal.WithEphemeral(g, random.New(), func(nonce *elgamal.Ephemeral) error {
//		enc := pk.Encrypt(msg, nonce)
//		return prove(enc, nonce.Scalar())
//	})
//
// Nothing in this package performs I/O or logs.
package elgamal
