package elgamal

import "github.com/drand/kyber"

// Message is an encoded plaintext: the group element G*m for a plaintext
// scalar m. There is no way back from the point to m; callers keep m.
type Message struct {
	point kyber.Point
}

// NewMessage encodes plaintext as G*plaintext.
func NewMessage(g kyber.Group, plaintext kyber.Scalar) Message {
	return Message{point: g.Point().Mul(plaintext, nil)}
}

// NewMessageFromInt64 encodes the small integer v.
func NewMessageFromInt64(g kyber.Group, v int64) Message {
	return NewMessage(g, g.Scalar().SetInt64(v))
}

// Point returns a copy of the encoded group element.
func (m Message) Point() kyber.Point {
	return m.point.Clone()
}

// Equal reports whether p is this message, typically the output of
// SecretKey.Decrypt.
func (m Message) Equal(p kyber.Point) bool {
	return m.point.Equal(p)
}

func (m Message) String() string {
	return m.point.String()
}
