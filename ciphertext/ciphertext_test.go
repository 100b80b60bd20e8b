package ciphertext

import (
	"encoding/hex"
	"errors"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
	"github.com/drand/elgamal/entropy"
)

func encrypt(t *testing.T, sch *crypto.Scheme, kp *elgamal.Keypair, v int64) elgamal.Encryption {
	t.Helper()
	var enc elgamal.Encryption
	err := elgamal.WithEphemeral(sch.Group, entropy.NewStream(), func(n *elgamal.Ephemeral) error {
		enc = kp.Encrypt(elgamal.NewMessageFromInt64(sch.Group, v), n)
		return nil
	})
	require.NoError(t, err)
	return enc
}

func TestEnvelopeRoundTrip(t *testing.T) {
	for _, name := range crypto.ListSchemes() {
		sch, err := crypto.SchemeFromName(name)
		require.NoError(t, err)
		kp := elgamal.GenerateKeypair(sch.Group, entropy.NewStream())
		enc := encrypt(t, sch, kp, 42)

		buff, err := Encode(sch, enc)
		require.NoError(t, err)
		require.Contains(t, string(buff), name)

		dec, err := Decode(buff, sch)
		require.NoError(t, err)
		require.True(t, enc.Equal(dec))
		require.True(t, elgamal.NewMessageFromInt64(sch.Group, 42).Equal(kp.Decrypt(dec)))
	}
}

func TestEnvelopeHexFields(t *testing.T) {
	sch := crypto.NewEd25519Scheme()
	kp := elgamal.GenerateKeypair(sch.Group, entropy.NewStream())
	env, err := NewEnvelope(sch, encrypt(t, sch, kp, 1))
	require.NoError(t, err)

	buff, err := env.Marshal()
	require.NoError(t, err)
	// hexjson writes byte slices as hex, not base64
	require.True(t, strings.Contains(string(buff), hex.EncodeToString(env.Commitment)))

	env2 := new(Envelope)
	require.NoError(t, env2.Unmarshal(buff))
	require.Equal(t, env, env2)
}

func TestDecodeSchemeMismatch(t *testing.T) {
	ed := crypto.NewEd25519Scheme()
	g1 := crypto.NewBLS12381G1Scheme()
	kp := elgamal.GenerateKeypair(ed.Group, entropy.NewStream())

	buff, err := Encode(ed, encrypt(t, ed, kp, 3))
	require.NoError(t, err)

	_, err = Decode(buff, g1)
	require.ErrorIs(t, err, ErrSchemeMismatch)

	_, err = Decode([]byte("{not json"), ed)
	require.Error(t, err)

	env := &Envelope{Scheme: g1.Name, Commitment: []byte{1, 2}, Encryption: []byte{3}}
	_, err = env.Open(g1)
	require.Error(t, err)
}

func TestOpenRejectsTorsion(t *testing.T) {
	sch := crypto.NewEd25519Scheme()
	// (0, -1) decodes fine but has order 2
	orderTwo, err := hex.DecodeString("ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f")
	require.NoError(t, err)

	env := &Envelope{Scheme: sch.Name, Commitment: orderTwo, Encryption: orderTwo}
	_, err = env.Open(sch)
	require.ErrorIs(t, err, crypto.ErrInvalidPoint)

	kp := elgamal.GenerateKeypair(sch.Group, entropy.NewStream())
	valid, err := NewEnvelope(sch, encrypt(t, sch, kp, 4))
	require.NoError(t, err)

	env = &Envelope{Scheme: sch.Name, Commitment: valid.Commitment, Encryption: orderTwo}
	_, err = env.Open(sch)
	require.ErrorIs(t, err, crypto.ErrInvalidPoint)
	require.Contains(t, err.Error(), "encryption")

	// a valid commitment shifted by the torsion point
	torsion := sch.Group.Point()
	require.NoError(t, torsion.UnmarshalBinary(orderTwo))
	c := sch.Group.Point()
	require.NoError(t, c.UnmarshalBinary(valid.Commitment))
	shifted, err := sch.Group.Point().Add(c, torsion).MarshalBinary()
	require.NoError(t, err)
	env = &Envelope{Scheme: sch.Name, Commitment: shifted, Encryption: valid.Encryption}
	buff, err := env.Marshal()
	require.NoError(t, err)
	_, err = Decode(buff, sch)
	require.ErrorIs(t, err, crypto.ErrInvalidPoint)
	require.Contains(t, err.Error(), "commitment")

	_, err = valid.Open(sch)
	require.NoError(t, err)
}

func TestReadFile(t *testing.T) {
	sch := crypto.NewBLS12381G1Scheme()
	kp := elgamal.GenerateKeypair(sch.Group, entropy.NewStream())
	buff, err := Encode(sch, encrypt(t, sch, kp, 6))
	require.NoError(t, err)
	p := path.Join(t.TempDir(), "enc.json")
	require.NoError(t, os.WriteFile(p, buff, 0600))

	env, err := ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, sch.Name, env.Scheme)

	_, err = ReadFile(path.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	sch := crypto.NewEd25519Scheme()
	kp := elgamal.GenerateKeypair(sch.Group, entropy.NewStream())
	dir := t.TempDir()

	var paths []string
	for i, v := range []int64{2, 3, 5} {
		buff, err := Encode(sch, encrypt(t, sch, kp, v))
		require.NoError(t, err)
		p := path.Join(dir, "enc"+string(rune('a'+i))+".json")
		require.NoError(t, os.WriteFile(p, buff, 0600))
		paths = append(paths, p)
	}

	encs, err := LoadFiles(sch, paths...)
	require.NoError(t, err)
	require.Len(t, encs, 3)
	sum := elgamal.Sum(encs...)
	require.True(t, elgamal.NewMessageFromInt64(sch.Group, 10).Equal(kp.Decrypt(sum)))

	bad := path.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0600))
	missing := path.Join(dir, "missing.json")

	_, err = LoadFiles(sch, append(paths, bad, missing)...)
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	require.Contains(t, err.Error(), bad)
	require.Contains(t, err.Error(), missing)
}
