package entropy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/elgamal/common/log"
)

func TestSeededStream(t *testing.T) {
	read := func(seed string) []byte {
		buf := make([]byte, 64)
		NewSeededStream([]byte(seed)).XORKeyStream(buf, buf)
		return buf
	}
	require.Equal(t, read("seed"), read("seed"))
	require.NotEqual(t, read("seed"), read("other seed"))
}

func TestStreamMixesReaders(t *testing.T) {
	// a constant extra source must not make the stream constant
	fixed := bytes.Repeat([]byte{0x42}, 1024)
	a := make([]byte, 32)
	b := make([]byte, 32)
	NewStream(bytes.NewReader(fixed)).XORKeyStream(a, a)
	NewStream(bytes.NewReader(fixed)).XORKeyStream(b, b)
	require.NotEqual(t, a, b)

	c := make([]byte, 32)
	NewStream().XORKeyStream(c, c)
	require.NotEqual(t, make([]byte, 32), c)
}

func TestFileReader(t *testing.T) {
	testData := []byte("test random data for file reader")
	path := filepath.Join(t.TempDir(), "entropy.dat")
	require.NoError(t, os.WriteFile(path, testData, 0600))

	data := make([]byte, len(testData))
	n, err := NewFileReader(path).Read(data)
	require.NoError(t, err)
	require.Equal(t, len(testData), n)
	require.Equal(t, testData, data)

	_, err = NewFileReader(filepath.Join(t.TempDir(), "absent")).Read(data)
	require.Error(t, err)
}

func TestGetReaderFromSource(t *testing.T) {
	logger := log.New(nil, log.DebugLevel, false)
	dir := t.TempDir()

	regular := filepath.Join(dir, "regular.dat")
	require.NoError(t, os.WriteFile(regular, []byte("regular file data"), 0600))
	reader, err := GetReaderFromSource(regular, logger)
	require.NoError(t, err)
	_, ok := reader.(*fileReader)
	require.True(t, ok, "expected fileReader, got %T", reader)

	script := filepath.Join(dir, "entropy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 0123456789abcdef\n"), 0700))
	reader, err = GetReaderFromSource(script, logger)
	require.NoError(t, err)
	_, ok = reader.(*ScriptReader)
	require.True(t, ok, "expected ScriptReader, got %T", reader)

	_, err = GetReaderFromSource(dir, logger)
	require.Error(t, err)

	_, err = GetReaderFromSource("/path/to/nonexistent/file", logger)
	require.Error(t, err)
}

func TestScriptReader(t *testing.T) {
	script := filepath.Join(t.TempDir(), "entropy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf abcd\n"), 0700))

	r := NewScriptReader(script)
	require.Equal(t, script, r.GetPath())

	// 10 bytes need three runs of a 4 byte script
	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, []byte("abcdabcdab"), buf)

	_, err = NewScriptReader("").Read(buf)
	require.Error(t, err)
}
