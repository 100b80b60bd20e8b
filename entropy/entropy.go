// Package entropy provides the random sources keys and nonces are sampled
// from.
package entropy

import (
	"bufio"
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/drand/kyber/util/random"
	"github.com/drand/kyber/xof/blake2xb"

	"github.com/drand/elgamal/common/log"
)

// NewStream returns the stream keys and nonces are picked from. Without
// readers it reads crypto/rand; with readers it mixes all of them, so an extra
// source can only add entropy.
func NewStream(readers ...io.Reader) cipher.Stream {
	if len(readers) == 0 {
		return random.New()
	}
	all := make([]io.Reader, 0, len(readers)+1)
	all = append(all, rand.Reader)
	all = append(all, readers...)
	return random.New(all...)
}

// NewSeededStream returns a deterministic stream expanded from seed. Only for
// tests and reproducible vectors: anyone knowing the seed knows every key and
// nonce picked from it.
func NewSeededStream(seed []byte) cipher.Stream {
	return blake2xb.New(seed)
}

// NewFileReader creates a reader that reads random bytes directly from a file
func NewFileReader(filePath string) io.Reader {
	return &fileReader{
		path: filePath,
	}
}

type fileReader struct {
	path string
}

func (r *fileReader) Read(p []byte) (n int, err error) {
	file, err := os.Open(r.path)
	if err != nil {
		return 0, fmt.Errorf("entropy: cannot open file: %w", err)
	}
	defer file.Close()

	n, err = file.Read(p)
	if err != nil {
		return 0, fmt.Errorf("entropy: error reading from file: %w", err)
	}

	return n, nil
}

// GetReaderFromSource creates a reader for the provided path. Executable files
// are run and their output used, other files are read directly.
func GetReaderFromSource(sourcePath string, logger log.Logger) (io.Reader, error) {
	fileInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("entropy: cannot access source: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("entropy: source path is a directory, not a file")
	}

	if fileInfo.Mode().IsRegular() && fileInfo.Mode().Perm()&0111 != 0 {
		logger.Infow("Using script for entropy source", "source", sourcePath)
		return NewScriptReader(sourcePath), nil
	}

	logger.Infow("Using file for entropy source", "source", sourcePath)
	return NewFileReader(sourcePath), nil
}

// ScriptReader hold info for user entropy produced by an executable
type ScriptReader struct {
	Path string
}

var _ io.Reader = &ScriptReader{}

// Read calls the executable as many times needed to fill the array p
// n == len(p) if and only if err == nil
func (r *ScriptReader) Read(p []byte) (n int, err error) {
	if r.Path == "" {
		return 0, errors.New("entropy: no script was provided")
	}
	read := 0
	for read < len(p) {
		var b bytes.Buffer
		w := bufio.NewWriter(&b)
		cmd := exec.Command(r.Path) // #nosec
		cmd.Stdout = w
		if err := cmd.Run(); err != nil {
			return read, fmt.Errorf("entropy: cannot run script: %w", err)
		}
		if err := w.Flush(); err != nil {
			return read, err
		}
		if b.Len() == 0 {
			return read, errors.New("entropy: script produced no output")
		}
		read += copy(p[read:], b.Bytes())
	}
	return len(p), nil
}

// GetPath returns the path of the script
func (r *ScriptReader) GetPath() string {
	return r.Path
}

// NewScriptReader creates a new ScriptReader struct
func NewScriptReader(path string) *ScriptReader {
	return &ScriptReader{path}
}
