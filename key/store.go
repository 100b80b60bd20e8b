package key

import (
	"errors"
	"fmt"
	"os"
	"path"
	"reflect"

	"github.com/BurntSushi/toml"

	"github.com/drand/elgamal/common/log"
	"github.com/drand/elgamal/fs"
)

// Store abstracts the loading and saving of the key material. For the moment,
// only a file based store is implemented.
type Store interface {
	// SaveKeyPair saves the private key, and the public key in a separate file.
	SaveKeyPair(p *Pair) error
	// LoadKeyPair loads the private key and checks it against the public key
	// file.
	LoadKeyPair() (*Pair, error)
	// LoadPublic only loads the public key file, it works on a folder
	// holding nothing but a public key.
	LoadPublic() (*Public, error)
}

// ErrAbsent is wrapped by errors of the store when the file does not exist.
var ErrAbsent = errors.New("store can't find requested object")

// ErrNoPrivateKey is returned by LoadKeyPair when the private key file does
// not exist. It wraps ErrAbsent.
var ErrNoPrivateKey = fmt.Errorf("no private key: %w", ErrAbsent)

// FolderName is the name of the folder where the keys are stored, under the
// base folder.
const FolderName = "key"

const keyFileName = "elgamal_id"
const privateExtension = ".private"
const publicExtension = ".public"

// Tomler represents any struct that can be (un)marshaled into/from toml format
type Tomler interface {
	TOML() interface{}
	FromTOML(i interface{}) error
	TOMLValue() interface{}
}

// fileStore is a Store using filesystem to store information
type fileStore struct {
	log            log.Logger
	baseFolder     string
	keyFolder      string
	privateKeyFile string
	publicKeyFile  string
}

// NewFileStore is used to create the config folder and all the subfolders. If
// a folder already exists with the wrong permissions, an error is returned.
func NewFileStore(l log.Logger, baseFolder string) (Store, error) {
	keyFolder := path.Join(baseFolder, FolderName)
	if _, err := fs.CreateSecureFolder(keyFolder); err != nil {
		return nil, err
	}
	return &fileStore{
		log:            l.Named("keystore"),
		baseFolder:     baseFolder,
		keyFolder:      keyFolder,
		privateKeyFile: path.Join(keyFolder, keyFileName) + privateExtension,
		publicKeyFile:  path.Join(keyFolder, keyFileName) + publicExtension,
	}, nil
}

// SaveKeyPair first saves the private key in a file with tight permissions and then
// saves the public part in another file.
func (f *fileStore) SaveKeyPair(p *Pair) error {
	if err := Save(f.privateKeyFile, p, true); err != nil {
		return err
	}
	f.log.Infow("saved the key", "fingerprint", Fingerprint(p.Key.Public), "path", f.privateKeyFile)
	return Save(f.publicKeyFile, p.Public(), false)
}

// LoadKeyPair decodes private key first then public, and fails with
// ErrInconsistentKeypair when they do not belong together.
func (f *fileStore) LoadKeyPair() (*Pair, error) {
	p := new(Pair)
	if err := Load(f.privateKeyFile, p); err != nil {
		if errors.Is(err, ErrAbsent) {
			return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, f.privateKeyFile)
		}
		return nil, err
	}
	pub := new(Public)
	if err := Load(f.publicKeyFile, pub); err != nil {
		return nil, err
	}
	if !pub.Equal(p.Public()) {
		f.log.Errorw("key files do not match", "private", f.privateKeyFile, "public", f.publicKeyFile)
		return nil, ErrInconsistentKeypair
	}
	return p, nil
}

func (f *fileStore) LoadPublic() (*Public, error) {
	p := new(Public)
	return p, Load(f.publicKeyFile, p)
}

// Save the given Tomler interface to the given path. If secure is true, the
// file will have a 0600 permission.
func Save(filePath string, t Tomler, secure bool) error {
	var fd *os.File
	var err error
	if secure {
		fd, err = fs.CreateSecureFile(filePath)
	} else {
		fd, err = os.Create(filePath)
	}
	if err != nil {
		return fmt.Errorf("config: can't save %s to %s: %w", reflect.TypeOf(t).String(), filePath, err)
	}
	defer fd.Close()
	return toml.NewEncoder(fd).Encode(t.TOML())
}

// Load the given Tomler from the given file path.
func Load(filePath string, t Tomler) error {
	exists, err := fs.Exists(filePath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAbsent, filePath)
	}
	tomlValue := t.TOMLValue()
	if _, err := toml.DecodeFile(filePath, tomlValue); err != nil {
		return err
	}
	return t.FromTOML(tomlValue)
}
