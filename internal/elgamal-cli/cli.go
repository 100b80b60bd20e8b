// Package elgamalcli is the command line tool around the elgamal package: it
// generates and stores keys, encrypts small integers, adds ciphertexts and
// decrypts them.
package elgamalcli

import (
	"context"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	json "github.com/nikkolasg/hexjson"
	"github.com/urfave/cli/v2"

	"github.com/drand/elgamal/ciphertext"
	"github.com/drand/elgamal/common/log"
	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
	"github.com/drand/elgamal/entropy"
	"github.com/drand/elgamal/fs"
	"github.com/drand/elgamal/internal/store/boltdb"
	"github.com/drand/elgamal/key"
)

// Automatically set through -ldflags
// Example: go install -ldflags "-X github.com/drand/elgamal/internal/elgamal-cli.version=`git describe --tags` -X github.com/drand/elgamal/internal/elgamal-cli.gitCommit=`git rev-parse HEAD`"
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

var SetVersionPrinter sync.Once

// DefaultFolderName is the name of the folder under the home directory where
// keys and the ciphertext database are kept by default.
const DefaultFolderName = ".elgamal"

// DefaultDBFolder is the folder, under the main folder, of the ciphertext
// database.
const DefaultDBFolder = "db"

// DefaultConfigFolder returns the default path of the configuration folder.
func DefaultConfigFolder() string {
	return path.Join(fs.HomeFolder(), DefaultFolderName)
}

var folderFlag = &cli.StringFlag{
	Name:    "folder",
	Value:   DefaultConfigFolder(),
	Usage:   "Folder to keep the key pair and the ciphertext database, with absolute path.",
	EnvVars: []string{"ELGAMAL_FOLDER"},
}

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Usage:   "If set, verbosity is at the debug level",
	EnvVars: []string{"ELGAMAL_VERBOSE"},
}

var jsonFlag = &cli.BoolFlag{
	Name:    "json",
	Usage:   "Set the logs output as json format",
	EnvVars: []string{"ELGAMAL_JSON"},
}

var schemeFlag = &cli.StringFlag{
	Name:    "scheme",
	Usage:   "Group the keys and ciphertexts live in. Keys and envelopes loaded from files carry their own.",
	Value:   crypto.DefaultSchemeID,
	EnvVars: []string{"ELGAMAL_SCHEME"},
}

var entropySourceFlag = &cli.StringFlag{
	Name: "entropy-source",
	Usage: "File or executable whose output is mixed with crypto/rand when picking " +
		"secret keys and nonces.",
	EnvVars: []string{"ELGAMAL_ENTROPY_SOURCE"},
}

var plaintextFlag = &cli.Int64Flag{
	Name:     "plaintext",
	Usage:    "Integer to encrypt.",
	Required: true,
}

var publicFlag = &cli.StringFlag{
	Name:  "public",
	Usage: "Public key file to encrypt to. Defaults to the public key of the folder.",
}

var inFlag = &cli.StringFlag{
	Name:     "in",
	Usage:    "Ciphertext envelope file to read.",
	Required: true,
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Save the ciphertext envelope into this file instead of printing it.",
}

var expectFlag = &cli.Int64Flag{
	Name:  "expect",
	Usage: "Check whether the decrypted point is the encoding of this integer.",
}

var labelFlag = &cli.StringFlag{
	Name:  "label",
	Usage: "Free form tag stored along the ciphertext.",
}

var appCommands = []*cli.Command{
	{
		Name:  "keygen",
		Usage: "Generate the key pair (elgamal_id.private, elgamal_id.public) in the folder.",
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("keygenCmd")
			return keygenCmd(c, l)
		},
	},
	{
		Name:  "show",
		Usage: "Local information retrieval about the key material of the folder.",
		Subcommands: []*cli.Command{
			{
				Name:  "public",
				Usage: "Shows the public key.",
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("showPublicCmd")
					return showPublicCmd(c, l)
				},
			},
		},
	},
	{
		Name:  "encrypt",
		Usage: "Encrypt an integer to a public key and print the ciphertext envelope.",
		Flags: toArray(plaintextFlag, publicFlag, outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("encryptCmd")
			return encryptCmd(c, l)
		},
	},
	{
		Name:  "decrypt",
		Usage: "Decrypt a ciphertext envelope with the key pair of the folder.",
		Flags: toArray(inFlag, expectFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("decryptCmd")
			return decryptCmd(c, l)
		},
	},
	{
		Name:      "add",
		Usage:     "Add ciphertext envelopes homomorphically and print the sum.",
		ArgsUsage: "<envelope files...>",
		Flags:     toArray(outFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), logJSON(c)).
				Named("addCmd")
			return addCmd(c, l)
		},
	},
	{
		Name:  "store",
		Usage: "Keep ciphertexts in the local database and tally them.",
		Subcommands: []*cli.Command{
			{
				Name:  "put",
				Usage: "Store a ciphertext envelope and print its id.",
				Flags: toArray(inFlag, labelFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("storePutCmd")
					return storePutCmd(c, l)
				},
			},
			{
				Name:  "tally",
				Usage: "Print the sum of every stored ciphertext.",
				Flags: toArray(outFlag),
				Action: func(c *cli.Context) error {
					l := log.New(nil, logLevel(c), logJSON(c)).
						Named("storeTallyCmd")
					return storeTallyCmd(c, l)
				},
			},
		},
	},
}

// CLI runs the elgamal app
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "elgamal"

	SetVersionPrinter.Do(func() {
		cli.VersionPrinter = func(c *cli.Context) {
			fmt.Fprintf(c.App.Writer, "elgamal %s (date %v, commit %v)\n", version, buildDate, gitCommit)
		}
	})

	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent default behavior of calling OS.exit(1),
		// when tests expect to be able to run multiple commands.
	}
	app.Version = version
	app.Usage = "additively homomorphic ElGamal encryption"
	// we need to copy the underlying commands to avoid races, cli sadly doesn't support concurrent executions well
	appComm := make([]*cli.Command, len(appCommands))
	for i, p := range appCommands {
		v := *p
		appComm[i] = &v
	}
	app.Commands = appComm
	// we need to copy the underlying flags to avoid races
	verbFlag := *verboseFlag
	foldFlag := *folderFlag
	jFlag := *jsonFlag
	schFlag := *schemeFlag
	entFlag := *entropySourceFlag
	app.Flags = toArray(&verbFlag, &foldFlag, &jFlag, &schFlag, &entFlag)
	return app
}

func keygenCmd(c *cli.Context, l log.Logger) error {
	sch, err := crypto.SchemeFromName(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}
	store, err := keyStore(c, l)
	if err != nil {
		return err
	}
	keyDirectory := path.Join(c.String(folderFlag.Name), key.FolderName)
	_, err = store.LoadKeyPair()
	switch {
	case err == nil:
		fmt.Fprintf(c.App.Writer, "Keypair already present in `%s`.\nRemove them before generating new one\n", keyDirectory)
		return nil
	case !errors.Is(err, key.ErrNoPrivateKey):
		// a private key is there, never overwrite it
		return fmt.Errorf("existing key material in %s can't be loaded, not generating a new key: %w", keyDirectory, err)
	}

	rand, err := randomStream(c, l)
	if err != nil {
		return err
	}
	priv := key.NewKeyPair(sch, rand)
	if err := store.SaveKeyPair(priv); err != nil {
		return fmt.Errorf("could not save key: %w", err)
	}

	absPath, err := filepath.Abs(keyDirectory)
	if err != nil {
		return fmt.Errorf("err getting full path: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Generated %s keys at %s\n", sch, absPath)
	fmt.Fprintf(c.App.Writer, "Fingerprint: %s\n", key.Fingerprint(priv.Key.Public))
	return nil
}

func showPublicCmd(c *cli.Context, l log.Logger) error {
	store, err := keyStore(c, l)
	if err != nil {
		return err
	}
	pub, err := store.LoadPublic()
	if err != nil {
		return fmt.Errorf("could not load public key: %w", err)
	}
	return printJSON(c.App.Writer, pub.TOML())
}

func encryptCmd(c *cli.Context, l log.Logger) error {
	pub, err := loadPublic(c, l)
	if err != nil {
		return err
	}
	rand, err := randomStream(c, l)
	if err != nil {
		return err
	}

	g := pub.Scheme.Group
	msg := elgamal.NewMessageFromInt64(g, c.Int64(plaintextFlag.Name))
	var enc elgamal.Encryption
	err = elgamal.WithEphemeral(g, rand, func(nonce *elgamal.Ephemeral) error {
		enc = pub.Key.Encrypt(msg, nonce)
		return nil
	})
	if err != nil {
		return err
	}
	l.Debugw("encrypted", "scheme", pub.Scheme.Name, "public", key.Fingerprint(pub.Key))
	return writeEnvelope(c, pub.Scheme, enc)
}

type decryptOutput struct {
	Scheme   string
	Point    []byte
	Expected *int64 `json:",omitempty"`
	Match    *bool  `json:",omitempty"`
}

func decryptCmd(c *cli.Context, l log.Logger) error {
	store, err := keyStore(c, l)
	if err != nil {
		return err
	}
	pair, err := store.LoadKeyPair()
	if err != nil {
		return fmt.Errorf("could not load key pair: %w", err)
	}
	defer pair.Key.Secret.Erase()

	enc, err := ciphertext.LoadFile(pair.Scheme, c.String(inFlag.Name))
	if err != nil {
		return err
	}
	point := pair.Key.Decrypt(enc)
	buff, err := point.MarshalBinary()
	if err != nil {
		return err
	}

	out := decryptOutput{Scheme: pair.Scheme.Name, Point: buff}
	if c.IsSet(expectFlag.Name) {
		v := c.Int64(expectFlag.Name)
		match := elgamal.NewMessageFromInt64(pair.Scheme.Group, v).Equal(point)
		out.Expected = &v
		out.Match = &match
		l.Debugw("checked decryption", "expected", v, "match", match)
	}
	return printJSON(c.App.Writer, out)
}

func addCmd(c *cli.Context, l log.Logger) error {
	if !c.Args().Present() {
		return errors.New("add needs at least one ciphertext envelope file")
	}
	sch, err := envelopeScheme(c, c.Args().First())
	if err != nil {
		return err
	}
	encs, err := ciphertext.LoadFiles(sch, c.Args().Slice()...)
	if err != nil {
		return err
	}
	l.Debugw("adding ciphertexts", "count", len(encs))
	return writeEnvelope(c, sch, elgamal.Sum(encs...))
}

func storePutCmd(c *cli.Context, l log.Logger) error {
	sch, err := envelopeScheme(c, c.String(inFlag.Name))
	if err != nil {
		return err
	}
	enc, err := ciphertext.LoadFile(sch, c.String(inFlag.Name))
	if err != nil {
		return err
	}
	ctx := c.Context
	store, err := openStore(ctx, c, l, sch)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Put(ctx, c.String(labelFlag.Name), enc)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, id)
	return nil
}

func storeTallyCmd(c *cli.Context, l log.Logger) error {
	sch, err := folderScheme(c, l)
	if err != nil {
		return err
	}
	ctx := c.Context
	store, err := openStore(ctx, c, l, sch)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, count, err := store.Tally(ctx)
	if err != nil {
		return err
	}
	l.Infow("tally", "count", count)
	return writeEnvelope(c, sch, sum)
}

func keyStore(c *cli.Context, l log.Logger) (key.Store, error) {
	return key.NewFileStore(l, c.String(folderFlag.Name))
}

func openStore(ctx context.Context, c *cli.Context, l log.Logger, sch *crypto.Scheme) (*boltdb.Store, error) {
	dbFolder, err := fs.CreateSecureFolder(path.Join(c.String(folderFlag.Name), DefaultDBFolder))
	if err != nil {
		return nil, err
	}
	return boltdb.NewStore(ctx, l, dbFolder, sch, nil)
}

// envelopeScheme returns the scheme given by the scheme flag or, when it is
// not set, the one the envelope in file was produced in.
func envelopeScheme(c *cli.Context, file string) (*crypto.Scheme, error) {
	if c.IsSet(schemeFlag.Name) {
		return crypto.SchemeFromName(c.String(schemeFlag.Name))
	}
	env, err := ciphertext.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return crypto.SchemeFromName(env.Scheme)
}

// folderScheme returns the scheme given by the scheme flag or, when it is not
// set, the one of the public key of the folder. It falls back to the default
// scheme for a folder without keys.
func folderScheme(c *cli.Context, l log.Logger) (*crypto.Scheme, error) {
	if c.IsSet(schemeFlag.Name) {
		return crypto.SchemeFromName(c.String(schemeFlag.Name))
	}
	store, err := keyStore(c, l)
	if err != nil {
		return nil, err
	}
	pub, err := store.LoadPublic()
	switch {
	case err == nil:
		return pub.Scheme, nil
	case errors.Is(err, key.ErrAbsent):
		return crypto.SchemeFromName(c.String(schemeFlag.Name))
	default:
		return nil, fmt.Errorf("could not load public key: %w", err)
	}
}

// loadPublic reads the public key given by the public flag, or the one of the
// folder.
func loadPublic(c *cli.Context, l log.Logger) (*key.Public, error) {
	if c.IsSet(publicFlag.Name) {
		pub := new(key.Public)
		if err := key.Load(c.String(publicFlag.Name), pub); err != nil {
			return nil, fmt.Errorf("could not load public key: %w", err)
		}
		return pub, nil
	}
	store, err := keyStore(c, l)
	if err != nil {
		return nil, err
	}
	pub, err := store.LoadPublic()
	if err != nil {
		return nil, fmt.Errorf("could not load public key: %w", err)
	}
	return pub, nil
}

func randomStream(c *cli.Context, l log.Logger) (cipher.Stream, error) {
	if !c.IsSet(entropySourceFlag.Name) {
		return entropy.NewStream(), nil
	}
	r, err := entropy.GetReaderFromSource(c.String(entropySourceFlag.Name), l)
	if err != nil {
		return nil, err
	}
	return entropy.NewStream(r), nil
}

func writeEnvelope(c *cli.Context, sch *crypto.Scheme, enc elgamal.Encryption) error {
	env, err := ciphertext.NewEnvelope(sch, enc)
	if err != nil {
		return err
	}
	if !c.IsSet(outFlag.Name) {
		return printJSON(c.App.Writer, env)
	}
	buff, err := env.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(c.String(outFlag.Name), buff, 0600)
}

func printJSON(w io.Writer, j interface{}) error {
	buff, err := json.MarshalIndent(j, "", "    ")
	if err != nil {
		return fmt.Errorf("could not JSON marshal: %w", err)
	}
	fmt.Fprintln(w, string(buff))
	return nil
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

func logLevel(c *cli.Context) int {
	if c.Bool(verboseFlag.Name) {
		return log.DebugLevel
	}

	return log.ErrorLevel
}

func logJSON(c *cli.Context) bool {
	return c.Bool(jsonFlag.Name)
}
