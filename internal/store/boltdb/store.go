// Package boltdb keeps ciphertext envelopes in a bbolt database and sums them
// homomorphically.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/drand/elgamal/ciphertext"
	"github.com/drand/elgamal/common/log"
	"github.com/drand/elgamal/crypto"
	"github.com/drand/elgamal/elgamal"
)

// ErrNoCiphertext is returned when the requested ciphertext, or any
// ciphertext at all for a tally, is not in the store.
var ErrNoCiphertext = errors.New("no ciphertext stored")

// BoltFileName is the name of the file boltdb writes to
const BoltFileName = "ciphertexts.db"

// BoltStoreOpenPerm is the permission we will use to read bolt store file from disk
const BoltStoreOpenPerm = 0660

// Entry is a stored ciphertext with the id it was stored under.
type Entry struct {
	ID         string
	Label      string
	Encryption elgamal.Encryption
}

// Store keeps the envelopes of a single scheme in one bucket, keyed by a
// random uuid. Envelopes of another scheme are rejected on Put.
//
//nolint:gocritic// We do want to have a mutex here
type Store struct {
	sync.Mutex
	db     *bolt.DB
	bucket []byte
	scheme *crypto.Scheme

	log log.Logger
}

// NewStore opens (or creates) the database under folder and the bucket of the
// given scheme.
func NewStore(ctx context.Context, l log.Logger, folder string, sch *crypto.Scheme, opts *bolt.Options) (*Store, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	dbPath := path.Join(folder, BoltFileName)
	db, err := bolt.Open(dbPath, BoltStoreOpenPerm, opts)
	if err != nil {
		return nil, err
	}
	bucket := []byte("ciphertexts-" + sch.Name)
	// create the bucket already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		log:    l.Named("boltdb"),
		db:     db,
		bucket: bucket,
		scheme: sch,
	}, nil
}

// Put stores enc under a fresh id and returns the id.
func (s *Store) Put(ctx context.Context, label string, enc elgamal.Encryption) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	env, err := ciphertext.NewEnvelope(s.scheme, enc)
	if err != nil {
		return "", err
	}
	env.Label = label
	value, err := env.Marshal()
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	s.Lock()
	defer s.Unlock()
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(id), value)
	})
	if err != nil {
		s.log.Errorw("storing ciphertext", "id", id, "err", err)
		return "", err
	}
	s.log.Debugw("stored ciphertext", "id", id, "label", label)
	return id, nil
}

// Get returns the entry stored under id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(s.bucket).Get([]byte(id))
		if value == nil {
			return fmt.Errorf("%w: %s", ErrNoCiphertext, id)
		}
		e, err := s.decode(id, value)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	return entry, err
}

// Len returns the number of ciphertexts in the bucket.
func (s *Store) Len(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	var length = 0
	err := s.db.View(func(tx *bolt.Tx) error {
		length = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	if err != nil {
		s.log.Warnw("", "boltdb", "error getting length", "err", err)
	}
	return length, err
}

// ForEach calls fn on every entry, in key order, stopping at the first error.
func (s *Store) ForEach(ctx context.Context, fn func(*Entry) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			e, err := s.decode(string(k), v)
			if err != nil {
				return err
			}
			return fn(e)
		})
	})
}

// Tally returns the homomorphic sum of every stored ciphertext together with
// the number of ciphertexts summed.
func (s *Store) Tally(ctx context.Context) (elgamal.Encryption, int, error) {
	var acc elgamal.Encryption
	count := 0
	err := s.ForEach(ctx, func(e *Entry) error {
		if count == 0 {
			acc = e.Encryption
		} else {
			acc = acc.Add(e.Encryption)
		}
		count++
		return nil
	})
	if err != nil {
		return elgamal.Encryption{}, 0, err
	}
	if count == 0 {
		return elgamal.Encryption{}, 0, ErrNoCiphertext
	}
	return acc, count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		s.log.Errorw("", "boltdb", "close", "err", err)
	}
	return err
}

func (s *Store) decode(id string, value []byte) (*Entry, error) {
	env := new(ciphertext.Envelope)
	if err := env.Unmarshal(value); err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	enc, err := env.Open(s.scheme)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	return &Entry{ID: id, Label: env.Label, Encryption: enc}, nil
}
