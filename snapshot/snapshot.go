// Package snapshot stores the successive states of a mesh in a badger
// database, one [meshtext] document per simulation step.
package snapshot

import (
	"bytes"
	"encoding/binary"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/vertexmodel/epimesh"
	"github.com/vertexmodel/epimesh/meshtext"
)

var ErrNoSnapshot = errors.New("no snapshot for step")

var keyPrefix = []byte("mesh/")

func stepKey(step uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], step)
	return k
}

// Options configures [Open].
type Options struct {
	// Dir is the database directory. An empty Dir keeps the store in
	// memory.
	Dir      string
	ReadOnly bool
	// Config supplies the attributes of meshes read back by Get.
	Config epimesh.Config
}

// Store is a step-indexed collection of mesh snapshots. It is safe for
// concurrent use.
type Store struct {
	db  *badger.DB
	cfg epimesh.Config
}

// Open opens or creates a store.
func Open(opts Options) (*Store, error) {
	dbOpts := badger.DefaultOptions(opts.Dir)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.Logger = nil
	if opts.Dir == "" {
		if opts.ReadOnly {
			return nil, errors.New("snapshot: a read-only store needs a directory")
		}
		dbOpts.InMemory = true
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: open")
	}
	return &Store{db: db, cfg: opts.Config}, nil
}

// Put stores m as the snapshot of step, replacing any previous one.
func (s *Store) Put(step uint64, m *epimesh.Mesh) error {
	var buf bytes.Buffer
	if err := meshtext.Format(&buf, m); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stepKey(step), buf.Bytes())
	})
	if err != nil {
		return errors.Wrapf(err, "snapshot: put step %d", step)
	}
	klog.V(2).Infof("snapshot: stored step %d (%d bytes)", step, buf.Len())
	return nil
}

// Get returns the mesh stored for step.
func (s *Store) Get(step uint64) (*epimesh.Mesh, error) {
	var doc []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stepKey(step))
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNoSnapshot, "snapshot: step %d", step)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: get step %d", step)
	}
	return meshtext.Parse(bytes.NewReader(doc), s.cfg)
}

// Steps returns the stored steps in ascending order.
func (s *Store) Steps() ([]uint64, error) {
	var steps []uint64
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Prefix: keyPrefix,
		})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			steps = append(steps, binary.BigEndian.Uint64(k[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: list steps")
	}
	return steps, nil
}

// Delete removes the snapshot of step, if any.
func (s *Store) Delete(step uint64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(stepKey(step))
	})
	if err != nil {
		return errors.Wrapf(err, "snapshot: delete step %d", step)
	}
	return nil
}

// Close closes the database. Later calls to Close return nil; every other
// method fails once the store is closed.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "snapshot: close")
}
