package accesspolicy

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

// policy record keys carry a prefix so other record kinds can share the database
var policyKeyPrefix = []byte("policy/")

func policyKey(resourceID string) []byte {
	return append(policyKeyPrefix[:len(policyKeyPrefix):len(policyKeyPrefix)], resourceID...)
}

// BadgerStore is an embedded policy store for single-node deployments
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore returns a policy store with badger used as a backend
func NewBadgerStore(db *badger.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &BadgerStore{db}, nil
}

// UpsertPolicy stores a gob-encoded policy keyed by its resource id
func (s *BadgerStore) UpsertPolicy(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error) {
	if p.ResourceID == "" {
		return p, ErrNoResourceID
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var payload bytes.Buffer
		if err := gob.NewEncoder(&payload).Encode(p); err != nil {
			return errors.Wrap(err, "failed to encode resource policy")
		}

		if err := txn.Set(policyKey(p.ResourceID), payload.Bytes()); err != nil {
			return errors.Wrapf(err, "failed to store resource policy: %s", p.ResourceID)
		}

		return nil
	})

	return p, err
}

// FetchByResourceID retrieves a policy by the resource it governs
func (s *BadgerStore) FetchByResourceID(ctx context.Context, resourceID string) (p ResourcePolicy, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(policyKey(resourceID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrPolicyNotFound
			}

			return err
		}

		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&p)
		})
	})

	return p, err
}

// FetchAll returns every stored policy in key order
func (s *BadgerStore) FetchAll(ctx context.Context) (ps []ResourcePolicy, err error) {
	ps = make([]ResourcePolicy, 0)

	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(policyKeyPrefix); it.ValidForPrefix(policyKeyPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p ResourcePolicy
				if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&p); err != nil {
					return errors.Wrap(err, "failed to decode resource policy")
				}

				ps = append(ps, p)

				return nil
			})

			if err != nil {
				return err
			}
		}

		return nil
	})

	return ps, err
}

// DeleteByResourceID removes a policy from the store
func (s *BadgerStore) DeleteByResourceID(ctx context.Context, resourceID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := policyKey(resourceID)

		if _, err := txn.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrPolicyNotFound
			}

			return err
		}

		return txn.Delete(key)
	})
}
