// Package storage persists the enrolled profile collection as a bbolt
// bundle file. The bundle holds only public material: fingerprints,
// ciphertext fields and the KDF iteration count. Nothing in it is usable
// without a password.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/illarion/profilevault/internal/profile"
)

// Bucket names
var (
	configBucket   = []byte("config")   // format version, timestamps, KDF params
	profilesBucket = []byte("profiles") // enrollment-ordered encrypted profiles
)

// Config keys
var (
	configVersion  = []byte("version")
	configCreated  = []byte("created")
	configModified = []byte("modified")
	configIters    = []byte("iterations")
)

// Bundle is an on-disk collection of enrolled profiles
type Bundle struct {
	db *bolt.DB
}

// Open opens or creates a bundle at the given path
func Open(path string) (*Bundle, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	return &Bundle{db: db}, nil
}

// Close closes the bundle
func (b *Bundle) Close() error {
	return b.db.Close()
}

// Initialize creates the bucket structure for a new bundle and records the
// KDF iteration count all profiles in it will be enrolled with. Calling it
// on an initialized bundle is a no-op that keeps the existing config.
func (b *Bundle) Initialize(iterations int) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(configBucket)
		if err != nil {
			return fmt.Errorf("failed to create config bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(profilesBucket); err != nil {
			return fmt.Errorf("failed to create profiles bucket: %w", err)
		}

		if config.Get(configVersion) != nil {
			return nil
		}

		if err := config.Put(configVersion, []byte("1")); err != nil {
			return err
		}

		iters := make([]byte, 4)
		binary.BigEndian.PutUint32(iters, uint32(iterations))
		if err := config.Put(configIters, iters); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(configCreated, created); err != nil {
			return err
		}
		return config.Put(configModified, created)
	})
}

// IsInitialized checks whether the bundle has been initialized
func (b *Bundle) IsInitialized() (bool, error) {
	var initialized bool
	err := b.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(configBucket)
		if config != nil && config.Get(configVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// Iterations returns the KDF iteration count the bundle was created with
func (b *Bundle) Iterations() (int, error) {
	var iterations int
	err := b.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(configBucket)
		if config == nil {
			return fmt.Errorf("bundle not initialized")
		}
		iters := config.Get(configIters)
		if len(iters) != 4 {
			return fmt.Errorf("iterations not found")
		}
		iterations = int(binary.BigEndian.Uint32(iters))
		return nil
	})
	return iterations, err
}

// Modified returns the last modification timestamp
func (b *Bundle) Modified() (time.Time, error) {
	var modified time.Time
	err := b.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(configBucket)
		if config == nil {
			return fmt.Errorf("bundle not initialized")
		}
		data := config.Get(configModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// SaveProfile appends an encrypted profile to the bundle. If a profile
// with the same fingerprint already exists it is replaced in place, so
// re-enrolling under the same password updates rather than duplicates.
func (b *Bundle) SaveProfile(p *profile.Encrypted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		profiles := tx.Bucket(profilesBucket)
		if profiles == nil {
			return fmt.Errorf("bundle not initialized")
		}

		// Replace an existing enrollment under the same fingerprint
		var existingKey []byte
		err := profiles.ForEach(func(k, v []byte) error {
			var existing profile.Encrypted
			if err := json.Unmarshal(v, &existing); err != nil {
				return fmt.Errorf("failed to decode stored profile: %w", err)
			}
			if existing.Fingerprint == p.Fingerprint {
				existingKey = append([]byte(nil), k...)
			}
			return nil
		})
		if err != nil {
			return err
		}

		key := existingKey
		if key == nil {
			seq, err := profiles.NextSequence()
			if err != nil {
				return err
			}
			key = make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
		}
		if err := profiles.Put(key, data); err != nil {
			return err
		}

		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(configBucket).Put(configModified, modified)
	})
}

// Compact creates a compacted copy of the bundle, removing the space left
// behind by replaced enrollments, and atomically swaps it in.
func (b *Bundle) Compact() error {
	srcPath := b.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact bundle: %w", err)
	}

	// Copy all buckets
	err = b.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				dstBucket.SetSequence(srcBucket.Sequence())
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy bundle data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact bundle: %w", err)
	}

	if err := b.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source bundle: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace bundle: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	b.db, err = bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen bundle: %w", err)
	}

	return nil
}

// LoadCollection reads all enrolled profiles in enrollment order
func (b *Bundle) LoadCollection() (profile.Collection, error) {
	var collection profile.Collection
	err := b.db.View(func(tx *bolt.Tx) error {
		profiles := tx.Bucket(profilesBucket)
		if profiles == nil {
			return fmt.Errorf("bundle not initialized")
		}
		return profiles.ForEach(func(k, v []byte) error {
			p := &profile.Encrypted{}
			if err := json.Unmarshal(v, p); err != nil {
				return fmt.Errorf("failed to decode stored profile: %w", err)
			}
			collection = append(collection, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}
