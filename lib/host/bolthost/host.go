package bolthost

import (
	"fmt"
	"time"

	"github.com/fwdslash/dynkv/lib/host"
	bolt "go.etcd.io/bbolt"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the bbolt bag during initialization.
type Options struct {
	Kind   host.OwnerKind // Kind of the owning entity
	Limits host.Limits    // Byte ceilings (zero value = DefaultLimits)
}

// DefaultOptions returns the default bbolt bag options.
func DefaultOptions() *Options {
	return &Options{
		Kind:   host.OwnerWorld,
		Limits: host.DefaultLimits(),
	}
}

// --------------------------------------------------------------------------
// bbolt Property Bag
// --------------------------------------------------------------------------

// Bag is a property bag persisted in a bbolt database. Each owner gets one
// bucket named after its owner id, so many owners can share one database
// file. Enumeration order is lexicographic by slot id (bbolt cursor order).
type Bag struct {
	db     *bolt.DB
	bucket []byte
	kind   host.OwnerKind
	limits host.Limits
	ownsDB bool
}

// Open opens (or creates) the database file at path and returns a bag for
// the given owner. The bag owns the database handle; Close releases it.
func Open(path, ownerID string, opts *Options) (*Bag, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open property database %q: %w", path, err)
	}
	bag, err := New(db, ownerID, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	bag.ownsDB = true
	return bag, nil
}

// New returns a bag for the given owner on an already-open database.
// The caller keeps ownership of the database handle.
func New(db *bolt.DB, ownerID string, opts *Options) (*Bag, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	limits := opts.Limits
	if limits.MaxSlotBytes == 0 && limits.MaxTotalBytes == 0 {
		limits = host.DefaultLimits()
	}

	bucket := []byte(ownerID)
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create owner bucket %q: %w", ownerID, err)
	}

	return &Bag{
		db:     db,
		bucket: bucket,
		kind:   opts.Kind,
		limits: limits,
	}, nil
}

// Close releases the database handle if this bag owns it.
func (b *Bag) Close() error {
	if !b.ownsDB {
		return nil
	}
	return b.db.Close()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see host.PropertyBag)
// --------------------------------------------------------------------------

func (b *Bag) Kind() host.OwnerKind {
	return b.kind
}

func (b *Bag) Limits() host.Limits {
	return b.limits
}

func (b *Bag) GetProperty(id string) (string, bool) {
	var (
		val string
		ok  bool
	)
	_ = b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(b.bucket).Get([]byte(id))
		if raw != nil {
			val = string(raw)
			ok = true
		}
		return nil
	})
	return val, ok
}

func (b *Bag) SetProperty(id string, value string) error {
	if b.limits.MaxSlotBytes > 0 && len(value) > b.limits.MaxSlotBytes {
		return host.NewError(host.RetCSlotTooLarge,
			fmt.Sprintf("slot %q value is %d bytes, limit is %d", id, len(value), b.limits.MaxSlotBytes))
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)

		if b.limits.MaxTotalBytes > 0 {
			newTotal := bucketByteCount(bucket) + len(id) + len(value)
			if old := bucket.Get([]byte(id)); old != nil {
				newTotal -= len(id) + len(old)
			}
			if newTotal > b.limits.MaxTotalBytes {
				return host.NewError(host.RetCCapacityExceeded,
					fmt.Sprintf("write of slot %q would grow the bag to %d bytes, limit is %d", id, newTotal, b.limits.MaxTotalBytes))
			}
		}

		return bucket.Put([]byte(id), []byte(value))
	})
	if err == nil {
		return nil
	}
	if bagErr, ok := err.(*host.Error); ok {
		return bagErr
	}
	return host.NewError(host.RetCInternalError, err.Error())
}

func (b *Bag) DeleteProperty(id string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(id))
	})
	if err != nil {
		return host.NewError(host.RetCInternalError, err.Error())
	}
	return nil
}

func (b *Bag) PropertyIDs() []string {
	var ids []string
	_ = b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids
}

func (b *Bag) TotalByteCount() int {
	var total int
	_ = b.db.View(func(tx *bolt.Tx) error {
		total = bucketByteCount(tx.Bucket(b.bucket))
		return nil
	})
	return total
}

func (b *Bag) ClearProperties() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(b.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(b.bucket)
		return err
	})
	if err != nil {
		return host.NewError(host.RetCInternalError, err.Error())
	}
	return nil
}

// bucketByteCount sums slot id and value sizes across a bucket.
func bucketByteCount(bucket *bolt.Bucket) int {
	total := 0
	_ = bucket.ForEach(func(k, v []byte) error {
		total += len(k) + len(v)
		return nil
	})
	return total
}
