package session

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// recordSize is the fixed width of an encoded session value:
// user_id (8) | expires unix-ms (8) | created unix-ms (8).
// The session id is the key, so it is not repeated in the value.
const recordSize = 24

// BoltStore is the persistent backend: an embedded bbolt database with one
// bucket keyed by session id. bbolt gives unbounded concurrent read
// transactions and a single write transaction at a time, so running the id
// probe and the insert inside the same db.Update provides the same atomicity
// the memory backend gets from its lock.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens (creating if needed) the session database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}
	return &BoltStore{db: db}, nil
}

// CreateSession generates an id and inserts the record inside one write
// transaction.
func (b *BoltStore) CreateSession(_ context.Context, userID int64, lifetime time.Duration) (*Session, error) {
	var s Session
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sessionsBucket)
		id := newID(func(id string) bool {
			return bkt.Get([]byte(id)) != nil
		})
		s = newSession(userID, id, lifetime)
		return bkt.Put([]byte(id), encodeRecord(s))
	})
	if err != nil {
		return nil, &StorageError{Op: "create", Err: err}
	}
	return &s, nil
}

// GetSession returns the session or (nil, nil). Expired sessions are
// returned unfiltered.
func (b *BoltStore) GetSession(_ context.Context, sessionID string) (*Session, error) {
	var s *Session
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if data == nil {
			return nil
		}
		rec, err := decodeRecord(sessionID, data)
		if err != nil {
			return err
		}
		s = &rec
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	return s, nil
}

// DeleteSession removes and returns the session inside one write
// transaction, or (nil, nil) when absent.
func (b *BoltStore) DeleteSession(_ context.Context, sessionID string) (*Session, error) {
	var s *Session
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sessionsBucket)
		key := []byte(sessionID)
		data := bkt.Get(key)
		if data == nil {
			return nil
		}
		rec, err := decodeRecord(sessionID, data)
		if err != nil {
			return err
		}
		s = &rec
		return bkt.Delete(key)
	})
	if err != nil {
		return nil, &StorageError{Op: "delete", Err: err}
	}
	return s, nil
}

// PurgeExpired removes every session past its expiry in one write
// transaction.
func (b *BoltStore) PurgeExpired(_ context.Context) (int, error) {
	now := time.Now().UnixMilli()
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(sessionsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) != recordSize {
				continue
			}
			expires := int64(binary.BigEndian.Uint64(v[8:16]))
			if expires < now {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, &StorageError{Op: "purge", Err: err}
	}
	return removed, nil
}

// Close closes the underlying database file.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func encodeRecord(s Session) []byte {
	buf := make([]byte, recordSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(s.UserID))
	binary.BigEndian.PutUint64(buf[8:16], uint64(s.Expires.UnixMilli()))
	binary.BigEndian.PutUint64(buf[16:24], uint64(s.Created.UnixMilli()))
	return buf
}

func decodeRecord(sessionID string, data []byte) (Session, error) {
	if len(data) != recordSize {
		return Session{}, fmt.Errorf("corrupt session record: %d bytes", len(data))
	}
	return Session{
		UserID:    int64(binary.BigEndian.Uint64(data[0:8])),
		SessionID: sessionID,
		Expires:   time.UnixMilli(int64(binary.BigEndian.Uint64(data[8:16]))).UTC(),
		Created:   time.UnixMilli(int64(binary.BigEndian.Uint64(data[16:24]))).UTC(),
	}, nil
}
