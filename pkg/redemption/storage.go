package redemption

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var recordsBucket = []byte("redemptions")

// Record is the audit log entry of a redemption workflow.
type Record struct {
	DepositAddress   string    `json:"depositAddress"`
	RequesterAddress string    `json:"requesterAddress"`
	Digest           string    `json:"digest"`
	BlockNumber      uint64    `json:"blockNumber"`
	KeepAddress      string    `json:"keepAddress,omitempty"`
	State            State     `json:"state"`
	TransactionID    string    `json:"transactionId,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Storage persists the audit log of redemption workflows.
type Storage interface {
	// Save stores the record, replacing the previous record of the same
	// deposit and digest.
	Save(record *Record) error
	// Load returns the record of the given deposit and digest. The boolean
	// is false when there is no such record.
	Load(depositAddress string, digest [32]byte) (*Record, bool, error)
	// Records returns all stored records.
	Records() ([]*Record, error)
}

// BoltStorage is a Storage kept in a bbolt database file.
type BoltStorage struct {
	db *bbolt.DB
}

// NewBoltStorage opens or creates the database file at the given path.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database [%s]: [%v]", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database [%s]: [%v]", path, err)
	}

	return &BoltStorage{db: db}, nil
}

func (bs *BoltStorage) Save(record *Record) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: [%v]", err)
	}

	key, err := recordKey(record)
	if err != nil {
		return err
	}

	return bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, value)
	})
}

func (bs *BoltStorage) Load(
	depositAddress string,
	digest [32]byte,
) (*Record, bool, error) {
	var value []byte

	err := bs.db.View(func(tx *bbolt.Tx) error {
		stored := tx.Bucket(recordsBucket).Get([]byte(requestID(depositAddress, digest)))
		if stored != nil {
			// stored bytes are valid only for the life of the transaction
			value = append([]byte{}, stored...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if value == nil {
		return nil, false, nil
	}

	record := &Record{}
	if err := json.Unmarshal(value, record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal record: [%v]", err)
	}

	return record, true, nil
}

func (bs *BoltStorage) Records() ([]*Record, error) {
	records := make([]*Record, 0)

	err := bs.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(key, value []byte) error {
			record := &Record{}
			if err := json.Unmarshal(value, record); err != nil {
				return fmt.Errorf(
					"failed to unmarshal record [%s]: [%v]",
					key,
					err,
				)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Close releases the database file.
func (bs *BoltStorage) Close() error {
	return bs.db.Close()
}

func recordKey(record *Record) ([]byte, error) {
	digest, err := hex.DecodeString(record.Digest)
	if err != nil || len(digest) != 32 {
		return nil, fmt.Errorf("invalid record digest [%s]", record.Digest)
	}

	return []byte(requestID(record.DepositAddress, [32]byte(digest))), nil
}
