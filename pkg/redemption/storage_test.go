package redemption

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

func TestBoltStorage_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redemptions.db")

	storage, err := NewBoltStorage(path)
	assert.NilError(t, err)

	digest := toBytes32(t, fixture.Digest)
	record := &Record{
		DepositAddress:   fixture.DepositAddress,
		RequesterAddress: fixture.RequesterAddress,
		Digest:           fixture.Digest,
		BlockNumber:      100,
		KeepAddress:      fixture.KeepAddress,
		State:            Done,
		TransactionID:    fixture.TransactionID,
		UpdatedAt:        time.Date(2020, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	assert.NilError(t, storage.Save(record))
	assert.NilError(t, storage.Close())

	// records survive reopening the database
	storage, err = NewBoltStorage(path)
	assert.NilError(t, err)
	defer storage.Close()

	loaded, ok, err := storage.Load(fixture.DepositAddress, digest)
	assert.NilError(t, err)
	assert.Assert(t, ok)

	if diff := cmp.Diff(record, loaded); diff != "" {
		t.Errorf("unexpected record (-expected +actual):\n%s", diff)
	}

	records, err := storage.Records()
	assert.NilError(t, err)
	assert.Equal(t, len(records), 1)
}

func TestBoltStorage_SaveReplaces(t *testing.T) {
	storage, err := NewBoltStorage(filepath.Join(t.TempDir(), "redemptions.db"))
	assert.NilError(t, err)
	defer storage.Close()

	record := &Record{
		DepositAddress: fixture.DepositAddress,
		Digest:         fixture.Digest,
		State:          AwaitingSignature,
	}
	assert.NilError(t, storage.Save(record))

	record.State = Abandoned
	record.Reason = "keep closed"
	assert.NilError(t, storage.Save(record))

	loaded, ok, err := storage.Load(fixture.DepositAddress, toBytes32(t, fixture.Digest))
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, loaded.State, Abandoned)
	assert.Equal(t, loaded.Reason, "keep closed")

	records, err := storage.Records()
	assert.NilError(t, err)
	assert.Equal(t, len(records), 1)
}

func TestBoltStorage_LoadMissing(t *testing.T) {
	storage, err := NewBoltStorage(filepath.Join(t.TempDir(), "redemptions.db"))
	assert.NilError(t, err)
	defer storage.Close()

	loaded, ok, err := storage.Load(fixture.DepositAddress, [32]byte{})
	assert.NilError(t, err)
	assert.Assert(t, !ok)
	assert.Assert(t, loaded == nil)
}

func TestBoltStorage_InvalidDigest(t *testing.T) {
	storage, err := NewBoltStorage(filepath.Join(t.TempDir(), "redemptions.db"))
	assert.NilError(t, err)
	defer storage.Close()

	err = storage.Save(&Record{DepositAddress: fixture.DepositAddress, Digest: "abcd"})
	assert.ErrorContains(t, err, "invalid record digest")
}
