package otpstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ngo-verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "otp_storage.json"))
}

func rec(code string, ttl time.Duration) domain.OTPRecord {
	now := time.Now()
	return domain.OTPRecord{
		Code:      code,
		ExpiresAt: now.Add(ttl).Unix(),
		RequestID: "01TESTREQUESTID",
		CreatedAt: now.Unix(),
	}
}

func TestLoad_MissingFile_ReturnsEmpty(t *testing.T) {
	s := newStore(t)
	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_CorruptFile_ReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otp_storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	records, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPutGetDelete_Roundtrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ops@helpinghands.org", rec("123456", time.Minute)))

	got, err := s.Get(ctx, "ops@helpinghands.org")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, "ops@helpinghands.org", got.Email)

	require.NoError(t, s.Delete(ctx, "ops@helpinghands.org"))
	got, err = s.Get(ctx, "ops@helpinghands.org")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPut_OverwritesPriorRecord(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@b.org", rec("111111", time.Minute)))
	require.NoError(t, s.Put(ctx, "a@b.org", rec("222222", time.Minute)))

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "222222", records["a@b.org"].Code)
}

func TestCleanExpired_DropsOnlyExpired(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "live@b.org", rec("111111", 10*time.Minute)))
	require.NoError(t, s.Put(ctx, "stale@b.org", rec("222222", -time.Minute)))

	clean, err := s.CleanExpired(ctx)
	require.NoError(t, err)
	require.Len(t, clean, 1)
	assert.Contains(t, clean, "live@b.org")

	// the filtered mapping was persisted
	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, records, "stale@b.org")
}

func TestSave_ReplacesContents(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@b.org", rec("111111", time.Minute)))
	require.NoError(t, s.Save(ctx, map[string]domain.OTPRecord{
		"c@d.org": rec("333333", time.Minute),
	}))

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records, "c@d.org")
}

func TestSave_UnwritablePath_BestEffort(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing-dir", "otp.json"))
	err := s.Save(context.Background(), map[string]domain.OTPRecord{
		"a@b.org": rec("111111", time.Minute),
	})
	assert.NoError(t, err)
}

// Documents the known hazard of the unlocked compatibility mode: Save replaces
// the whole mapping, so two actors interleaving load-modify-save lose one
// another's writes even for different contacts. The locked default serializes
// the sequence inside each method; the race across separate Load+Save calls is
// inherent to the whole-mapping file format.
func TestUnsafeMode_LostUpdateHazard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otp_storage.json")
	a := NewUnsafeFileStore(path)
	b := NewUnsafeFileStore(path)
	ctx := context.Background()

	// actor A reads the (empty) mapping
	snapshot, err := a.Load(ctx)
	require.NoError(t, err)

	// actor B writes a record for its contact
	require.NoError(t, b.Put(ctx, "b@org.org", rec("222222", time.Minute)))

	// actor A saves its stale snapshot — B's write is gone
	snapshot["a@org.org"] = rec("111111", time.Minute)
	require.NoError(t, a.Save(ctx, snapshot))

	records, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, records, "a@org.org")
	assert.NotContains(t, records, "b@org.org")
}
