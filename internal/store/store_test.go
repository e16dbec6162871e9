package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tallymis/internal/fiscal"
	"github.com/cleared-dev/tallymis/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "tallymis.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot() model.RawSnapshot {
	return model.RawSnapshot{
		Company:   "Acme Traders",
		FetchedAt: time.Date(2024, time.June, 2, 10, 30, 0, 0, time.UTC),
		Groups: []model.Group{
			{Name: "Sales Accounts", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Income", AffectsGrossProfit: model.Yes},
			{Name: "Current Assets", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Assets"},
			{Name: "Bank Accounts", Parent: "Current Assets"},
		},
		Ledgers: []model.RawLedger{
			{Name: "HDFC Bank", Parent: "Bank Accounts", Opening: "30,000.00", DrCr: "Dr"},
			{Name: "Sales", Parent: "Sales Accounts"},
		},
		Vouchers: []model.Voucher{
			{
				ID: "2", Date: fiscal.Date(2024, time.April, 10), Type: "Sales", Narration: "Invoice 101",
				Entries: []model.LedgerEntry{
					{Ledger: "HDFC Bank", Amount: decimal.RequireFromString("30000.50"), Item: "Widgets"},
					{Ledger: "Sales", Amount: decimal.RequireFromString("-30000.50")},
				},
			},
			{ID: "empty", Date: fiscal.Date(2024, time.April, 11), Type: "Memo"},
			{
				ID: "1", Date: fiscal.Date(2024, time.April, 5), Type: "Receipt",
				Entries: []model.LedgerEntry{
					{Ledger: "HDFC Bank", Amount: decimal.RequireFromString("1")},
					{Ledger: "Sales", Amount: decimal.RequireFromString("-1")},
				},
			},
		},
	}
}

func TestEmptyStore(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.LastSync(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	s.now = func() time.Time { return time.Date(2024, time.June, 2, 11, 0, 0, 0, time.UTC) }

	snap := sampleSnapshot()
	status, err := s.Save(ctx, snap)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, status.ID)

	got, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap.Company, got.Company)
	assert.True(t, snap.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, snap.Groups, got.Groups)
	assert.Equal(t, snap.Ledgers, got.Ledgers)
	require.Len(t, got.Vouchers, 3)
	assert.Equal(t, []string{"2", "empty", "1"}, []string{got.Vouchers[0].ID, got.Vouchers[1].ID, got.Vouchers[2].ID}, "saved order kept")
	assert.Empty(t, got.Vouchers[1].Entries)

	v := got.Vouchers[0]
	assert.Equal(t, fiscal.Date(2024, time.April, 10), v.Date)
	assert.Equal(t, "Invoice 101", v.Narration)
	require.Len(t, v.Entries, 2)
	assert.Equal(t, "Widgets", v.Entries[0].Item)
	assert.True(t, decimal.RequireFromString("30000.50").Equal(v.Entries[0].Amount))
	assert.True(t, v.Total().IsZero())

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.ID, last.ID)
	assert.Equal(t, "Acme Traders", last.Company)
	assert.True(t, s.now().Equal(last.SyncedAt))
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, sampleSnapshot())
	require.NoError(t, err)

	second, err := s.Save(ctx, model.RawSnapshot{
		Company: "Other Co",
		Groups:  []model.Group{{Name: "Capital Account", Parent: "Primary"}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Other Co", got.Company)
	assert.Len(t, got.Groups, 1)
	assert.Empty(t, got.Ledgers)
	assert.Empty(t, got.Vouchers, "no history is kept")
}

func TestReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tallymis.db")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Vouchers, 3)
}
