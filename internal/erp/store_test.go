package erp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erpbot/server/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one second per call so creation order is stable.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

var testToday = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	cfg := &database.Config{Driver: database.DriverSQLite, DSN: ":memory:", LogLevel: "silent"}
	db, err := cfg.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, Migrate(ctx, db))

	clock := &tickingClock{now: testToday.Add(9 * time.Hour)}
	return NewStore(db, WithClock(clock.Now), WithCurrency("gtq"))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func seedCustomer(t *testing.T, s *Store, name string) {
	t.Helper()
	_, err := s.CreateCustomer(context.Background(), CustomerInput{
		CustomerName:  name,
		CustomerGroup: "Individual",
		Territory:     "All Territories",
		Address:       &AddressInput{AddressLine1: "Ciudad", City: "Ciudad de Guatemala"},
	})
	require.NoError(t, err)
}

func seedSupplier(t *testing.T, s *Store, name string) {
	t.Helper()
	_, err := s.CreateSupplier(context.Background(), SupplierInput{
		SupplierName:  name,
		SupplierGroup: "Distribuidor",
		SupplierType:  "Company",
	})
	require.NoError(t, err)
}

func seedItem(t *testing.T, s *Store, code string, rate string) {
	t.Helper()
	_, err := s.CreateItem(context.Background(), ItemInput{
		ItemCode:     code,
		ItemName:     code,
		ItemGroup:    "Productos",
		StockUOM:     "Unidad(es)",
		StandardRate: dec(rate),
	})
	require.NoError(t, err)
}

func TestStore_Defaults(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "GTQ", s.Currency())
	assert.Equal(t, testToday, s.Today())
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), EndOfMonth(time.Date(2026, time.February, 3, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), EndOfMonth(time.Date(2028, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), EndOfMonth(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestNewDocName(t *testing.T) {
	a, b := newDocName("SINV"), newDocName("SINV")
	assert.Regexp(t, `^SINV-[0-9A-F]{10}$`, a)
	assert.NotEqual(t, a, b)
}
