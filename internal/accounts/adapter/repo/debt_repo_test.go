package repo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
	"github.com/carojasb94/collection-agency/internal/platform/database/dbtest"
)

type fixture struct {
	db     *gorm.DB
	debts  *GormDebtRepo
	agency map[string]*domain.CollectionAgency
	debt   map[string]*domain.Debt
}

// seed builds:
//
//	agency A: client ref-a -> d1 100.00 IN_COLLECTION (John Doe)
//	                         d2 250.50 PAID_IN_FULL  (Jane Smith, Johnny Walker)
//	agency B: client ref-b -> d3 500.00 IN_COLLECTION (Jane Smith)
//	                         d4  75.25 DISPUTED      (Acme 100%_Corp)
func seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New(t)

	f := &fixture{
		db:     db,
		debts:  NewDebtRepo(db),
		agency: map[string]*domain.CollectionAgency{},
		debt:   map[string]*domain.Debt{},
	}
	agencies := NewAgencyRepo(db)
	clients := NewClientRepo(db)
	consumers := NewConsumerRepo(db)

	for _, name := range []string{"A", "B"} {
		a := &domain.CollectionAgency{Name: "Agency " + name}
		require.NoError(t, agencies.Create(ctx, a))
		f.agency[name] = a
	}

	clientFor := map[string]*domain.Client{}
	for name, ref := range map[string]string{"A": "ref-a", "B": "ref-b"} {
		c := &domain.Client{Name: "Client " + ref, AgencyID: f.agency[name].ID, ReferenceNo: ref}
		_, err := clients.GetOrCreate(ctx, db, c)
		require.NoError(t, err)
		clientFor[name] = c
	}

	people := map[string]*domain.Consumer{}
	for _, p := range []struct{ ssn, name string }{
		{"111-11-1111", "John Doe"},
		{"222-22-2222", "Jane Smith"},
		{"333-33-3333", "Johnny Walker"},
		{"444-44-4444", "Acme 100%_Corp"},
	} {
		c := &domain.Consumer{Name: p.name, SSN: p.ssn}
		_, err := consumers.GetOrCreate(ctx, db, c)
		require.NoError(t, err)
		people[p.name] = c
	}

	add := func(key, agency, balance, status string, names ...string) {
		client := clientFor[agency]
		d := &domain.Debt{
			Balance:           decimal.RequireFromString(balance),
			Status:            status,
			ClientID:          client.ID,
			ClientReferenceNo: client.ReferenceNo,
		}
		for _, n := range names {
			d.Consumers = append(d.Consumers, *people[n])
		}
		require.NoError(t, f.debts.Create(ctx, db, d))
		f.debt[key] = d
	}
	add("d1", "A", "100.00", "IN_COLLECTION", "John Doe")
	add("d2", "A", "250.50", "PAID_IN_FULL", "Jane Smith", "Johnny Walker")
	add("d3", "B", "500.00", "IN_COLLECTION", "Jane Smith")
	add("d4", "B", "75.25", "DISPUTED", "Acme 100%_Corp")

	return f
}

func (f *fixture) ids(keys ...string) []int64 {
	out := make([]int64, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.debt[k].ID)
	}
	return out
}

func debtIDs(debts []domain.Debt) []int64 {
	out := make([]int64, 0, len(debts))
	for _, d := range debts {
		out = append(out, d.ID)
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDebtListFilters(t *testing.T) {
	f := seed(t)
	agencyA := f.agency["A"].ID
	agencyB := f.agency["B"].ID
	missing := int64(999999)

	tests := []struct {
		name   string
		filter domain.DebtFilter
		want   []string
	}{
		{"no filters", domain.DebtFilter{}, []string{"d1", "d2", "d3", "d4"}},
		{"agency A", domain.DebtFilter{AgencyID: &agencyA}, []string{"d1", "d2"}},
		{"agency B", domain.DebtFilter{AgencyID: &agencyB}, []string{"d3", "d4"}},
		{"unknown agency", domain.DebtFilter{AgencyID: &missing}, nil},
		{"min balance inclusive", domain.DebtFilter{MinBalance: dec("250.50")}, []string{"d2", "d3"}},
		{"max balance inclusive", domain.DebtFilter{MaxBalance: dec("100")}, []string{"d1", "d4"}},
		{"balance range", domain.DebtFilter{MinBalance: dec("100"), MaxBalance: dec("250.50")}, []string{"d1", "d2"}},
		{"status exact", domain.DebtFilter{Status: "IN_COLLECTION"}, []string{"d1", "d3"}},
		{"status is case sensitive", domain.DebtFilter{Status: "in_collection"}, nil},
		{"consumer name contains, any case", domain.DebtFilter{ConsumerName: "JOHN"}, []string{"d1", "d2"}},
		{"consumer shared by two debts", domain.DebtFilter{ConsumerName: "jane"}, []string{"d2", "d3"}},
		{"like wildcards are literal", domain.DebtFilter{ConsumerName: "100%_"}, []string{"d4"}},
		{"percent alone matches literally", domain.DebtFilter{ConsumerName: "%"}, []string{"d4"}},
		{"combined filters AND", domain.DebtFilter{AgencyID: &agencyB, Status: "IN_COLLECTION", ConsumerName: "smith"}, []string{"d3"}},
		{"combined filters exclude all", domain.DebtFilter{AgencyID: &agencyA, MinBalance: dec("300")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debts, total, err := f.debts.List(context.Background(), tt.filter, domain.Page{})
			require.NoError(t, err)

			want := f.ids(tt.want...)
			assert.Equal(t, want, debtIDs(debts))
			assert.Equal(t, int64(len(want)), total)
		})
	}
}

func TestDebtListDistinctWhenSeveralConsumersMatch(t *testing.T) {
	f := seed(t)

	// d2 has "Jane Smith" and "Johnny Walker"; both contain "j".
	debts, total, err := f.debts.List(context.Background(), domain.DebtFilter{ConsumerName: "j"}, domain.Page{})
	require.NoError(t, err)

	assert.Equal(t, f.ids("d1", "d2", "d3"), debtIDs(debts))
	assert.Equal(t, int64(3), total)
}

func TestDebtListPreloadsRelations(t *testing.T) {
	f := seed(t)

	debts, _, err := f.debts.List(context.Background(), domain.DebtFilter{Status: "PAID_IN_FULL"}, domain.Page{})
	require.NoError(t, err)
	require.Len(t, debts, 1)

	d := debts[0]
	assert.Equal(t, "ref-a", d.Client.ReferenceNo)
	assert.Equal(t, d.Client.ReferenceNo, d.ClientReferenceNo)
	assert.Equal(t, "Agency A", d.Client.Agency.Name)
	require.Len(t, d.Consumers, 2)
	assert.Equal(t, "Jane Smith", d.Consumers[0].Name)
	assert.Equal(t, "Johnny Walker", d.Consumers[1].Name)
	assert.Equal(t, "250.50", d.Balance.StringFixed(2))
	assert.False(t, d.CreatedAt.IsZero())
}

func TestDebtListPagination(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	debts, total, err := f.debts.List(ctx, domain.DebtFilter{}, domain.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, f.ids("d2", "d3"), debtIDs(debts))

	debts, total, err = f.debts.List(ctx, domain.DebtFilter{}, domain.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, debts)
}

func TestDebtCreateRejectsNonPositiveBalance(t *testing.T) {
	f := seed(t)

	for _, balance := range []string{"0", "-1", "0.00"} {
		d := &domain.Debt{
			Balance:           decimal.RequireFromString(balance),
			Status:            "IN_COLLECTION",
			ClientID:          f.debt["d1"].ClientID,
			ClientReferenceNo: "ref-a",
		}
		err := f.debts.Create(context.Background(), f.db, d)
		assert.ErrorIs(t, err, domain.ErrNonPositiveBalance, balance)
	}

	var count int64
	require.NoError(t, f.db.Model(&domain.Debt{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestDebtListConsumerNameNonASCII(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	jose := &domain.Consumer{Name: "José Álvarez", SSN: "555-55-5555"}
	_, err := NewConsumerRepo(f.db).GetOrCreate(ctx, f.db, jose)
	require.NoError(t, err)

	d := &domain.Debt{
		Balance:           decimal.RequireFromString("42.00"),
		Status:            "IN_COLLECTION",
		ClientID:          f.debt["d1"].ClientID,
		ClientReferenceNo: "ref-a",
		Consumers:         []domain.Consumer{*jose},
	}
	require.NoError(t, f.debts.Create(ctx, f.db, d))

	// The search term is folded before it reaches the database.
	for _, name := range []string{"josé", "JOSÉ", "OSÉ"} {
		debts, total, err := f.debts.List(ctx, domain.DebtFilter{ConsumerName: name}, domain.Page{})
		require.NoError(t, err)
		assert.Equal(t, []int64{d.ID}, debtIDs(debts), name)
		assert.Equal(t, int64(1), total, name)
	}
}
