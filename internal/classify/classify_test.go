package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

func primaryGroups() []model.Group {
	return []model.Group{
		{Name: "Current Assets", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Assets"},
		{Name: "Bank Accounts", Parent: "Current Assets"},
		{Name: "Sundry Debtors", Parent: "Current Assets"},
		{Name: "Capital Account", Parent: "Primary", IsRevenue: model.No, NatureOfGroup: "Liabilities"},
		{Name: "Sales Accounts", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Income", AffectsGrossProfit: model.Yes},
		{Name: "Purchase Accounts", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.Yes},
		{Name: "Direct Expenses", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.Yes},
		{Name: "Indirect Expenses", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.No},
		{Name: "Indirect Incomes", Parent: "Primary", IsRevenue: model.Yes, NatureOfGroup: "Income", AffectsGrossProfit: model.No},
		{Name: "Import Purchases", Parent: "Purchase Accounts"},
	}
}

func newEngine(t *testing.T, groups []model.Group) *Engine {
	t.Helper()
	e, err := NewEngine(groups)
	require.NoError(t, err)
	return e
}

func TestClassify_FlagsWin(t *testing.T) {
	c := Classify(model.Group{
		Name:               "Odd",
		IsRevenue:          model.No,
		NatureOfGroup:      "Expenses",
		AffectsGrossProfit: model.Yes,
	}, nil)

	assert.Equal(t, model.PlacementBalanceSheet, c.Placement)
	assert.Equal(t, model.SourceFlag, c.Basis.Placement)
	assert.Equal(t, model.NatureExpense, c.Nature)
	assert.True(t, c.GrossProfit)
	assert.Equal(t, model.SourceFlag, c.Basis.GrossProfit)
}

func TestClassify_ParentheticalTagIsAuthoritative(t *testing.T) {
	c := Classify(model.Group{Name: "Misc. Expenses", NatureOfGroup: "Misc. Expenses (ASSET)"}, nil)

	assert.Equal(t, model.NatureAsset, c.Nature)
	assert.Equal(t, model.PlacementBalanceSheet, c.Placement)
	assert.Equal(t, model.SourceNature, c.Basis.Placement)
	assert.False(t, c.GrossProfit)
}

func TestClassify_CategoryWords(t *testing.T) {
	tests := []struct {
		category string
		want     model.Nature
	}{
		{"Assets", model.NatureAsset},
		{"Liabilities", model.NatureLiability},
		{"Capital", model.NatureLiability},
		{"Income", model.NatureIncome},
		{"Revenue", model.NatureIncome},
		{"EXPENSES", model.NatureExpense},
		{"Assets and Liabilities", model.NatureUnknown},
		{"Something else", model.NatureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, categoryNature(tt.category))
		})
	}
}

func TestClassify_InheritsFromParent(t *testing.T) {
	parent := model.Group{Name: "Current Assets", IsRevenue: model.No, NatureOfGroup: "Assets"}
	c := Classify(model.Group{Name: "Cash-in-Hand", Parent: "Current Assets"}, []model.Group{parent})

	assert.Equal(t, model.PlacementBalanceSheet, c.Placement)
	assert.Equal(t, model.SourceParent, c.Basis.Placement)
	assert.Equal(t, model.NatureAsset, c.Nature)
	assert.Equal(t, model.SourceParent, c.Basis.Nature)
}

func TestClassify_NameKeywordsOnlyWhenCategoryBlank(t *testing.T) {
	c := Classify(model.Group{Name: "Bank OD"}, nil)
	assert.Equal(t, model.NatureAsset, c.Nature)
	assert.Equal(t, model.SourceKeyword, c.Basis.Nature)
	assert.Equal(t, model.PlacementUnclassified, c.Placement, "name keywords never decide placement")

	c = Classify(model.Group{Name: "Bank OD", NatureOfGroup: "Mixed"}, nil)
	assert.Equal(t, model.NatureUnknown, c.Nature)
	assert.Equal(t, model.SourceNone, c.Basis.Nature)
}

func TestClassify_GrossProfitKeywords(t *testing.T) {
	tests := []struct {
		name     string
		group    model.Group
		wantGP   bool
		wantFrom model.Source
	}{
		{
			name:     "indirect beats purchase",
			group:    model.Group{Name: "Indirect Purchase", NatureOfGroup: "Expenses"},
			wantGP:   false,
			wantFrom: model.SourceKeyword,
		},
		{
			name:     "direct expense",
			group:    model.Group{Name: "Direct Expenses", NatureOfGroup: "Expenses"},
			wantGP:   true,
			wantFrom: model.SourceKeyword,
		},
		{
			name:     "purchase expense",
			group:    model.Group{Name: "Purchase Accounts", NatureOfGroup: "Expenses"},
			wantGP:   true,
			wantFrom: model.SourceKeyword,
		},
		{
			name:     "sales income",
			group:    model.Group{Name: "Sales Accounts", NatureOfGroup: "Income"},
			wantGP:   true,
			wantFrom: model.SourceKeyword,
		},
		{
			name:     "purchase word on income is ignored",
			group:    model.Group{Name: "Purchase Returns", NatureOfGroup: "Income"},
			wantGP:   false,
			wantFrom: model.SourceDefault,
		},
		{
			name:     "explicit flag beats keyword",
			group:    model.Group{Name: "Direct Expenses", NatureOfGroup: "Expenses", AffectsGrossProfit: model.No},
			wantGP:   false,
			wantFrom: model.SourceFlag,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.group, nil)
			assert.Equal(t, tt.wantGP, c.GrossProfit)
			assert.Equal(t, tt.wantFrom, c.Basis.GrossProfit)
		})
	}
}

func TestClassify_PurchaseInheritance(t *testing.T) {
	e := newEngine(t, primaryGroups())

	c, err := e.Group("Import Purchases")
	require.NoError(t, err)
	assert.True(t, c.Purchase)
	assert.True(t, c.GrossProfit)
	assert.Equal(t, model.NatureExpense, c.Nature)

	c, err = e.Group("Direct Expenses")
	require.NoError(t, err)
	assert.False(t, c.Purchase)
}

func TestClassify_PurchaseFollowsGrossProfit(t *testing.T) {
	tests := []struct {
		name         string
		group        model.Group
		ancestors    []model.Group
		wantGP       bool
		wantPurchase bool
	}{
		{
			name:         "indirect purchase expenses",
			group:        model.Group{Name: "Indirect Purchase Expenses", IsRevenue: model.Yes, NatureOfGroup: "Expenses"},
			wantGP:       false,
			wantPurchase: false,
		},
		{
			name:         "purchase group flagged off gross profit",
			group:        model.Group{Name: "Purchase Accounts", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.No},
			wantGP:       false,
			wantPurchase: false,
		},
		{
			name:      "child of purchases under indirect tag",
			group:     model.Group{Name: "Indirect Import Costs", Parent: "Purchase Accounts"},
			ancestors: []model.Group{{Name: "Purchase Accounts", IsRevenue: model.Yes, NatureOfGroup: "Expenses", AffectsGrossProfit: model.Yes}},
			wantGP:    false,
		},
		{
			name:         "plain purchase group",
			group:        model.Group{Name: "Purchase Accounts", IsRevenue: model.Yes, NatureOfGroup: "Expenses"},
			wantGP:       true,
			wantPurchase: true,
		},
		{
			name:  "unclassified purchase name",
			group: model.Group{Name: "Purchase Accounts"},
			// keyword nature and gross-profit hint survive, placement does not
			wantGP: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.group, tt.ancestors)
			assert.Equal(t, tt.wantGP, c.GrossProfit)
			assert.Equal(t, tt.wantPurchase, c.Purchase)
			if c.Purchase {
				assert.True(t, c.GrossProfit)
				assert.True(t, c.Classified())
			}
		})
	}
}

func TestClassify_UnclassifiedNeverPurchase(t *testing.T) {
	c := Classify(model.Group{Name: "Purchase Accounts"}, nil)
	assert.Equal(t, model.PlacementUnclassified, c.Placement)
	assert.Equal(t, model.NatureExpense, c.Nature)
	assert.Equal(t, model.SourceKeyword, c.Basis.Nature)
	assert.False(t, c.Purchase)
}

func TestClassify_Pure(t *testing.T) {
	g := model.Group{Name: "Freight Inward", Parent: "Direct Expenses"}
	anc := []model.Group{{Name: "Direct Expenses", IsRevenue: model.Yes, NatureOfGroup: "Expenses"}}

	first := Classify(g, anc)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Classify(g, anc))
	}
}

func TestEngine_MatchesPureClassify(t *testing.T) {
	groups := primaryGroups()
	e := newEngine(t, groups)

	for _, g := range groups {
		got, err := e.Group(g.Name)
		require.NoError(t, err, g.Name)
		assert.Equal(t, Classify(g, e.Ancestors(g.Name)), got, g.Name)
	}
}

func TestEngine_OrderIndependent(t *testing.T) {
	groups := primaryGroups()
	reversed := make([]model.Group, len(groups))
	for i, g := range groups {
		reversed[len(groups)-1-i] = g
	}

	a := newEngine(t, groups)
	b := newEngine(t, reversed)
	for _, g := range groups {
		ca, _ := a.Group(g.Name)
		cb, _ := b.Group(g.Name)
		assert.Equal(t, ca, cb, g.Name)
	}
}

func TestEngine_CaseInsensitiveLookup(t *testing.T) {
	e := newEngine(t, primaryGroups())

	c, err := e.Group("  sundry debtors ")
	require.NoError(t, err)
	assert.Equal(t, "Sundry Debtors", c.Name())
	assert.Equal(t, model.PlacementBalanceSheet, c.Placement)
}

func TestEngine_Cycle(t *testing.T) {
	e := newEngine(t, []model.Group{
		{Name: "A", Parent: "B", NatureOfGroup: "Assets"},
		{Name: "B", Parent: "A"},
		{Name: "Child", Parent: "A"},
		{Name: "Fine", Parent: "Primary", NatureOfGroup: "Assets"},
	})

	for _, name := range []string{"A", "B", "Child"} {
		c, err := e.Group(name)
		var cycle *audit.CycleError
		require.ErrorAs(t, err, &cycle, name)
		assert.Equal(t, name, cycle.Group)
		assert.Equal(t, model.PlacementUnclassified, c.Placement)
	}

	_, err := e.Group("Child")
	var cycle *audit.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"Child", "A", "B", "A"}, cycle.Chain)

	c, err := e.Group("Fine")
	require.NoError(t, err)
	assert.Equal(t, model.PlacementBalanceSheet, c.Placement)

	issues := e.Issues()
	require.Len(t, issues, 3)
	for _, i := range issues {
		assert.Equal(t, audit.KindCycle, i.Kind)
	}
}

func TestEngine_SelfParent(t *testing.T) {
	e := newEngine(t, []model.Group{{Name: "Loop", Parent: "Loop"}})

	_, err := e.Group("Loop")
	var cycle *audit.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"Loop", "Loop"}, cycle.Chain)
}

func TestEngine_UnknownParent(t *testing.T) {
	e := newEngine(t, []model.Group{
		{Name: "Orphan", Parent: "Nowhere", NatureOfGroup: "Income"},
		{Name: "Lost", Parent: "Nowhere"},
	})

	c, err := e.Group("Orphan")
	require.NoError(t, err)
	assert.Equal(t, model.PlacementProfitAndLoss, c.Placement)

	_, err = e.Group("Lost")
	var unclassified *audit.UnclassifiedError
	require.ErrorAs(t, err, &unclassified)

	issues := e.Issues()
	kinds := make([]audit.Kind, 0, len(issues))
	for _, i := range issues {
		kinds = append(kinds, i.Kind)
	}
	assert.Equal(t, []audit.Kind{audit.KindUnknownParent, audit.KindUnknownParent, audit.KindUnclassified}, kinds)
}

func TestEngine_Duplicates(t *testing.T) {
	e := newEngine(t, []model.Group{
		{Name: "Dup", NatureOfGroup: "Assets"},
		{Name: "dup", NatureOfGroup: "Income"},
	})

	c, err := e.Group("Dup")
	require.NoError(t, err)
	assert.Equal(t, model.NatureAsset, c.Nature)

	issues := e.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, audit.KindDuplicate, issues[0].Kind)
	assert.Len(t, e.All(), 1)
}

func TestEngine_NoGroups(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, audit.ErrNoGroups)

	_, err = NewEngine([]model.Group{{Name: "  "}})
	assert.ErrorIs(t, err, audit.ErrNoGroups)
}

func TestEngine_Ledger(t *testing.T) {
	e := newEngine(t, primaryGroups())

	cl, err := e.Ledger(model.Ledger{Name: "HDFC Bank", Group: "Bank Accounts"})
	require.NoError(t, err)
	assert.Equal(t, model.PlacementBalanceSheet, cl.Class.Placement)
	assert.Equal(t, model.NatureAsset, cl.Class.Nature)

	cl, err = e.Ledger(model.Ledger{Name: "Stray", Group: "Missing Group"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownGroup))
	assert.Equal(t, audit.KindUnknownGroup, KindOf(err))
	assert.Equal(t, model.PlacementUnclassified, cl.Class.Placement)
	assert.Equal(t, "Stray", cl.Ledger.Name)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, audit.KindCycle, KindOf(&audit.CycleError{Group: "A"}))
	assert.Equal(t, audit.KindUnclassified, KindOf(&audit.UnclassifiedError{Group: "A"}))
	assert.Equal(t, audit.KindUnknownGroup, KindOf(ErrUnknownGroup))
	assert.Equal(t, audit.KindParse, KindOf(errors.New("x")))
}
