package masters

import "github.com/cleared-dev/tallymis/internal/model"

const primary = "Primary"

// DefaultGroups returns the bookkeeping system's predefined group masters,
// used to seed groups.csv for a new data directory.
func DefaultGroups() []model.Group {
	bs := func(name, parent, nature string) model.Group {
		g := model.Group{Name: name, Parent: parent, NatureOfGroup: nature}
		if parent == primary {
			g.IsRevenue = model.No
		}
		return g
	}
	pl := func(name, nature string, gp model.TriState) model.Group {
		return model.Group{Name: name, Parent: primary, IsRevenue: model.Yes, NatureOfGroup: nature, AffectsGrossProfit: gp}
	}

	return []model.Group{
		bs("Branch / Divisions", primary, "Liabilities"),
		bs("Capital Account", primary, "Liabilities"),
		bs("Current Assets", primary, "Assets"),
		bs("Current Liabilities", primary, "Liabilities"),
		bs("Fixed Assets", primary, "Assets"),
		bs("Investments", primary, "Assets"),
		bs("Loans (Liability)", primary, "Liabilities"),
		bs("Misc. Expenses (ASSET)", primary, "Assets"),
		bs("Suspense A/c", primary, "Liabilities"),
		pl("Direct Expenses", "Expenses", model.Yes),
		pl("Direct Incomes", "Income", model.Yes),
		pl("Indirect Expenses", "Expenses", model.No),
		pl("Indirect Incomes", "Income", model.No),
		pl("Purchase Accounts", "Expenses", model.Yes),
		pl("Sales Accounts", "Income", model.Yes),
		bs("Bank Accounts", "Current Assets", ""),
		bs("Bank OD A/c", "Loans (Liability)", ""),
		bs("Cash-in-Hand", "Current Assets", ""),
		bs("Deposits (Asset)", "Current Assets", ""),
		bs("Duties & Taxes", "Current Liabilities", ""),
		bs("Loans & Advances (Asset)", "Current Assets", ""),
		bs("Provisions", "Current Liabilities", ""),
		bs("Reserves & Surplus", "Capital Account", ""),
		bs("Secured Loans", "Loans (Liability)", ""),
		bs("Stock-in-Hand", "Current Assets", ""),
		bs("Sundry Creditors", "Current Liabilities", ""),
		bs("Sundry Debtors", "Current Assets", ""),
		bs("Unsecured Loans", "Loans (Liability)", ""),
	}
}
