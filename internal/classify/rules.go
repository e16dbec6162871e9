// Package classify decides where each group and ledger reports: balance
// sheet or profit and loss, its nature, and whether it affects gross profit.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/cleared-dev/tallymis/internal/model"
)

// categoryWords maps words found in a nature-of-group category to a nature.
var categoryWords = map[string]model.Nature{
	"asset":       model.NatureAsset,
	"assets":      model.NatureAsset,
	"liability":   model.NatureLiability,
	"liabilities": model.NatureLiability,
	"capital":     model.NatureLiability,
	"equity":      model.NatureLiability,
	"income":      model.NatureIncome,
	"incomes":     model.NatureIncome,
	"revenue":     model.NatureIncome,
	"sales":       model.NatureIncome,
	"expense":     model.NatureExpense,
	"expenses":    model.NatureExpense,
	"expenditure": model.NatureExpense,
	"purchase":    model.NatureExpense,
	"purchases":   model.NatureExpense,
}

// nameWords is the last-resort vocabulary applied to a group's display name
// when its category field is empty.
var nameWords = map[string]model.Nature{
	"asset":       model.NatureAsset,
	"assets":      model.NatureAsset,
	"bank":        model.NatureAsset,
	"cash":        model.NatureAsset,
	"debtors":     model.NatureAsset,
	"deposits":    model.NatureAsset,
	"investments": model.NatureAsset,
	"stock":       model.NatureAsset,
	"advances":    model.NatureAsset,
	"liability":   model.NatureLiability,
	"liabilities": model.NatureLiability,
	"capital":     model.NatureLiability,
	"creditors":   model.NatureLiability,
	"loans":       model.NatureLiability,
	"duties":      model.NatureLiability,
	"provisions":  model.NatureLiability,
	"reserves":    model.NatureLiability,
	"income":      model.NatureIncome,
	"incomes":     model.NatureIncome,
	"revenue":     model.NatureIncome,
	"sales":       model.NatureIncome,
	"expense":     model.NatureExpense,
	"expenses":    model.NatureExpense,
	"purchase":    model.NatureExpense,
	"purchases":   model.NatureExpense,
}

var parenthetical = regexp.MustCompile(`\(([^()]*)\)`)

// words folds s and splits it into letter/digit runs.
func words(s string) []string {
	folded := cases.Fold().String(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasWord(ws []string, want ...string) bool {
	for _, w := range ws {
		for _, x := range want {
			if w == x {
				return true
			}
		}
	}
	return false
}

// match returns the single nature the words point at. Words pointing at two
// different natures are ambiguous and yield NatureUnknown.
func match(ws []string, vocab map[string]model.Nature) model.Nature {
	found := model.NatureUnknown
	for _, w := range ws {
		n, ok := vocab[w]
		if !ok {
			continue
		}
		if found != model.NatureUnknown && found != n {
			return model.NatureUnknown
		}
		found = n
	}
	return found
}

// categoryNature reads a nature-of-group category. A parenthetical tag is
// authoritative over the surrounding text: "Misc. Expenses (ASSET)" is Asset.
func categoryNature(text string) model.Nature {
	for _, m := range parenthetical.FindAllStringSubmatch(text, -1) {
		if n := match(words(m[1]), categoryWords); n != model.NatureUnknown {
			return n
		}
	}
	outside := parenthetical.ReplaceAllString(text, " ")
	return match(words(outside), categoryWords)
}

func placementOf(n model.Nature) model.Placement {
	switch n {
	case model.NatureIncome, model.NatureExpense:
		return model.PlacementProfitAndLoss
	case model.NatureAsset, model.NatureLiability:
		return model.PlacementBalanceSheet
	default:
		return model.PlacementUnclassified
	}
}

// grossProfitKeyword applies the keyword fallback for the gross-profit flag.
// "indirect" is checked first and wins over every other word.
func grossProfitKeyword(ws []string, nature model.Nature) (bool, bool) {
	if hasWord(ws, "indirect") {
		return false, true
	}
	switch nature {
	case model.NatureExpense:
		if hasWord(ws, "direct", "purchase", "purchases") {
			return true, true
		}
	case model.NatureIncome:
		if hasWord(ws, "direct", "sales", "sale") {
			return true, true
		}
	}
	return false, false
}

// Classify resolves a group given its ancestors, nearest first. It is a pure
// function of its arguments.
func Classify(g model.Group, ancestors []model.Group) model.ClassifiedGroup {
	var parent *model.ClassifiedGroup
	for i := len(ancestors) - 1; i >= 0; i-- {
		c := resolve(ancestors[i], parent)
		parent = &c
	}
	return resolve(g, parent)
}

func resolve(g model.Group, parent *model.ClassifiedGroup) model.ClassifiedGroup {
	c := model.ClassifiedGroup{Group: g, Placement: model.PlacementUnclassified}
	category := categoryNature(g.NatureOfGroup)
	categoryBlank := strings.TrimSpace(g.NatureOfGroup) == ""

	switch {
	case g.IsRevenue.Present():
		c.Placement = model.PlacementBalanceSheet
		if g.IsRevenue.True() {
			c.Placement = model.PlacementProfitAndLoss
		}
		c.Basis.Placement = model.SourceFlag
	case category != model.NatureUnknown:
		c.Placement = placementOf(category)
		c.Basis.Placement = model.SourceNature
	case parent != nil && parent.Classified():
		c.Placement = parent.Placement
		c.Basis.Placement = model.SourceParent
	}

	switch {
	case category != model.NatureUnknown:
		c.Nature = category
		c.Basis.Nature = model.SourceNature
	case parent != nil && parent.Nature != model.NatureUnknown:
		c.Nature = parent.Nature
		c.Basis.Nature = model.SourceParent
	case categoryBlank:
		if n := match(words(g.Name), nameWords); n != model.NatureUnknown {
			c.Nature = n
			c.Basis.Nature = model.SourceKeyword
		}
	}

	own := append(words(g.Name), words(g.NatureOfGroup)...)

	switch {
	case g.AffectsGrossProfit.Present():
		c.GrossProfit = g.AffectsGrossProfit.True()
		c.Basis.GrossProfit = model.SourceFlag
	default:
		if gp, ok := grossProfitKeyword(own, c.Nature); ok {
			c.GrossProfit = gp
			c.Basis.GrossProfit = model.SourceKeyword
		} else if parent != nil {
			c.GrossProfit = parent.GrossProfit
			c.Basis.GrossProfit = model.SourceParent
		} else {
			c.Basis.GrossProfit = model.SourceDefault
		}
	}

	// A purchase group is a gross-profit expense group on a statement.
	// Indirect or explicitly non-gross-profit groups never count as purchases.
	if c.Classified() && c.Nature == model.NatureExpense && c.GrossProfit {
		c.Purchase = hasWord(own, "purchase", "purchases") || (parent != nil && parent.Purchase)
	}
	return c
}
