package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoGroups is returned when a snapshot has no group masters. Nothing can
// be classified, so the computation cannot proceed.
var ErrNoGroups = errors.New("audit: group master set is empty")

// ParseError reports malformed numeric or date input for one field.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parsing %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("parsing %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CycleError reports a loop in the parent chain of a group. Chain starts at
// the group being classified and ends at the first repeated name.
type CycleError struct {
	Group string
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("group %q: parent cycle %s", e.Group, strings.Join(e.Chain, " -> "))
}

// UnclassifiedError reports a group whose placement no rule could resolve.
type UnclassifiedError struct {
	Group string
}

func (e *UnclassifiedError) Error() string {
	return fmt.Sprintf("group %q: no rule resolved balance sheet or profit and loss placement", e.Group)
}

// ImbalancedVoucherError reports a voucher whose entries do not sum to zero.
type ImbalancedVoucherError struct {
	Voucher    string
	Difference decimal.Decimal
}

func (e *ImbalancedVoucherError) Error() string {
	return fmt.Sprintf("voucher %s: entries sum to %s, want 0", e.Voucher, e.Difference.StringFixed(2))
}
