package audit

import "fmt"

// Kind categorizes a row-level issue.
type Kind string

const (
	KindParse              Kind = "parse"
	KindCycle              Kind = "cycle"
	KindUnclassified       Kind = "unclassified"
	KindUnclassifiedLedger Kind = "unclassified_ledger"
	KindImbalanced         Kind = "imbalanced_voucher"
	KindUnresolvedSign     Kind = "unresolved_sign"
	KindUnknownParent      Kind = "unknown_parent"
	KindUnknownGroup       Kind = "unknown_group"
	KindUnknownLedger      Kind = "unknown_ledger"
	KindMissingClass       Kind = "missing_classification"
	KindDuplicate          Kind = "duplicate"
)

// Issue is one row-level problem. The affected row is still part of the
// results; issues are reported alongside them.
type Issue struct {
	Kind    Kind
	Subject string // ledger, group or voucher the issue is about
	Err     error
}

func (i Issue) Error() string {
	if i.Err == nil {
		return fmt.Sprintf("%s [%s]", i.Kind, i.Subject)
	}
	return fmt.Sprintf("%s [%s]: %v", i.Kind, i.Subject, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Log collects issues in the order they were found.
type Log struct {
	issues []Issue
}

// Add records an issue.
func (l *Log) Add(kind Kind, subject string, err error) {
	l.issues = append(l.issues, Issue{Kind: kind, Subject: subject, Err: err})
}

// Append records already-built issues.
func (l *Log) Append(issues ...Issue) {
	l.issues = append(l.issues, issues...)
}

// Issues returns a copy of the recorded issues.
func (l *Log) Issues() []Issue {
	if len(l.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(l.issues))
	copy(out, l.issues)
	return out
}

// Len returns the number of recorded issues.
func (l *Log) Len() int { return len(l.issues) }

// Count returns how many issues of the given kind were recorded.
func (l *Log) Count(kind Kind) int {
	n := 0
	for _, i := range l.issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns the number of issues per kind.
func (l *Log) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, i := range l.issues {
		counts[i.Kind]++
	}
	return counts
}
