package classify

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/model"
)

// ErrUnknownGroup is returned for a name that is not in the group master set.
var ErrUnknownGroup = errors.New("classify: unknown group")

type result struct {
	class model.ClassifiedGroup
	err   error
}

// Engine classifies one group master set. It memoizes results, so it must be
// built per reporting session and never shared across snapshots.
type Engine struct {
	mu     sync.Mutex
	groups map[string]model.Group
	order  []string
	memo   map[string]result
	issues []audit.Issue
}

func key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NewEngine indexes groups by name. Duplicate names keep the first
// definition, and parents missing from the set end the ancestor chain; both
// are reported by Issues.
func NewEngine(groups []model.Group) (*Engine, error) {
	if len(groups) == 0 {
		return nil, audit.ErrNoGroups
	}

	e := &Engine{
		groups: make(map[string]model.Group, len(groups)),
		memo:   make(map[string]result, len(groups)),
	}
	for _, g := range groups {
		k := key(g.Name)
		if k == "" {
			e.issues = append(e.issues, audit.Issue{
				Kind: audit.KindParse,
				Err:  &audit.ParseError{Field: "name", Value: g.Name, Err: errors.New("empty group name")},
			})
			continue
		}
		if _, dup := e.groups[k]; dup {
			e.issues = append(e.issues, audit.Issue{
				Kind:    audit.KindDuplicate,
				Subject: g.Name,
				Err:     fmt.Errorf("group %q defined more than once, first definition kept", g.Name),
			})
			continue
		}
		e.groups[k] = g
		e.order = append(e.order, k)
	}
	if len(e.order) == 0 {
		return nil, audit.ErrNoGroups
	}

	for _, k := range e.order {
		g := e.groups[k]
		if g.IsRoot() {
			continue
		}
		if _, ok := e.groups[key(g.Parent)]; !ok {
			e.issues = append(e.issues, audit.Issue{
				Kind:    audit.KindUnknownParent,
				Subject: g.Name,
				Err:     fmt.Errorf("group %q: parent %q not found", g.Name, g.Parent),
			})
		}
	}
	return e, nil
}

// Group classifies the named group. The returned error is a
// *audit.CycleError when the group sits in or under a parent cycle, a
// *audit.UnclassifiedError when no placement rule applied, or
// ErrUnknownGroup. The class is always usable and is Unclassified whenever
// an error is returned.
func (e *Engine) Group(name string) (model.ClassifiedGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classify(name)
}

func (e *Engine) classify(name string) (model.ClassifiedGroup, error) {
	k := key(name)
	if r, ok := e.memo[k]; ok {
		return r.class, r.err
	}
	g, ok := e.groups[k]
	if !ok {
		return unclassified(model.Group{Name: name}), fmt.Errorf("%w %q", ErrUnknownGroup, name)
	}

	var r result
	if err := e.walk(g); err != nil {
		r = result{class: unclassified(g), err: err}
	} else {
		var parent *model.ClassifiedGroup
		if p, ok := e.parentOf(g); ok {
			c, _ := e.classify(p.Name)
			parent = &c
		}
		r.class = resolve(g, parent)
		if !r.class.Classified() {
			r.err = &audit.UnclassifiedError{Group: g.Name}
		}
	}
	e.memo[k] = r
	return r.class, r.err
}

func (e *Engine) parentOf(g model.Group) (model.Group, bool) {
	if g.IsRoot() {
		return model.Group{}, false
	}
	p, ok := e.groups[key(g.Parent)]
	return p, ok
}

// walk follows the parent chain from g and fails if a name repeats.
func (e *Engine) walk(g model.Group) error {
	seen := map[string]bool{key(g.Name): true}
	chain := []string{g.Name}
	for cur := g; ; {
		p, ok := e.parentOf(cur)
		if !ok {
			return nil
		}
		chain = append(chain, p.Name)
		if seen[key(p.Name)] {
			return &audit.CycleError{Group: g.Name, Chain: chain}
		}
		seen[key(p.Name)] = true
		cur = p
	}
}

// Ancestors returns the parent chain of the named group, nearest first. It
// returns nil for a root group, an unknown group or a group under a cycle.
func (e *Engine) Ancestors(name string) []model.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[key(name)]
	if !ok || e.walk(g) != nil {
		return nil
	}
	var out []model.Group
	for p, ok := e.parentOf(g); ok; p, ok = e.parentOf(p) {
		out = append(out, p)
	}
	return out
}

// All classifies every group in master order.
func (e *Engine) All() []model.ClassifiedGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.ClassifiedGroup, 0, len(e.order))
	for _, k := range e.order {
		c, _ := e.classify(e.groups[k].Name)
		out = append(out, c)
	}
	return out
}

// Ledger classifies a ledger by its parent group. A ledger whose group is
// not in the master set is returned Unclassified with ErrUnknownGroup.
func (e *Engine) Ledger(l model.Ledger) (model.ClassifiedLedger, error) {
	c, err := e.Group(l.Group)
	if err != nil {
		err = fmt.Errorf("ledger %q: %w", l.Name, err)
	}
	return model.ClassifiedLedger{Ledger: l, Class: c}, err
}

// Issues returns construction problems followed by one issue per group that
// could not be classified, in master order.
func (e *Engine) Issues() []audit.Issue {
	out := make([]audit.Issue, 0, len(e.issues))
	out = append(out, e.issues...)
	for _, c := range e.All() {
		if _, err := e.Group(c.Name()); err != nil {
			out = append(out, audit.Issue{Kind: KindOf(err), Subject: c.Name(), Err: err})
		}
	}
	return out
}

// KindOf maps a classification error to its issue kind.
func KindOf(err error) audit.Kind {
	var cycle *audit.CycleError
	var unclassified *audit.UnclassifiedError
	switch {
	case errors.As(err, &cycle):
		return audit.KindCycle
	case errors.Is(err, ErrUnknownGroup):
		return audit.KindUnknownGroup
	case errors.As(err, &unclassified):
		return audit.KindUnclassified
	default:
		return audit.KindParse
	}
}

func unclassified(g model.Group) model.ClassifiedGroup {
	return model.ClassifiedGroup{Group: g, Placement: model.PlacementUnclassified}
}
