// Package status holds the status vocabularies of every lifecycle entity,
// their presentation tiers and the allowed transitions between them.
package status

import (
	"fmt"
	"sort"
)

// Tier is the badge variant a status renders with.
type Tier string

const (
	TierDefault     Tier = "default"
	TierSecondary   Tier = "secondary"
	TierDestructive Tier = "destructive"
	TierOutline     Tier = "outline"
)

// Kind names one vocabulary.
type Kind string

const (
	PurchaseOrder Kind = "purchase_order"
	Invoice       Kind = "invoice"
	Supplier      Kind = "supplier"
	Project       Kind = "project"
	QualityResult Kind = "quality_check"
	ErpLog        Kind = "erp_log"
)

type vocabulary struct {
	tiers       map[string]Tier
	transitions map[string][]string
	initial     []string
}

var vocabularies = map[Kind]vocabulary{
	PurchaseOrder: {
		tiers: map[string]Tier{
			"draft":            TierSecondary,
			"submitted":        TierOutline,
			"approved":         TierDefault,
			"rejected":         TierDestructive,
			"sent_to_supplier": TierDefault,
			"confirmed":        TierDefault,
			"in_transit":       TierDefault,
			"delivered":        TierDefault,
			"cancelled":        TierDestructive,
		},
		transitions: map[string][]string{
			"draft":            {"submitted", "cancelled"},
			"submitted":        {"approved", "rejected", "cancelled"},
			"approved":         {"sent_to_supplier", "cancelled"},
			"rejected":         {"draft"},
			"sent_to_supplier": {"confirmed", "cancelled"},
			"confirmed":        {"in_transit", "cancelled"},
			"in_transit":       {"delivered"},
		},
		initial: []string{"draft", "submitted", "approved"},
	},
	Invoice: {
		tiers: map[string]Tier{
			"draft":              TierSecondary,
			"pending_validation": TierOutline,
			"validated":          TierDefault,
			"paid":               TierDefault,
			"disputed":           TierDestructive,
			"cancelled":          TierDestructive,
		},
		transitions: map[string][]string{
			"draft":              {"pending_validation", "cancelled"},
			"pending_validation": {"validated", "disputed", "paid", "cancelled"},
			"validated":          {"paid", "disputed", "cancelled"},
			"disputed":           {"pending_validation", "cancelled"},
		},
		initial: []string{"draft", "pending_validation", "validated"},
	},
	Supplier: {
		tiers: map[string]Tier{
			"pending_validation": TierOutline,
			"validated":          TierDefault,
			"rejected":           TierDestructive,
			"suspended":          TierSecondary,
		},
		transitions: map[string][]string{
			"pending_validation": {"validated", "rejected"},
			"validated":          {"suspended"},
			"suspended":          {"validated"},
			"rejected":           {"pending_validation"},
		},
		initial: []string{"pending_validation"},
	},
	Project: {
		tiers: map[string]Tier{
			"draft":            TierSecondary,
			"pending_approval": TierOutline,
			"approved":         TierDefault,
			"in_progress":      TierDefault,
			"completed":        TierDefault,
			"cancelled":        TierDestructive,
		},
		transitions: map[string][]string{
			"draft":            {"pending_approval", "cancelled"},
			"pending_approval": {"approved", "draft", "cancelled"},
			"approved":         {"in_progress", "cancelled"},
			"in_progress":      {"completed", "cancelled"},
		},
		initial: []string{"draft", "pending_approval"},
	},
	QualityResult: {
		tiers: map[string]Tier{
			"passed":      TierDefault,
			"failed":      TierDestructive,
			"conditional": TierOutline,
		},
		initial: []string{"passed", "failed", "conditional"},
	},
	ErpLog: {
		tiers: map[string]Tier{
			"success": TierDefault,
			"failed":  TierDestructive,
			"pending": TierSecondary,
		},
		initial: []string{"success", "failed", "pending"},
	},
}

// TierOf returns the tier of value in the kind's vocabulary.
// Values the vocabulary does not know render as outline.
func TierOf(kind Kind, value string) Tier {
	if t, ok := vocabularies[kind].tiers[value]; ok {
		return t
	}
	return TierOutline
}

// Valid reports whether value belongs to the kind's vocabulary.
func Valid(kind Kind, value string) bool {
	_, ok := vocabularies[kind].tiers[value]
	return ok
}

// Values lists the vocabulary in a stable order.
func Values(kind Kind) []string {
	v := vocabularies[kind]
	out := make([]string, 0, len(v.tiers))
	for s := range v.tiers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Next lists the statuses reachable from the given one.
func Next(kind Kind, from string) []string {
	next := vocabularies[kind].transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(kind Kind, from, to string) bool {
	for _, s := range vocabularies[kind].transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a status change. Unknown target values yield
// an *UnknownStatusError, disallowed moves a *TransitionError.
func CheckTransition(kind Kind, from, to string) error {
	if !Valid(kind, to) {
		return &UnknownStatusError{Kind: kind, Value: to}
	}
	if !CanTransition(kind, from, to) {
		return &TransitionError{Kind: kind, From: from, To: to}
	}
	return nil
}

// CheckInitial validates the status a new row is created with.
func CheckInitial(kind Kind, value string) error {
	if !Valid(kind, value) {
		return &UnknownStatusError{Kind: kind, Value: value}
	}
	for _, s := range vocabularies[kind].initial {
		if s == value {
			return nil
		}
	}
	return &TransitionError{Kind: kind, From: "", To: value}
}

type UnknownStatusError struct {
	Kind  Kind
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown %s status %q", e.Kind, e.Value)
}

type TransitionError struct {
	Kind Kind
	From string
	To   string
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s cannot be created with status %q", e.Kind, e.To)
	}
	return fmt.Sprintf("%s cannot move from %q to %q", e.Kind, e.From, e.To)
}
