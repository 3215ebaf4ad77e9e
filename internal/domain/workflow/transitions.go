package workflow

import (
	"fmt"
	"sort"
)

// StatusNone is the current status of an application that does not exist yet
const StatusNone Status = ""

// TableBuilder builds an immutable transition table
type TableBuilder interface {
	// Configure returns the configuration of outgoing edges for a status
	Configure(from Status) TransitionConfiguration

	// Build freezes the configured edges into a table
	Build() *TransitionTable
}

// TransitionConfiguration configures the outgoing edges of one status
type TransitionConfiguration interface {
	// Permit allows moving from the configured status to each target
	Permit(to ...Status) TransitionConfiguration
}

type tableBuilder struct {
	edges map[Status]map[Status]bool
}

type transitionConfig struct {
	builder *tableBuilder
	from    Status
}

// TransitionTable lists, for every status, the statuses it may move to
type TransitionTable struct {
	edges map[Status]map[Status]bool
}

// NewTableBuilder creates a new transition table builder
func NewTableBuilder() TableBuilder {
	return &tableBuilder{
		edges: make(map[Status]map[Status]bool),
	}
}

// Configure returns the configuration for the given status
func (b *tableBuilder) Configure(from Status) TransitionConfiguration {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid status: %s", from))
	}
	if _, exists := b.edges[from]; !exists {
		b.edges[from] = make(map[Status]bool)
	}
	return &transitionConfig{builder: b, from: from}
}

// Build copies the configured edges so later Configure calls cannot change
// the returned table. Every target becomes a key, terminal ones with no
// outgoing edges.
func (b *tableBuilder) Build() *TransitionTable {
	edges := make(map[Status]map[Status]bool, len(b.edges))
	for from, targets := range b.edges {
		copied := make(map[Status]bool, len(targets))
		for to := range targets {
			copied[to] = true
			if _, exists := edges[to]; !exists {
				edges[to] = make(map[Status]bool)
			}
		}
		if existing, exists := edges[from]; exists {
			for to := range existing {
				copied[to] = true
			}
		}
		edges[from] = copied
	}
	return &TransitionTable{edges: edges}
}

// Permit adds edges from the configured status
func (c *transitionConfig) Permit(to ...Status) TransitionConfiguration {
	for _, target := range to {
		if !target.IsValid() {
			panic(fmt.Sprintf("invalid target status: %s", target))
		}
		if target == c.from {
			panic(fmt.Sprintf("self transition not allowed: %s", target))
		}
		c.builder.edges[c.from][target] = true
	}
	return c
}

// AllowedNextStates returns the targets reachable from status in lifecycle
// order
func (t *TransitionTable) AllowedNextStates(status Status) []Status {
	targets := t.edges[status]
	result := make([]Status, 0, len(targets))
	for to := range targets {
		result = append(result, to)
	}
	sortStatuses(result)
	return result
}

// IsAllowed reports whether from → to is an edge of the table
func (t *TransitionTable) IsAllowed(from, to Status) bool {
	return t.edges[from][to]
}

// Statuses returns every status that appears as a key
func (t *TransitionTable) Statuses() []Status {
	result := make([]Status, 0, len(t.edges))
	for s := range t.edges {
		result = append(result, s)
	}
	sortStatuses(result)
	return result
}

// Validate checks the table invariants: every target is itself a key, no
// status moves to itself, and terminal statuses have no outgoing edges.
func (t *TransitionTable) Validate() error {
	for from, targets := range t.edges {
		if from.IsTerminal() && len(targets) > 0 {
			return fmt.Errorf("%w: terminal status %s has outgoing edges", ErrInvalidTransition, from)
		}
		for to := range targets {
			if to == from {
				return fmt.Errorf("%w: self transition on %s", ErrInvalidTransition, from)
			}
			if _, exists := t.edges[to]; !exists {
				return fmt.Errorf("%w: target %s is not a key", ErrInvalidTransition, to)
			}
		}
	}
	return nil
}

var defaultTable = buildDefaultTable()

// DefaultTable returns the application lifecycle transition table
func DefaultTable() *TransitionTable {
	return defaultTable
}

// AllowedNextStates looks up the default table
func AllowedNextStates(status Status) []Status {
	return defaultTable.AllowedNextStates(status)
}

func buildDefaultTable() *TransitionTable {
	builder := NewTableBuilder()

	builder.Configure(StatusSubmitted).
		Permit(StatusUnderReview, StatusShortlisted, StatusRejected, StatusWithdrawn)

	builder.Configure(StatusUnderReview).
		Permit(StatusShortlisted, StatusInterviewScheduled, StatusRejected, StatusWithdrawn)

	builder.Configure(StatusShortlisted).
		Permit(StatusInterviewScheduled, StatusAccepted, StatusRejected, StatusWithdrawn)

	builder.Configure(StatusInterviewScheduled).
		Permit(StatusAccepted, StatusRejected, StatusWithdrawn)

	// ACCEPTED, REJECTED and WITHDRAWN are terminal - no outgoing edges

	return builder.Build()
}

var statusOrder = func() map[Status]int {
	order := make(map[Status]int)
	for i, s := range AllStatuses() {
		order[s] = i
	}
	return order
}()

func sortStatuses(statuses []Status) {
	sort.Slice(statuses, func(i, j int) bool {
		return statusOrder[statuses[i]] < statusOrder[statuses[j]]
	})
}
