// Package priority defines the named scheduling phases a generator's tasks
// are classified into, and the order their queues run in.
package priority

import (
	"fmt"
	"slices"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// Base priority names, in run order.
const (
	Initializing = "initializing"
	Prompting    = "prompting"
	Configuring  = "configuring"
	Default      = "default"
	Writing      = "writing"
	Conflicts    = "conflicts"
	Install      = "install"
	End          = "end"
)

// Priority is a named scheduling bucket with an associated run-loop queue.
type Priority struct {
	// Name is the priority name methods are matched against.
	Name string

	// QueueName is the run-loop queue. Defaults to Name.
	QueueName string

	// Before places the queue immediately ahead of an existing queue.
	// When the anchor does not exist the queue is appended.
	Before string

	// Once marks every task of this priority as once-only per generator identity.
	Once bool

	// Run set to false classifies the priority's methods without queueing them.
	Run *bool

	// Edit marks priorities whose tasks modify files.
	Edit bool

	// Skip registers the queue but holds its tasks until explicitly requested.
	Skip bool

	// Args are passed to every task of this priority.
	Args []any

	// ArgsFunc computes task arguments at queue time. Takes precedence over Args.
	ArgsFunc func() []any
}

// Queue returns the resolved queue name.
func (p Priority) Queue() string {
	if p.QueueName != "" {
		return p.QueueName
	}
	return p.Name
}

// Runs reports whether the priority's tasks are queued at all.
func (p Priority) Runs() bool {
	return p.Run == nil || *p.Run
}

// TaskArgs returns the arguments for tasks of this priority.
func (p Priority) TaskArgs() []any {
	if p.ArgsFunc != nil {
		return p.ArgsFunc()
	}
	return p.Args
}

// Defaults returns the base priorities in run order.
func Defaults() []Priority {
	return []Priority{
		{Name: Initializing},
		{Name: Prompting},
		{Name: Configuring},
		{Name: Default},
		{Name: Writing, Edit: true},
		{Name: Conflicts, Edit: true},
		{Name: Install},
		{Name: End},
	}
}

// DefaultQueueNames returns the queue names of the base priorities.
func DefaultQueueNames() []string {
	defaults := Defaults()
	names := make([]string, len(defaults))
	for i, p := range defaults {
		names[i] = p.Queue()
	}
	return names
}

// Set is an ordered, name-unique collection of priorities.
type Set struct {
	ordered []Priority
	byName  map[string]int
}

// Resolve builds the priority set for a generator: the base priorities
// extended with custom ones. A custom priority with Before is inserted ahead
// of the first priority whose queue matches the anchor; otherwise, or when the
// anchor is missing, it is appended. Duplicate names are configuration errors.
func Resolve(custom []Priority) (*Set, error) {
	s := &Set{byName: make(map[string]int)}
	for _, p := range Defaults() {
		s.ordered = append(s.ordered, p)
	}
	s.reindex()

	for _, p := range custom {
		if p.Name == "" {
			return nil, oerrors.NewConfigurationError("custom priority has no name", "customPriorities", "")
		}
		if _, exists := s.byName[p.Name]; exists {
			return nil, oerrors.NewConfigurationError(
				fmt.Sprintf("duplicate priority name %q", p.Name),
				"customPriorities",
				"Priority names must be unique; rename the custom priority.",
			)
		}

		idx := s.anchorIndex(p.Before)
		if idx < 0 {
			s.ordered = append(s.ordered, p)
		} else {
			s.ordered = slices.Insert(s.ordered, idx, p)
		}
		s.reindex()
	}

	return s, nil
}

func (s *Set) anchorIndex(before string) int {
	if before == "" {
		return -1
	}
	for i, p := range s.ordered {
		if p.Queue() == before || p.Name == before {
			return i
		}
	}
	return -1
}

func (s *Set) reindex() {
	clear(s.byName)
	for i, p := range s.ordered {
		s.byName[p.Name] = i
	}
}

// Lookup returns the priority with the given name.
func (s *Set) Lookup(name string) (Priority, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Priority{}, false
	}
	return s.ordered[i], true
}

// Has reports whether name is a priority of this set.
func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// All returns the priorities in order.
func (s *Set) All() []Priority {
	return slices.Clone(s.ordered)
}

// Names returns the priority names in order.
func (s *Set) Names() []string {
	names := make([]string, len(s.ordered))
	for i, p := range s.ordered {
		names[i] = p.Name
	}
	return names
}

// QueueNames returns the queue names in order, without duplicates.
func (s *Set) QueueNames() []string {
	names := make([]string, 0, len(s.ordered))
	for _, p := range s.ordered {
		if !slices.Contains(names, p.Queue()) {
			names = append(names, p.Queue())
		}
	}
	return names
}

// Custom returns the priorities that are not base priorities, in order.
func (s *Set) Custom() []Priority {
	base := DefaultQueueNames()
	var out []Priority
	for _, p := range s.ordered {
		if !slices.Contains(base, p.Name) {
			out = append(out, p)
		}
	}
	return out
}
