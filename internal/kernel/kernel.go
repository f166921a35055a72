// Package kernel expresses the {ExpandRange, FindRuns, FindAlternations}
// capability set as a registered interface, so alternative implementations
// can be swapped in without touching the detectors that consume them.
package kernel

import (
	"fmt"
	"sync"

	"als/internal/model"
)

// Kernel is the scalar capability set that pattern detectors drive. A
// single implementation ("scalar") is registered at init; alternative
// implementations (batched, architecture-specific) can be registered and
// selected without touching internal/detect, as long as they are
// observationally equivalent to the scalar baseline.
type Kernel interface {
	// Name identifies this kernel implementation.
	Name() string
	// ExpandRange materializes an arithmetic progression of count values
	// starting at start and advancing by step (integer or float,
	// depending on the Kinds of start/step).
	ExpandRange(start, step model.Value, count int) []model.Value
	// FindRuns returns, for each maximal run of adjacent equal values
	// (per model.Value.Equal) of length >= minLen, its [start, end) span.
	FindRuns(vs []model.Value, minLen int) []Span
	// FindAlternations returns maximal a,b,a,b,... runs of length >=
	// minLen (truncated to even length at the first break).
	FindAlternations(vs []model.Value, minLen int) []Span
}

// Span is a half-open [Start, End) index range into a column.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }

var (
	mu       sync.RWMutex
	registry = map[string]Kernel{}
	active   string
)

// Register installs k under its own Name(). The first registered kernel
// becomes active by default.
func Register(k Kernel) {
	mu.Lock()
	defer mu.Unlock()
	registry[k.Name()] = k
	if active == "" {
		active = k.Name()
	}
}

// Use selects the active kernel by name.
func Use(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("unknown kernel %q", name)
	}
	active = name
	return nil
}

// Active returns the currently selected kernel.
func Active() Kernel {
	mu.RLock()
	defer mu.RUnlock()
	return registry[active]
}

func init() {
	Register(scalarKernel{})
}
