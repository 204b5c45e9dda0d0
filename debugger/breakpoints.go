package debugger

import (
	"fmt"
	"sort"
)

// Breakpoint represents a breakpoint on a bytecode offset
type Breakpoint struct {
	ID       int
	Offset   int
	Enabled  bool
	HitCount int
}

func (b *Breakpoint) String() string {
	state := "enabled"
	if !b.Enabled {
		state = "disabled"
	}
	return fmt.Sprintf("#%d at offset %04d (%s, hit %d times)", b.ID, b.Offset, state, b.HitCount)
}

// BreakpointManager tracks breakpoints keyed by bytecode offset
type BreakpointManager struct {
	breakpoints map[int]*Breakpoint // offset -> breakpoint
	nextID      int
}

// NewBreakpointManager creates an empty breakpoint manager
func NewBreakpointManager() *BreakpointManager {
	return &BreakpointManager{
		breakpoints: make(map[int]*Breakpoint),
		nextID:      1,
	}
}

// Add sets a breakpoint at the given bytecode offset. Setting one on
// an offset that already has a breakpoint re-enables it.
func (m *BreakpointManager) Add(offset int) *Breakpoint {
	if bp, exists := m.breakpoints[offset]; exists {
		bp.Enabled = true
		return bp
	}

	bp := &Breakpoint{
		ID:      m.nextID,
		Offset:  offset,
		Enabled: true,
	}
	m.nextID++
	m.breakpoints[offset] = bp
	return bp
}

// Remove deletes the breakpoint with the given ID
func (m *BreakpointManager) Remove(id int) bool {
	for offset, bp := range m.breakpoints {
		if bp.ID == id {
			delete(m.breakpoints, offset)
			return true
		}
	}
	return false
}

// Check returns the enabled breakpoint at offset, if any, and counts
// the hit
func (m *BreakpointManager) Check(offset int) (*Breakpoint, bool) {
	bp, exists := m.breakpoints[offset]
	if !exists || !bp.Enabled {
		return nil, false
	}
	bp.HitCount++
	return bp, true
}

// All returns every breakpoint ordered by offset
func (m *BreakpointManager) All() []*Breakpoint {
	result := make([]*Breakpoint, 0, len(m.breakpoints))
	for _, bp := range m.breakpoints {
		result = append(result, bp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Offset < result[j].Offset
	})
	return result
}

// Clear removes all breakpoints
func (m *BreakpointManager) Clear() {
	m.breakpoints = make(map[int]*Breakpoint)
}
