// SPDX-License-Identifier: MIT

// Package schedule synthesizes the fixed programme grid used for the guide.
package schedule

import "time"

const (
	// SlotCount is the number of slots in a schedule.
	SlotCount = 8
	// SlotLength is the duration of every slot.
	SlotLength = 3 * time.Hour
)

// Slot is one contiguous programme block.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (s Slot) Duration() time.Duration { return s.End.Sub(s.Start) }

// Schedule is an ordered, contiguous run of SlotCount slots shared by every
// channel of a run.
type Schedule struct {
	slots []Slot
}

// Synthesize floors now to the start of its hour in loc and lays out
// SlotCount slots of SlotLength from there. A nil loc means UTC.
func Synthesize(now time.Time, loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	// Subtracting the wall-clock remainder keeps the instant unambiguous
	// across DST fold hours, which time.Date does not guarantee.
	start := local.Add(-time.Duration(local.Minute())*time.Minute -
		time.Duration(local.Second())*time.Second -
		time.Duration(local.Nanosecond()))

	slots := make([]Slot, SlotCount)
	for i := range slots {
		end := start.Add(SlotLength)
		slots[i] = Slot{Start: start, End: end}
		start = end
	}
	return Schedule{slots: slots}
}

// Slots returns a copy of the slots in order.
func (s Schedule) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Len returns the number of slots.
func (s Schedule) Len() int { return len(s.slots) }

// Window returns the start of the first slot and the end of the last.
func (s Schedule) Window() (time.Time, time.Time) {
	if len(s.slots) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.slots[0].Start, s.slots[len(s.slots)-1].End
}
