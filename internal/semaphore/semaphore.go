// Package semaphore implements the fixed 256-entry traffic signal table
// shared by every semaphore sign in the vehicle and pedestrian graphs.
package semaphore

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Max is the number of signal slots; index 0 is reserved and unused by
// convention (graphs reference it to mean "no semaphore").
const Max = 256

// Signal holds one phase-locked signal's timing.
type Signal struct {
	Total uint8
	Green uint8
	Phase uint8
}

// Table is the semaphore state for a whole simulation run: 256 signal
// timings plus one monotonic second counter shared by all of them.
type Table struct {
	signals      [Max]Signal
	clockSeconds uint32
	remaining    float32
}

// New returns a table reset to its default state.
func New() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset defaults every signal to a 30-second, 30-second-green, zero-phase
// cycle (always green) and zeroes the clock.
func (t *Table) Reset() {
	for i := range t.signals {
		t.signals[i] = Signal{Total: 30, Green: 30, Phase: 0}
	}
	t.clockSeconds = 0
	t.remaining = 0
}

// Configure sets the timing for one signal index. idx 0 and out-of-range
// indices, and timings with green < 1, total == 0, or green > total, are
// rejected.
func (t *Table) Configure(idx int, total, green, phase uint8) error {
	if idx <= 0 || idx >= Max {
		return fmt.Errorf("semaphore: index %d out of range", idx)
	}
	if total == 0 || green == 0 || green > total {
		return fmt.Errorf("semaphore: invalid timing for index %d: total=%d green=%d", idx, total, green)
	}
	t.signals[idx] = Signal{Total: total, Green: green, Phase: phase}
	return nil
}

// IsGreen reports whether signal idx is currently green.
func (t *Table) IsGreen(idx int) bool {
	if idx < 0 || idx >= Max {
		panic(fmt.Sprintf("semaphore: IsGreen index %d out of range", idx))
	}
	s := t.signals[idx]
	if s.Total == 0 {
		return false
	}
	return (t.clockSeconds+uint32(s.Phase))%uint32(s.Total) < uint32(s.Green)
}

// Tick advances the shared clock by dt seconds.
func (t *Table) Tick(dt float32) {
	total := t.remaining + dt
	whole := float32(math.Floor(float64(total)))
	t.remaining = total - whole
	t.clockSeconds += uint32(whole)
}

// Load parses a whitespace-delimited "idx total green phase" text file.
// Lines that don't match the four-integer pattern are skipped. A line
// that matches but names an out-of-range index or an impossible timing
// (green > total) fails the whole load.
func (t *Table) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		var idx, total, green, phase int
		n, err := fmt.Sscanf(line, "%d %d %d %d", &idx, &total, &green, &phase)
		if err != nil || n != 4 {
			continue
		}
		if err := t.Configure(idx, uint8(total), uint8(green), uint8(phase)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("semaphore: scan: %w", err)
	}
	return nil
}
