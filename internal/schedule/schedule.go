// Package schedule defines the fan-out polling schedule: at which hours
// after publish a video's statistics, comments and transcript are pulled.
package schedule

import (
	"fmt"
	"sort"
)

// Fanout is the polling schedule applied to every newly discovered video.
// The zero value is not usable; construct it with Default.
type Fanout struct {
	// SnapshotHours are the hours after publish at which a statistics
	// snapshot is captured, ascending.
	SnapshotHours []int
	// CommentHours are the hours after publish at which comment threads
	// are pulled.
	CommentHours []int
	// TranscriptHour is the single hour after publish at which the
	// transcript is fetched.
	TranscriptHour int
}

// Default returns the production schedule. The last snapshot hour doubles
// as the monitoring window: once it passes, the video ages out.
func Default() Fanout {
	return Fanout{
		SnapshotHours:  []int{1, 2, 3, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 36, 48, 72},
		CommentHours:   []int{24, 72},
		TranscriptHour: 24,
	}
}

// SnapshotLabel returns the nominal label stored with a snapshot captured
// at the given interval, e.g. "24h".
func SnapshotLabel(hours int) string {
	return fmt.Sprintf("%dh", hours)
}

// LastSnapshotHour returns the final snapshot interval, which defines the
// end of a video's monitoring window.
func (f Fanout) LastSnapshotHour() int {
	return f.SnapshotHours[len(f.SnapshotHours)-1]
}

// TaskCount returns the size of the full fan-out plan for one video.
func (f Fanout) TaskCount() int {
	return len(f.SnapshotHours) + len(f.CommentHours) + 1
}

// Validate checks the schedule invariants: non-empty strictly ascending
// snapshot hours, positive values throughout.
func (f Fanout) Validate() error {
	if len(f.SnapshotHours) == 0 {
		return fmt.Errorf("schedule: no snapshot hours")
	}
	if !sort.IntsAreSorted(f.SnapshotHours) {
		return fmt.Errorf("schedule: snapshot hours not ascending")
	}
	seen := make(map[int]bool, len(f.SnapshotHours))
	for _, h := range f.SnapshotHours {
		if h <= 0 {
			return fmt.Errorf("schedule: non-positive snapshot hour %d", h)
		}
		if seen[h] {
			return fmt.Errorf("schedule: duplicate snapshot hour %d", h)
		}
		seen[h] = true
	}
	for _, h := range f.CommentHours {
		if h <= 0 {
			return fmt.Errorf("schedule: non-positive comment hour %d", h)
		}
	}
	if f.TranscriptHour <= 0 {
		return fmt.Errorf("schedule: non-positive transcript hour %d", f.TranscriptHour)
	}
	return nil
}
