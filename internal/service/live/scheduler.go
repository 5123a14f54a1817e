package live

// Output audio arrives as 16-bit mono PCM at 24kHz.
const (
	outputSampleRate    = 24000
	outputBytesPerFrame = 2
)

// PCMDuration returns the playback duration in seconds of an output chunk.
func PCMDuration(n int) float64 {
	return float64(n) / outputBytesPerFrame / outputSampleRate
}

// Scheduler assigns gapless, non-overlapping start times to decoded audio
// chunks. The cursor is monotonic within a turn: each chunk starts at the
// later of the playback clock and the end of the previous chunk.
type Scheduler struct {
	cursor float64
}

// ScheduleAt returns the start time for a chunk of the given duration,
// measured on the caller's playback clock. The chunk never starts in the
// past and never overlaps its predecessor.
func (s *Scheduler) ScheduleAt(clock, duration float64) float64 {
	start := clock
	if s.cursor > start {
		start = s.cursor
	}
	s.cursor = start + duration
	return start
}

// Reset drops the cursor after an interruption so the next chunk schedules
// against the live clock immediately.
func (s *Scheduler) Reset() {
	s.cursor = 0
}
