package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decayRecorder struct {
	mu   sync.Mutex
	runs int
}

func (r *decayRecorder) RunDecayOnce() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return 0, 0
}

func (r *decayRecorder) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func TestPetDecayWorkerFiresAtUTCMidnightThenDaily(t *testing.T) {
	start := time.Date(2026, time.August, 28, 15, 0, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(start)
	rec := &decayRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := NewPetDecayWorker(rec, fake)
	require.NoError(t, worker.Start(ctx))

	// nothing runs before the first UTC midnight
	assert.Equal(t, 0, rec.Runs())

	// let the scheduler arm its timer, then step past 2026-08-29T00:00Z
	fake.BlockUntil(1)
	fake.Advance(9*time.Hour + time.Second)
	require.Eventually(t, func() bool { return rec.Runs() == 1 },
		2*time.Second, 10*time.Millisecond)

	// and once more a day later
	fake.BlockUntil(1)
	fake.Advance(24 * time.Hour)
	require.Eventually(t, func() bool { return rec.Runs() == 2 },
		2*time.Second, 10*time.Millisecond)
}

func TestNextUTCMidnight(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid-afternoon",
			now:  time.Date(2026, time.August, 28, 15, 4, 5, 0, time.UTC),
			want: time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "just before midnight",
			now:  time.Date(2026, time.August, 28, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly midnight schedules the following day",
			now:  time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year rollover",
			now:  time.Date(2026, time.December, 31, 12, 0, 0, 0, time.UTC),
			want: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input is converted first",
			now:  time.Date(2026, time.August, 28, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60)),
			want: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC), // 22:00-05 is already the 29th in UTC
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextUTCMidnight(tt.now))
		})
	}
}
