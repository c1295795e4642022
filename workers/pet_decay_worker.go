package workers

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// DecayRunner is the slice of PetService the worker needs.
type DecayRunner interface {
	RunDecayOnce() (updated, failed int)
}

// PetDecayWorker runs the daily hunger/happiness decay pass. The first run
// fires at the next UTC midnight, then every 24h. The scheduler shuts down
// with the context passed to Start.
type PetDecayWorker struct {
	Pets  DecayRunner
	Clock clockwork.Clock

	sched gocron.Scheduler
}

func NewPetDecayWorker(pets DecayRunner, clock clockwork.Clock) *PetDecayWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PetDecayWorker{Pets: pets, Clock: clock}
}

func (w *PetDecayWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithClock(w.Clock))
	if err != nil {
		return err
	}
	w.sched = sched

	first := NextUTCMidnight(w.Clock.Now())
	if _, err := sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(w.runOnce),
		gocron.WithStartAt(gocron.WithStartDateTime(first)),
	); err != nil {
		return err
	}

	sched.Start()
	log.Printf("[petDecay] First decay pass scheduled for %s", first.Format(time.RFC3339))

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[petDecay] Scheduler shutdown error: %v", err)
		}
	}()
	return nil
}

func (w *PetDecayWorker) runOnce() {
	log.Println("[petDecay] Running daily decay pass")
	updated, failed := w.Pets.RunDecayOnce()
	log.Printf("[petDecay] Finished: %d updated, %d failed", updated, failed)
}

// NextUTCMidnight returns the start of the next UTC calendar day after now.
func NextUTCMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
