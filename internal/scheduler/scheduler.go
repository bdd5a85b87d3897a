package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// FrequencyManual disables scheduled refreshes.
const FrequencyManual = "manual"

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler. A job still running when its next tick fires
// skips that tick.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})

	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// AddJobAtFrequency registers job at one of the refresh frequencies offered
// in the settings ("manual", "5", "10" or "15" minutes). Manual registers
// nothing and reports false.
func (s *Scheduler) AddJobAtFrequency(frequency string, job Job) (bool, error) {
	schedule, ok, err := ScheduleFor(frequency)
	if err != nil || !ok {
		return false, err
	}
	if err := s.AddJob(schedule, job); err != nil {
		return false, err
	}
	return true, nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// ScheduleFor maps a refresh frequency to a cron schedule.
func ScheduleFor(frequency string) (schedule string, ok bool, err error) {
	switch frequency {
	case FrequencyManual, "":
		return "", false, nil
	case "5", "10", "15":
		return fmt.Sprintf("0 */%s * * * *", frequency), true, nil
	}
	return "", false, fmt.Errorf("unsupported refresh frequency %q", frequency)
}
