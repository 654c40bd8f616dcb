package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"stock-hunter/config"
	"stock-hunter/internal/dto"
	"stock-hunter/internal/model"
	"stock-hunter/internal/repository"
	"stock-hunter/pkg/logger"
	"stock-hunter/pkg/utils"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type SchedulerService interface {
	Execute(ctx context.Context) error
	GetJobs(ctx context.Context, param model.GetScreenJobParam) ([]model.ScreenJob, error)
	RunJob(ctx context.Context, jobID uint) error
}

type schedulerService struct {
	cfg           *config.Config
	log           *logger.Logger
	cronParser    cron.Parser
	jobRepo       repository.ScreenJobRepository
	screenService ScreenService
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	jobRepo repository.ScreenJobRepository,
	screenService ScreenService,
) SchedulerService {
	return &schedulerService{
		cfg:           cfg,
		log:           log,
		cronParser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		jobRepo:       jobRepo,
		screenService: screenService,
	}
}

// Execute runs every due screen job, a bounded number of them concurrently.
func (s *schedulerService) Execute(ctx context.Context) error {
	jobs, err := s.jobRepo.FindDue(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find due screen jobs", logger.ErrorField(err))
		return fmt.Errorf("failed to find due screen jobs: %w", err)
	}

	if len(jobs) == 0 {
		s.log.InfoContext(ctx, "No screen jobs due")
		return nil
	}

	s.log.InfoContext(ctx, "Start running screen jobs",
		logger.IntField("job_count", len(jobs)),
		logger.IntField("max_concurrency", s.cfg.Scheduler.MaxConcurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scheduler.MaxConcurrency)

	for _, job := range jobs {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		job := job
		g.Go(func() error {
			if err := s.executeJob(gctx, job); err != nil {
				s.log.ErrorContextWithAlert(gctx, "Failed to execute screen job",
					logger.ErrorField(err),
					logger.IntField("job_id", int(job.ID)),
					logger.StringField("job_name", job.Name),
				)
			}
			// Job failures are recorded in history, never propagated; one
			// broken job must not cancel its siblings.
			return nil
		})
	}

	return g.Wait()
}

func (s *schedulerService) executeJob(ctx context.Context, job model.ScreenJob) error {
	now := utils.TimeNowMarket()

	history := &model.ScreenJobHistory{
		JobID:     job.ID,
		Status:    model.StatusRunning,
		StartedAt: now,
	}
	if err := s.jobRepo.CreateHistory(ctx, history); err != nil {
		return err
	}

	timeout := s.cfg.Scheduler.TimeoutDuration
	if job.Timeout > 0 {
		timeout = time.Duration(job.Timeout) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report, runErr := s.runScreenForJob(runCtx, job)

	if runErr != nil {
		history.Status = model.StatusFailed
		history.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	} else {
		history.Status = model.StatusCompleted
		history.Output = sql.NullString{String: summarizeReport(report), Valid: true}
	}
	history.CompletedAt = sql.NullTime{Time: utils.TimeNowMarket(), Valid: true}

	if err := s.jobRepo.UpdateHistory(ctx, history); err != nil {
		s.log.ErrorContext(ctx, "Failed to update screen job history",
			logger.ErrorField(err),
			logger.IntField("job_id", int(job.ID)),
		)
	}

	if err := s.scheduleNext(ctx, &job, now); err != nil {
		return err
	}
	return runErr
}

func (s *schedulerService) runScreenForJob(ctx context.Context, job model.ScreenJob) (*dto.BatchReport, error) {
	var payload model.ScreenJobPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
	}

	if payload.UseWatchlist || len(payload.Symbols) == 0 {
		return s.screenService.ScreenWatchlist(ctx)
	}
	return s.screenService.Screen(ctx, payload.Symbols)
}

func (s *schedulerService) scheduleNext(ctx context.Context, job *model.ScreenJob, ranAt time.Time) error {
	cronSchedule, err := s.cronParser.Parse(job.CronExpression)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to parse cron expression",
			logger.ErrorField(err),
			logger.IntField("job_id", int(job.ID)),
		)
		return fmt.Errorf("failed to parse cron expression: %w", err)
	}

	job.LastExecution = sql.NullTime{Time: ranAt, Valid: true}
	job.NextExecution = sql.NullTime{Time: cronSchedule.Next(ranAt), Valid: true}

	if err := s.jobRepo.UpdateSchedule(ctx, job); err != nil {
		s.log.ErrorContext(ctx, "Failed to update screen job schedule",
			logger.ErrorField(err),
			logger.IntField("job_id", int(job.ID)),
		)
		return err
	}
	return nil
}

func (s *schedulerService) GetJobs(ctx context.Context, param model.GetScreenJobParam) ([]model.ScreenJob, error) {
	return s.jobRepo.Get(ctx, param)
}

func (s *schedulerService) RunJob(ctx context.Context, jobID uint) error {
	s.log.InfoContext(ctx, "Running screen job", logger.IntField("job_id", int(jobID)))

	jobs, err := s.jobRepo.Get(ctx, model.GetScreenJobParam{IDs: []uint{jobID}})
	if err != nil {
		return fmt.Errorf("failed to find screen job: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("screen job %d not found", jobID)
	}

	return s.executeJob(ctx, jobs[0])
}

func summarizeReport(report *dto.BatchReport) string {
	passed := 0
	for _, rec := range report.Records {
		if rec.Criteria != nil && rec.Criteria.Passed {
			passed++
		}
	}
	summary := map[string]int{
		"total_requested": report.TotalRequested,
		"total_succeeded": report.TotalSucceeded,
		"total_failed":    report.TotalFailed,
		"total_passed":    passed,
	}
	out, _ := json.Marshal(summary)
	return string(out)
}
