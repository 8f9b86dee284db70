package usecase

import (
	"context"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

const (
	jobRanking = "ranking"
	jobReset   = "report_reset"
)

// WeeklyJobsUsecase runs the scheduled ranking broadcast and the weekly
// report followed by the reset.
type WeeklyJobsUsecase struct {
	repo        domain.DepositRepository
	directory   domain.MemberDirectory
	announcer   domain.Announcer
	goals       domain.GoalTable
	gate        *WeekGate
	rankingDest string
	reportDest  string
	metrics     *metrics.Collector
	logger      *zap.Logger
}

func NewWeeklyJobsUsecase(
	repo domain.DepositRepository,
	directory domain.MemberDirectory,
	announcer domain.Announcer,
	goals domain.GoalTable,
	gate *WeekGate,
	rankingDest, reportDest string,
	m *metrics.Collector,
	logger *zap.Logger,
) *WeeklyJobsUsecase {
	return &WeeklyJobsUsecase{
		repo:        repo,
		directory:   directory,
		announcer:   announcer,
		goals:       goals,
		gate:        gate,
		rankingDest: rankingDest,
		reportDest:  reportDest,
		metrics:     m,
		logger:      logger,
	}
}

// BroadcastRanking posts the current ranking. It never mutates deposits.
func (uc *WeeklyJobsUsecase) BroadcastRanking(ctx context.Context) error {
	err := uc.broadcastRanking(ctx)
	uc.finish(jobRanking, err)
	return err
}

func (uc *WeeklyJobsUsecase) broadcastRanking(ctx context.Context) error {
	chatID, err := uc.announcer.Resolve(ctx, uc.rankingDest)
	if err != nil {
		return errors.Annotate(err, "ranking destination")
	}
	deposits, err := uc.repo.GetAllDeposits(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	text := renderRanking(domain.BuildRanking(deposits))
	return errors.Annotate(uc.announcer.Announce(ctx, chatID, text), "posting ranking")
}

// ReportAndReset posts the weekly met/missed report and then clears every
// deposit. Nothing is cleared unless the report was delivered.
func (uc *WeeklyJobsUsecase) ReportAndReset(ctx context.Context) (*domain.WeeklyReport, error) {
	report, err := uc.reportAndReset(ctx)
	uc.finish(jobReset, err)
	return report, err
}

func (uc *WeeklyJobsUsecase) reportAndReset(ctx context.Context) (*domain.WeeklyReport, error) {
	chatID, err := uc.announcer.Resolve(ctx, uc.reportDest)
	if err != nil {
		return nil, errors.Annotate(err, "report destination")
	}

	// Deposits wait from the snapshot until the week is cleared.
	defer uc.gate.close()()

	deposits, err := uc.repo.GetAllDeposits(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	members, err := uc.directory.Members(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "listing members")
	}

	report := domain.ClassifyWeek(deposits, members, uc.goals)
	if err := uc.announcer.Announce(ctx, chatID, renderReport(report)); err != nil {
		return nil, errors.Annotate(err, "posting report")
	}

	cleared, err := uc.repo.DeleteAllDeposits(ctx)
	if err != nil {
		return &report, errors.Annotate(err, "report posted but reset failed")
	}
	uc.logger.Info("weekly goals reset",
		zap.Int("met", len(report.Met)),
		zap.Int("missed", len(report.Missed)),
		zap.Int("skipped", report.Skipped),
		zap.Int64("cleared", cleared))
	return &report, nil
}

func (uc *WeeklyJobsUsecase) finish(job string, err error) {
	switch {
	case err == nil:
		uc.metrics.JobRun(job, "ok")
	case errors.Is(err, domain.ErrDestinationUnavailable):
		uc.metrics.JobRun(job, "no_destination")
		uc.logger.Error("weekly job aborted: destination not found", zap.String("job", job), zap.Error(err))
	default:
		uc.metrics.JobRun(job, "error")
		uc.logger.Error("weekly job failed", zap.String("job", job), zap.Error(err))
	}
}
