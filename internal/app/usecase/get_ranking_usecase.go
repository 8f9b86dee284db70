package usecase

import (
	"context"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

type GetRankingUsecase struct {
	repo domain.DepositRepository
}

func NewGetRankingUsecase(repo domain.DepositRepository) *GetRankingUsecase {
	return &GetRankingUsecase{repo: repo}
}

// Ranking returns the current weekly ranking.
func (uc *GetRankingUsecase) Ranking(ctx context.Context) (domain.Ranking, error) {
	deposits, err := uc.repo.GetAllDeposits(ctx)
	if err != nil {
		return domain.Ranking{}, errors.Trace(err)
	}
	return domain.BuildRanking(deposits), nil
}

func (uc *GetRankingUsecase) Execute(ctx context.Context) (string, error) {
	r, err := uc.Ranking(ctx)
	if err != nil {
		return "", err
	}
	return renderRanking(r), nil
}
