package usecase

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

// GoalStatus is a member's standing against their weekly goal.
type GoalStatus struct {
	domain.Progress
	Goal    int64
	Role    string
	Started bool
}

type ShowGoalUsecase struct {
	repo      domain.DepositRepository
	directory domain.MemberDirectory
	goals     domain.GoalTable
}

func NewShowGoalUsecase(repo domain.DepositRepository, directory domain.MemberDirectory, goals domain.GoalTable) *ShowGoalUsecase {
	return &ShowGoalUsecase{repo: repo, directory: directory, goals: goals}
}

func (uc *ShowGoalUsecase) Status(ctx context.Context, userID string) (GoalStatus, error) {
	var roles []string
	member, err := uc.directory.Member(ctx, userID)
	if err != nil {
		return GoalStatus{}, errors.Annotatef(err, "resolving roles of %s", userID)
	}
	if member != nil {
		roles = member.Roles
	}
	goal, role := domain.ResolveGoal(roles, uc.goals)

	deposit, err := uc.repo.GetDeposit(ctx, userID)
	if err != nil {
		return GoalStatus{}, errors.Trace(err)
	}
	return GoalStatus{
		Progress: domain.EvaluateProgress(deposit, goal),
		Goal:     goal,
		Role:     role,
		Started:  deposit != nil,
	}, nil
}

func (uc *ShowGoalUsecase) Execute(ctx context.Context, userID, name string) (string, error) {
	st, err := uc.Status(ctx, userID)
	if err != nil {
		return "", err
	}
	if !st.Started {
		return fmt.Sprintf("📊 %s, você ainda não começou sua meta! Faltam *%s*.", name, formatQuantity(st.Remaining)), nil
	}
	role := st.Role
	if role == "" {
		role = domain.DefaultRoleName
	}
	return fmt.Sprintf("📅 Meta semanal de %s:\n- Cargo: %s\n- Farmado: *%s*\n- Falta: *%s*",
		name, role, formatQuantity(st.Accumulated), formatQuantity(st.Remaining)), nil
}
