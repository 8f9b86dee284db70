package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

type RecordDepositUsecase struct {
	repo    domain.DepositRepository
	proofs  domain.ProofStore
	goals   *ShowGoalUsecase
	gate    *WeekGate
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewRecordDepositUsecase(repo domain.DepositRepository, proofs domain.ProofStore, goals *ShowGoalUsecase, gate *WeekGate, m *metrics.Collector, logger *zap.Logger) *RecordDepositUsecase {
	return &RecordDepositUsecase{repo: repo, proofs: proofs, goals: goals, gate: gate, metrics: m, logger: logger}
}

// quantityText extracts the quantity from a message, dropping a leading
// #depositar command word.
func quantityText(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.EqualFold(fields[0], cmdDeposit) {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func depositQuantity(msg domain.IncomingMessage, fallback string) string {
	if raw := quantityText(msg.Text); raw != "" {
		return raw
	}
	return fallback
}

// Record validates and stores one deposit. Validation failures are
// errors.NotValid and leave the store untouched.
func (uc *RecordDepositUsecase) Record(ctx context.Context, msg domain.IncomingMessage, fallbackQuantity string) (int64, int64, error) {
	if msg.Attachment == nil {
		uc.metrics.DepositRejected("proof")
		return 0, 0, errors.NotValidf("deposit without proof")
	}
	quantity, err := domain.ParseQuantity(depositQuantity(msg, fallbackQuantity))
	if err != nil {
		uc.metrics.DepositRejected("quantity")
		return 0, 0, err
	}

	ref, err := uc.proofs.Save(ctx, msg.UserID, msg.Attachment)
	if err != nil {
		return 0, 0, errors.Annotate(err, "saving proof")
	}
	release := uc.gate.deposit()
	total, err := uc.repo.AddDeposit(ctx, msg.UserID, msg.Name, quantity, ref)
	release()
	if err != nil {
		if rmErr := uc.proofs.Remove(ctx, ref); rmErr != nil {
			uc.logger.Warn("orphaned proof", zap.String("proof", ref), zap.Error(rmErr))
		}
		return 0, 0, errors.Trace(err)
	}
	uc.metrics.DepositAccepted(quantity)
	uc.logger.Info("deposit recorded",
		zap.String("user", msg.UserID),
		zap.Int64("quantity", quantity),
		zap.Int64("total", total),
		zap.String("proof", ref))
	return quantity, total, nil
}

// Execute records a deposit and renders the reply for the member.
func (uc *RecordDepositUsecase) Execute(ctx context.Context, msg domain.IncomingMessage, fallbackQuantity string) (string, error) {
	quantity, total, err := uc.Record(ctx, msg, fallbackQuantity)
	if errors.Is(err, errors.NotValid) {
		if _, qerr := domain.ParseQuantity(depositQuantity(msg, fallbackQuantity)); msg.Attachment != nil && qerr != nil {
			return "❌ Quantidade inválida. Escreva só o número na legenda do print. Use #depositar para tentar de novo.", nil
		}
		return "❌ O print é obrigatório! Envie a imagem com a quantidade na legenda. Use #depositar para tentar de novo.", nil
	}
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Depósito de *%s* registrado, %s! Total da semana: *%s*.",
		formatQuantity(quantity), msg.Name, formatQuantity(total))

	st, err := uc.goals.Status(ctx, msg.UserID)
	if err != nil {
		// The deposit is stored; only the goal line is missing.
		uc.logger.Warn("goal lookup after deposit failed", zap.String("user", msg.UserID), zap.Error(err))
		return reply, nil
	}
	if st.Remaining == 0 {
		return reply + " Meta batida! 🎉", nil
	}
	return reply + fmt.Sprintf(" Falta: *%s*.", formatQuantity(st.Remaining)), nil
}
