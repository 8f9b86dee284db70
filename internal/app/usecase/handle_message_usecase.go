package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/fardannozami/faccao-bot/internal/app/window"
	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

const (
	cmdGoal    = "#meta"
	cmdRanking = "#ranking"
	cmdDeposit = "#depositar"
	cmdPanel   = "#painel"
	cmdHelp    = "#ajuda"
	cmdRoom    = "#sala"
)

type GoalShower interface {
	Execute(ctx context.Context, userID, name string) (string, error)
}

type RankingGetter interface {
	Execute(ctx context.Context) (string, error)
}

type DepositRecorder interface {
	Execute(ctx context.Context, msg domain.IncomingMessage, fallbackQuantity string) (string, error)
}

type RoomOpener interface {
	Execute(ctx context.Context, userID, name string) (string, error)
}

// Response describes what the bot should do after a message: an immediate
// reply and, for deposits awaiting a print, a followup producing a later reply.
type Response struct {
	Reply    string
	Followup func(ctx context.Context) string
}

type commandHandler func(ctx context.Context, msg domain.IncomingMessage, args string) (*Response, error)

type HandleMessageUsecase struct {
	goal          GoalShower
	ranking       RankingGetter
	deposit       DepositRecorder
	room          RoomOpener
	collector     *window.Collector
	windowTimeout time.Duration
	metrics       *metrics.Collector
	logger        *zap.Logger

	handlers map[string]commandHandler
}

func NewHandleMessageUsecase(
	goal GoalShower,
	ranking RankingGetter,
	deposit DepositRecorder,
	room RoomOpener,
	collector *window.Collector,
	windowTimeout time.Duration,
	m *metrics.Collector,
	logger *zap.Logger,
) *HandleMessageUsecase {
	uc := &HandleMessageUsecase{
		goal:          goal,
		ranking:       ranking,
		deposit:       deposit,
		room:          room,
		collector:     collector,
		windowTimeout: windowTimeout,
		metrics:       m,
		logger:        logger,
	}
	uc.handlers = map[string]commandHandler{
		cmdGoal:    uc.handleGoal,
		cmdRanking: uc.handleRanking,
		cmdDeposit: uc.handleDeposit,
		cmdPanel:   uc.handlePanel,
		cmdHelp:    uc.handleHelp,
		cmdRoom:    uc.handleRoom,
	}
	return uc
}

// Execute routes one inbound message. A nil response means the bot stays quiet.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, msg domain.IncomingMessage) (*Response, error) {
	text := strings.TrimSpace(msg.Text)
	msg.Text = text

	var command, args string
	if strings.HasPrefix(text, "#") {
		command, args, _ = strings.Cut(text, " ")
		command = strings.ToLower(strings.TrimSpace(command))
		args = strings.TrimSpace(args)
	}

	// A pending deposit window takes the member's next print, unless it comes
	// with another command.
	handler, isCommand := uc.handlers[command]
	if !isCommand || command == cmdDeposit {
		if uc.collector.Offer(window.Key(msg.ChatID, msg.UserID), msg) {
			return nil, nil
		}
	}
	if !isCommand {
		return nil, nil
	}
	return handler(ctx, msg, args)
}

func reply(text string, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}
	return &Response{Reply: text}, nil
}

func (uc *HandleMessageUsecase) handleGoal(ctx context.Context, msg domain.IncomingMessage, _ string) (*Response, error) {
	return reply(uc.goal.Execute(ctx, msg.UserID, msg.Name))
}

func (uc *HandleMessageUsecase) handleRanking(ctx context.Context, _ domain.IncomingMessage, _ string) (*Response, error) {
	return reply(uc.ranking.Execute(ctx))
}

func (uc *HandleMessageUsecase) handleRoom(ctx context.Context, msg domain.IncomingMessage, _ string) (*Response, error) {
	return reply(uc.room.Execute(ctx, msg.UserID, msg.Name))
}

func (uc *HandleMessageUsecase) handleDeposit(ctx context.Context, msg domain.IncomingMessage, args string) (*Response, error) {
	if msg.Attachment != nil {
		return reply(uc.deposit.Execute(ctx, msg, ""))
	}

	key := window.Key(msg.ChatID, msg.UserID)
	w, err := uc.collector.Open(key, uc.windowTimeout)
	if errors.Is(err, errors.AlreadyExists) {
		return &Response{Reply: "⏳ Você já tem um depósito aguardando o print."}, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	fallback := quantityText(args)
	followup := func(ctx context.Context) string {
		got, err := w.Wait(ctx)
		if errors.Is(err, errors.Timeout) {
			uc.metrics.WindowTimedOut()
			return fmt.Sprintf("⏰ %s, o tempo acabou e nenhum print foi enviado. Use #depositar para tentar de novo.", msg.Name)
		}
		if err != nil {
			uc.logger.Info("deposit window closed", zap.String("window", w.ID), zap.Error(err))
			return ""
		}
		text, err := uc.deposit.Execute(ctx, got, fallback)
		if err != nil {
			uc.logger.Error("recording deposit failed", zap.String("window", w.ID), zap.String("user", msg.UserID), zap.Error(err))
			return "⚠️ Não foi possível registrar o depósito agora. Tente novamente em instantes."
		}
		return text
	}

	prompt := fmt.Sprintf("📸 %s, envie o print do farm com a quantidade na legenda em até %d segundos.",
		msg.Name, int(uc.windowTimeout.Seconds()))
	return &Response{Reply: prompt, Followup: followup}, nil
}

func (uc *HandleMessageUsecase) handlePanel(_ context.Context, _ domain.IncomingMessage, _ string) (*Response, error) {
	return &Response{Reply: "🎯 *Painel de Metas da Facção*\n\n" +
		"Escolha uma opção:\n" +
		"• #sala — Criar sala privada\n" +
		"• #ajuda — Ver comandos"}, nil
}

func (uc *HandleMessageUsecase) handleHelp(_ context.Context, _ domain.IncomingMessage, _ string) (*Response, error) {
	return &Response{Reply: "📘 *Central de Ajuda — Sistema de Metas da Facção*\n\n" +
		"👤 *Usuário*\n" +
		"• #painel — Painel principal\n" +
		"• #depositar <quantidade> — Depositar farm + print obrigatório\n" +
		"• #meta — Sua meta semanal\n" +
		"• #ranking — Ranking semanal\n" +
		"• #sala — Criar sala privada"}, nil
}
