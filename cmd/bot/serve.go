package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fardannozami/faccao-bot/internal/app/usecase"
	"github.com/fardannozami/faccao-bot/internal/app/window"
	"github.com/fardannozami/faccao-bot/internal/config"
	"github.com/fardannozami/faccao-bot/internal/infra/httpserver"
	"github.com/fardannozami/faccao-bot/internal/infra/proofs"
	"github.com/fardannozami/faccao-bot/internal/infra/scheduler"
	"github.com/fardannozami/faccao-bot/internal/infra/wa"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to WhatsApp and run the bot (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if cfg.GroupID == "" {
		return errors.NotValidf("GROUP_ID (the facção group) must be set")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	waService := wa.NewService(cfg.SQLitePath, logger)
	gateway, err := wa.NewGateway(waService, cfg.GroupID, app.Goals, app.Deposits.ResolveLIDToPhone)
	if err != nil {
		return err
	}

	goalUC := usecase.NewShowGoalUsecase(app.Deposits, gateway, app.Goals)
	rankingUC := usecase.NewGetRankingUsecase(app.Deposits)
	gate := usecase.NewWeekGate()
	depositUC := usecase.NewRecordDepositUsecase(app.Deposits, proofs.NewStore(cfg.ProofDir), goalUC, gate, app.Metrics, logger)
	roomUC := usecase.NewPrivateRoomUsecase(app.Rooms, gateway)
	handleUC := usecase.NewHandleMessageUsecase(goalUC, rankingUC, depositUC, roomUC,
		window.NewCollector(clock.WallClock), cfg.DepositWindow, app.Metrics, logger)
	weeklyUC := usecase.NewWeeklyJobsUsecase(app.Deposits, gateway, gateway, app.Goals, gate,
		cfg.RankingGroupID, cfg.ReportGroupID, app.Metrics, logger)

	r := &replier{gateway: gateway, service: waService, cfg: cfg}
	waService.SetMessageHandler(func(ctx context.Context, client *whatsmeow.Client, evt *events.Message) {
		if evt.Info.IsFromMe {
			return
		}
		msg, ok := gateway.Message(ctx, evt)
		if !ok {
			return
		}
		if !gateway.Accepts(ctx, evt.Info.Chat, msg.UserID) {
			return
		}
		logger.Debug("message received",
			zap.String("chat", msg.ChatID),
			zap.String("user", msg.UserID),
			zap.String("name", msg.Name),
			zap.Bool("image", msg.Attachment != nil))

		resp, err := handleUC.Execute(ctx, msg)
		if err != nil {
			logger.Error("handling message failed", zap.String("user", msg.UserID), zap.Error(err))
			r.reply(ctx, evt.Info.Chat, "⚠️ Algo deu errado, tente novamente em instantes.")
			return
		}
		if resp == nil {
			return
		}
		r.reply(ctx, evt.Info.Chat, resp.Reply)
		if resp.Followup != nil {
			r.reply(ctx, evt.Info.Chat, resp.Followup(ctx))
		}
	})

	sched := scheduler.New(loc, logger)
	if err := sched.Add("ranking", cfg.RankingCron, weeklyUC.BroadcastRanking); err != nil {
		return err
	}
	err = sched.Add("report_reset", cfg.ResetCron, func(ctx context.Context) error {
		_, err := weeklyUC.ReportAndReset(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if err := waService.Initialize(ctx); err != nil {
		return errors.Annotate(err, "initializing whatsapp")
	}
	if err := waService.Login(ctx, cfg.BotPhone); err != nil {
		return err
	}
	defer waService.Disconnect()

	logger.Info("bot is running", zap.String("group", cfg.GroupID), zap.String("timezone", loc.String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, cfg.Port, httpserver.NewRouter(app.Registry), logger)
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	err = g.Wait()
	logger.Info("shutting down")
	return err
}

// replier sends replies, optionally after a human-like delay.
type replier struct {
	gateway *wa.Gateway
	service *wa.Service
	cfg     config.Config
}

func (r *replier) reply(ctx context.Context, chat types.JID, text string) {
	if text == "" {
		return
	}

	delayMs := r.cfg.ReplyDelayMinMs
	if r.cfg.ReplyDelayMaxMs > r.cfg.ReplyDelayMinMs {
		delayMs = r.cfg.ReplyDelayMinMs + rand.Intn(r.cfg.ReplyDelayMaxMs-r.cfg.ReplyDelayMinMs+1)
	}
	if delayMs > 0 {
		client := r.service.GetClient()
		if r.cfg.ShowTyping {
			_ = client.SendChatPresence(ctx, chat, types.ChatPresenceComposing, types.ChatPresenceMediaText)
		}
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
		if r.cfg.ShowTyping {
			_ = client.SendChatPresence(ctx, chat, types.ChatPresencePaused, types.ChatPresenceMediaText)
		}
	}

	if err := r.gateway.Send(ctx, chat, text); err != nil {
		logger.Error("failed to send response", zap.String("chat", chat.String()), zap.Error(err))
	}
}
