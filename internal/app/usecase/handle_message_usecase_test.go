package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fardannozami/faccao-bot/internal/app/usecase"
	"github.com/fardannozami/faccao-bot/internal/app/window"
	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

// =============================================================================
// HANDLE MESSAGE USECASE TESTS
// =============================================================================
//
// Tests command routing:
// - #meta, #ranking, #depositar, #painel, #ajuda, #sala
// - #depositar without a print opens a 60s window for the member's next print
// - Unknown commands and plain chatter → nil response
//
// =============================================================================

type handleFixture struct {
	*fixture
	clock     *testclock.Clock
	collector *window.Collector
	rooms     *mockRooms
	handle    *usecase.HandleMessageUsecase
}

func newHandleFixture(t *testing.T) *handleFixture {
	t.Helper()
	f := newFixture(t)
	clk := testclock.NewClock(time.Date(2026, 10, 12, 20, 0, 0, 0, time.UTC))
	collector := window.NewCollector(clk)
	rooms := &mockRooms{rooms: make(map[string]*domain.Room)}
	handle := usecase.NewHandleMessageUsecase(
		f.goal,
		usecase.NewGetRankingUsecase(f.repo),
		f.deposit,
		usecase.NewPrivateRoomUsecase(rooms, &mockRoomCreator{}),
		collector,
		60*time.Second,
		metrics.NewCollector(),
		zaptest.NewLogger(t),
	)
	return &handleFixture{fixture: f, clock: clk, collector: collector, rooms: rooms, handle: handle}
}

func textMsg(user, name, text string) domain.IncomingMessage {
	return domain.IncomingMessage{ChatID: "chat", UserID: user, Name: name, Text: text}
}

func TestHandleMessage_MetaCommand(t *testing.T) {
	h := newHandleFixture(t)

	resp, err := h.handle.Execute(context.Background(), textMsg("userB", "Bruno", "#meta"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "📊 Bruno, você ainda não começou sua meta! Faltam *1.500*.", resp.Reply)
	assert.Nil(t, resp.Followup)
}

func TestHandleMessage_CaseAndWhitespaceInsensitive(t *testing.T) {
	h := newHandleFixture(t)

	for _, cmd := range []string{"#META", "#Meta", "  #meta", "#meta  ", "\t#meta\n", "#RANKING", "#Ajuda", "#PAINEL"} {
		resp, err := h.handle.Execute(context.Background(), textMsg("userA", "Ana", cmd))
		require.NoError(t, err, cmd)
		require.NotNil(t, resp, "%q should be recognized", cmd)
		assert.NotEmpty(t, resp.Reply, cmd)
	}
}

func TestHandleMessage_RankingCommand(t *testing.T) {
	h := newHandleFixture(t)

	resp, err := h.handle.Execute(context.Background(), textMsg("userA", "Ana", "#ranking"))
	require.NoError(t, err)
	assert.Equal(t, "Ainda não há depósitos.", resp.Reply)
}

func TestHandleMessage_UnknownCommand_ReturnsNil(t *testing.T) {
	h := newHandleFixture(t)

	for _, text := range []string{"", "hello", "#invalid", "meta", "ranking", "depositar 400"} {
		resp, err := h.handle.Execute(context.Background(), textMsg("userA", "Ana", text))
		require.NoError(t, err, text)
		assert.Nil(t, resp, "%q should be ignored", text)
	}
}

func TestHandleMessage_DepositWithImageRecordsImmediately(t *testing.T) {
	h := newHandleFixture(t)
	msg := depositMsg("userA", "Ana", "#depositar 400", image("m1", "#depositar 400"))

	resp, err := h.handle.Execute(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Followup)
	assert.Contains(t, resp.Reply, "Total da semana: *400*")
	assert.False(t, h.collector.Pending(window.Key("chat", "userA")))
}

func TestHandleMessage_DepositWindowFulfilled(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar 300"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Followup)
	assert.Equal(t, "📸 Ana, envie o print do farm com a quantidade na legenda em até 60 segundos.", resp.Reply)

	// Someone else talking does not close the window.
	other, err := h.handle.Execute(ctx, depositMsg("userB", "Bruno", "", image("x", "")))
	require.NoError(t, err)
	assert.Nil(t, other)
	assert.True(t, h.collector.Pending(window.Key("chat", "userA")))

	// The print without caption uses the quantity given with the command.
	consumed, err := h.handle.Execute(ctx, depositMsg("userA", "Ana", "", image("m1", "")))
	require.NoError(t, err)
	assert.Nil(t, consumed)

	assert.Equal(t, "✅ Depósito de *300* registrado, Ana! Total da semana: *300*. Falta: *700*.", resp.Followup(ctx))
	assert.EqualValues(t, 300, h.repo.deposits["userA"].Quantity)
}

func TestHandleMessage_DepositWindowCaptionWins(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)

	_, err = h.handle.Execute(ctx, depositMsg("userA", "Ana", "1.200", image("m1", "1.200")))
	require.NoError(t, err)

	assert.Contains(t, resp.Followup(ctx), "Meta batida")
	assert.EqualValues(t, 1200, h.repo.deposits["userA"].Quantity)
}

func TestHandleMessage_DepositWindowTimesOut(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar 300"))
	require.NoError(t, err)

	h.clock.Advance(60 * time.Second)

	assert.Equal(t, "⏰ Ana, o tempo acabou e nenhum print foi enviado. Use #depositar para tentar de novo.", resp.Followup(ctx))
	assert.Empty(t, h.repo.deposits)

	// The late print is ignored.
	late, err := h.handle.Execute(ctx, depositMsg("userA", "Ana", "300", image("m1", "300")))
	require.NoError(t, err)
	assert.Nil(t, late)
	assert.Empty(t, h.repo.deposits)
}

func TestHandleMessage_DepositWindowIgnoresChatter(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()
	key := window.Key("chat", "userA")

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar 300"))
	require.NoError(t, err)

	chatter, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "pera, já mando"))
	require.NoError(t, err)
	assert.Nil(t, chatter)
	assert.True(t, h.collector.Pending(key))

	consumed, err := h.handle.Execute(ctx, depositMsg("userA", "Ana", "", image("m1", "")))
	require.NoError(t, err)
	assert.Nil(t, consumed)

	assert.Contains(t, resp.Followup(ctx), "Depósito de *300* registrado")
	assert.EqualValues(t, 300, h.repo.deposits["userA"].Quantity)
}

func TestHandleMessage_DepositWindowTimesOutWithOnlyText(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)

	_, err = h.handle.Execute(ctx, textMsg("userA", "Ana", "500"))
	require.NoError(t, err)
	h.clock.Advance(60 * time.Second)

	assert.Contains(t, resp.Followup(ctx), "o tempo acabou")
	assert.Empty(t, h.repo.deposits)
}

func TestHandleMessage_DepositWindowPrintWithBadCaption(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)

	_, err = h.handle.Execute(ctx, depositMsg("userA", "Ana", "1,5", image("m1", "1,5")))
	require.NoError(t, err)

	assert.Contains(t, resp.Followup(ctx), "Quantidade inválida")
	assert.Empty(t, h.repo.deposits)
}

func TestHandleMessage_SecondDepositWhileWaiting(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	first, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)

	second, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Nil(t, second.Followup)
	assert.Contains(t, second.Reply, "já tem um depósito aguardando")
	assert.True(t, h.collector.Pending(window.Key("chat", "userA")))

	h.clock.Advance(60 * time.Second)
	assert.Contains(t, first.Followup(ctx), "o tempo acabou")
}

func TestHandleMessage_OtherCommandsDoNotConsumeWindow(t *testing.T) {
	h := newHandleFixture(t)
	ctx := context.Background()

	_, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#depositar"))
	require.NoError(t, err)

	resp, err := h.handle.Execute(ctx, textMsg("userA", "Ana", "#meta"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Reply, "Faltam")
	assert.True(t, h.collector.Pending(window.Key("chat", "userA")))

	h.clock.Advance(time.Minute)
}

func TestHandleMessage_RoomCommand(t *testing.T) {
	h := newHandleFixture(t)

	resp, err := h.handle.Execute(context.Background(), textMsg("userA", "Ana", "#sala"))
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "sala-userA")
	assert.NotNil(t, h.rooms.rooms["userA"])
}

func TestHandleMessage_StoreFailureIsReturned(t *testing.T) {
	h := newHandleFixture(t)
	h.repo.err = errDisk

	_, err := h.handle.Execute(context.Background(), textMsg("userA", "Ana", "#ranking"))
	assert.Error(t, err)
}
