package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/juju/errors"
	"go.uber.org/zap/zaptest"

	"github.com/fardannozami/faccao-bot/internal/app/usecase"
	"github.com/fardannozami/faccao-bot/internal/domain"
	"github.com/fardannozami/faccao-bot/internal/metrics"
)

// mockDepositRepo implements domain.DepositRepository in memory, keeping
// insertion order like the SQLite table.
type mockDepositRepo struct {
	mu       sync.Mutex
	order    []string
	deposits map[string]*domain.Deposit
	err      error
	cleared  int
}

func newMockDepositRepo() *mockDepositRepo {
	return &mockDepositRepo{deposits: make(map[string]*domain.Deposit)}
}

func (m *mockDepositRepo) GetDeposit(ctx context.Context, userID string) (*domain.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.deposits[userID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockDepositRepo) AddDeposit(ctx context.Context, userID, name string, quantity int64, proof string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	d, ok := m.deposits[userID]
	if !ok {
		d = &domain.Deposit{UserID: userID}
		m.deposits[userID] = d
		m.order = append(m.order, userID)
	}
	d.Name = name
	d.Quantity += quantity
	d.ProofReference = proof
	return d.Quantity, nil
}

func (m *mockDepositRepo) GetAllDeposits(ctx context.Context) ([]*domain.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Deposit
	for _, id := range m.order {
		cp := *m.deposits[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockDepositRepo) DeleteAllDeposits(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := int64(len(m.deposits))
	m.deposits = make(map[string]*domain.Deposit)
	m.order = nil
	m.cleared++
	return n, nil
}

type mockDirectory struct {
	members map[string]*domain.Member
	err     error
}

func (m *mockDirectory) Member(ctx context.Context, userID string) (*domain.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[userID], nil
}

func (m *mockDirectory) Members(ctx context.Context) (map[string]*domain.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members, nil
}

type announcement struct {
	chatID string
	text   string
}

type mockAnnouncer struct {
	known     map[string]bool
	sendErr   error
	announced []announcement
	// onAnnounce runs before a post is recorded.
	onAnnounce func()
}

func (m *mockAnnouncer) Resolve(ctx context.Context, destination string) (string, error) {
	if !m.known[destination] {
		return "", errors.Annotatef(domain.ErrDestinationUnavailable, "group %q", destination)
	}
	return destination, nil
}

func (m *mockAnnouncer) Announce(ctx context.Context, chatID, text string) error {
	if m.onAnnounce != nil {
		m.onAnnounce()
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.announced = append(m.announced, announcement{chatID: chatID, text: text})
	return nil
}

type mockProofStore struct {
	err     error
	saved   []string
	removed []string
}

func (m *mockProofStore) Save(ctx context.Context, userID string, att *domain.Attachment) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	ref := "proofs/" + userID + "/" + att.MessageID + ".jpg"
	m.saved = append(m.saved, ref)
	return ref, nil
}

func (m *mockProofStore) Remove(ctx context.Context, ref string) error {
	m.removed = append(m.removed, ref)
	return nil
}

type mockRooms struct {
	rooms map[string]*domain.Room
}

func (m *mockRooms) GetRoom(ctx context.Context, userID string) (*domain.Room, error) {
	return m.rooms[userID], nil
}

func (m *mockRooms) SaveRoom(ctx context.Context, room *domain.Room) error {
	m.rooms[room.UserID] = room
	return nil
}

type mockRoomCreator struct {
	created []string
	err     error
}

func (m *mockRoomCreator) CreateRoom(ctx context.Context, name, userID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created = append(m.created, name)
	return fmt.Sprintf("%d@g.us", len(m.created)), nil
}

var goals = domain.GoalTable{
	Roles: []domain.RoleGoal{
		{Role: "Gerente", Goal: 1000},
		{Role: "Soldado", Goal: 2000},
	},
	DefaultGoal: 1500,
}

var errDisk = errors.New("disk I/O error")

func image(id, caption string) *domain.Attachment {
	return &domain.Attachment{MessageID: id, MimeType: "image/jpeg", Caption: caption}
}

type fixture struct {
	repo      *mockDepositRepo
	directory *mockDirectory
	proofs    *mockProofStore
	gate      *usecase.WeekGate
	goal      *usecase.ShowGoalUsecase
	deposit   *usecase.RecordDepositUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newMockDepositRepo(),
		directory: &mockDirectory{members: map[string]*domain.Member{
			"userA": {UserID: "userA", Name: "Ana", Roles: []string{"Gerente"}},
			"userB": {UserID: "userB", Name: "Bruno"},
		}},
		proofs: &mockProofStore{},
		gate:   usecase.NewWeekGate(),
	}
	f.goal = usecase.NewShowGoalUsecase(f.repo, f.directory, goals)
	f.deposit = usecase.NewRecordDepositUsecase(f.repo, f.proofs, f.goal, f.gate, metrics.NewCollector(), zaptest.NewLogger(t))
	return f
}
