package wa

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

const membersTTL = time.Minute

// Role names granted by the facção group itself.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
)

// Gateway adapts the WhatsApp client to the bot's domain interfaces.
type Gateway struct {
	svc        *Service
	guild      types.JID
	goals      domain.GoalTable
	resolveLID func(ctx context.Context, lid string) string

	mu        sync.Mutex
	members   map[string]*domain.Member
	fetchedAt time.Time
}

func NewGateway(svc *Service, guildID string, goals domain.GoalTable, resolveLID func(ctx context.Context, lid string) string) (*Gateway, error) {
	guild, err := types.ParseJID(guildID)
	if err != nil {
		return nil, errors.Annotatef(err, "facção group %q", guildID)
	}
	if guild.Server != types.GroupServer {
		return nil, errors.NotValidf("facção group %q", guildID)
	}
	return &Gateway{svc: svc, guild: guild, goals: goals, resolveLID: resolveLID}, nil
}

// UserID returns the stable user key for jid, resolving LIDs to phone numbers.
func (g *Gateway) UserID(ctx context.Context, jid types.JID) string {
	if jid.Server == types.HiddenUserServer || jid.Server == types.DefaultUserServer && len(jid.User) > 15 {
		return g.resolveLID(ctx, jid.User)
	}
	return jid.User
}

func (g *Gateway) client() (*whatsmeow.Client, error) {
	c := g.svc.GetClient()
	if c == nil || !c.IsConnected() {
		return nil, errors.New("whatsapp client not connected")
	}
	return c, nil
}

// Resolve implements domain.Announcer.
func (g *Gateway) Resolve(ctx context.Context, destination string) (string, error) {
	if destination == "" {
		return "", errors.Annotate(domain.ErrDestinationUnavailable, "no destination configured")
	}
	jid, err := types.ParseJID(destination)
	if err != nil {
		return "", unavailable(errors.Annotatef(err, "destination %q", destination))
	}
	c, err := g.client()
	if err != nil {
		return "", unavailable(errors.Annotatef(err, "destination %q", destination))
	}
	if jid.Server == types.GroupServer {
		if _, err := c.GetGroupInfo(ctx, jid); err != nil {
			return "", unavailable(errors.Annotatef(err, "group %q", destination))
		}
	}
	return jid.String(), nil
}

func unavailable(err error) error {
	return errors.WithType(err, domain.ErrDestinationUnavailable)
}

// Announce implements domain.Announcer.
func (g *Gateway) Announce(ctx context.Context, chatID, text string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return errors.Annotatef(err, "chat %q", chatID)
	}
	return errors.Trace(g.Send(ctx, jid, text))
}

// Send posts a plain text message.
func (g *Gateway) Send(ctx context.Context, to types.JID, text string) error {
	c, err := g.client()
	if err != nil {
		return err
	}
	_, err = c.SendMessage(ctx, to, &waE2E.Message{Conversation: &text})
	return errors.Annotatef(err, "sending to %s", to)
}

// Member implements domain.MemberDirectory.
func (g *Gateway) Member(ctx context.Context, userID string) (*domain.Member, error) {
	members, err := g.cachedMembers(ctx)
	if err != nil {
		return nil, err
	}
	return members[userID], nil
}

// Members implements domain.MemberDirectory. It always reads fresh group info.
func (g *Gateway) Members(ctx context.Context) (map[string]*domain.Member, error) {
	return g.fetchMembers(ctx)
}

func (g *Gateway) cachedMembers(ctx context.Context) (map[string]*domain.Member, error) {
	g.mu.Lock()
	if g.members != nil && time.Since(g.fetchedAt) < membersTTL {
		m := g.members
		g.mu.Unlock()
		return m, nil
	}
	g.mu.Unlock()
	return g.fetchMembers(ctx)
}

func (g *Gateway) fetchMembers(ctx context.Context) (map[string]*domain.Member, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}
	info, err := c.GetGroupInfo(ctx, g.guild)
	if err != nil {
		return nil, errors.Annotatef(err, "facção group %s", g.guild)
	}

	members := make(map[string]*domain.Member, len(info.Participants))
	for _, p := range info.Participants {
		var id string
		if p.JID.Server == types.HiddenUserServer && !p.PhoneNumber.IsEmpty() {
			id = p.PhoneNumber.User
		} else {
			id = g.UserID(ctx, p.JID)
		}
		members[id] = &domain.Member{
			UserID: id,
			Name:   p.DisplayName,
			Roles:  g.roles(id, p.IsSuperAdmin, p.IsAdmin),
		}
	}

	g.mu.Lock()
	g.members = members
	g.fetchedAt = time.Now()
	g.mu.Unlock()
	return members, nil
}

func (g *Gateway) roles(userID string, superAdmin, admin bool) []string {
	roles := g.goals.RosterRoles(userID)
	if superAdmin {
		roles = append(roles, RoleSuperAdmin)
	}
	if admin {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// CreateRoom implements domain.RoomCreator.
func (g *Gateway) CreateRoom(ctx context.Context, name, userID string) (string, error) {
	c, err := g.client()
	if err != nil {
		return "", err
	}
	info, err := c.CreateGroup(ctx, whatsmeow.ReqCreateGroup{
		Name:         name,
		Participants: []types.JID{types.NewJID(userID, types.DefaultUserServer)},
	})
	if err != nil {
		return "", errors.Trace(err)
	}
	return info.JID.String(), nil
}

// Accepts reports whether the bot should handle messages in chat from
// userID: anything in the facção group, and elsewhere only from its members.
func (g *Gateway) Accepts(ctx context.Context, chat types.JID, userID string) bool {
	if chat == g.guild {
		return true
	}
	m, err := g.Member(ctx, userID)
	return err == nil && m != nil
}

// Message converts a whatsmeow event into the bot's inbound message.
// It returns false for events carrying neither text nor an image.
func (g *Gateway) Message(ctx context.Context, evt *events.Message) (domain.IncomingMessage, bool) {
	msg := domain.IncomingMessage{
		ChatID: evt.Info.Chat.String(),
		UserID: g.UserID(ctx, evt.Info.Sender),
		Name:   evt.Info.PushName,
	}
	if msg.Name == "" {
		msg.Name = "Unknown"
	}

	m := evt.Message
	switch {
	case m.GetConversation() != "":
		msg.Text = m.GetConversation()
	case m.GetExtendedTextMessage().GetText() != "":
		msg.Text = m.GetExtendedTextMessage().GetText()
	}

	if img := m.GetImageMessage(); img != nil {
		msg.Text = img.GetCaption()
		msg.Attachment = &domain.Attachment{
			MessageID: string(evt.Info.ID),
			MimeType:  img.GetMimetype(),
			Caption:   img.GetCaption(),
			Download: func(ctx context.Context) ([]byte, error) {
				c, err := g.client()
				if err != nil {
					return nil, err
				}
				return c.Download(ctx, img)
			},
		}
	}

	return msg, msg.Text != "" || msg.Attachment != nil
}
