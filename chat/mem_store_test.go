package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"teamhub/apperr"
	"teamhub/models"
)

// In-memory stores mirroring the persistence gateway contract, including
// the version-guarded save semantics.

type memTeams struct {
	mu   sync.Mutex
	byID map[uint]models.Team
	seq  uint
}

func newMemTeams() *memTeams {
	return &memTeams{byID: make(map[uint]models.Team)}
}

func cloneTeam(t models.Team) models.Team {
	cp := t
	cp.Members = append(models.TeamMemberList(nil), t.Members...)
	return cp
}

func (s *memTeams) FindByID(_ context.Context, id uint) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || !t.IsActive {
		return nil, apperr.ErrNotFound
	}
	cp := cloneTeam(t)
	return &cp, nil
}

func (s *memTeams) FindByUser(_ context.Context, userID uint) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Team
	for _, t := range s.byID {
		if t.IsActive && t.Members.Has(userID) {
			out = append(out, cloneTeam(t))
		}
	}
	return out, nil
}

func (s *memTeams) Create(_ context.Context, t *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t.ID = s.seq
	t.CreatedAt = time.Now()
	s.byID[t.ID] = cloneTeam(*t)
	return nil
}

func (s *memTeams) Save(_ context.Context, t *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[t.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if cur.Version != t.Version {
		return apperr.ErrConflict
	}
	t.Version++
	s.byID[t.ID] = cloneTeam(*t)
	return nil
}

func (s *memTeams) SoftDelete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || !t.IsActive {
		return apperr.ErrNotFound
	}
	t.IsActive = false
	s.byID[id] = t
	return nil
}

type memChannels struct {
	mu   sync.Mutex
	byID map[uint]models.Channel
	seq  uint
}

func newMemChannels() *memChannels {
	return &memChannels{byID: make(map[uint]models.Channel)}
}

func cloneChannel(ch models.Channel) models.Channel {
	cp := ch
	cp.Members = append(models.ChannelMemberList(nil), ch.Members...)
	return cp
}

func (s *memChannels) FindByID(_ context.Context, id uint) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.byID[id]
	if !ok || !ch.IsActive {
		return nil, apperr.ErrNotFound
	}
	cp := cloneChannel(ch)
	return &cp, nil
}

func (s *memChannels) FindForUser(_ context.Context, userID uint) ([]models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Channel
	for _, ch := range s.byID {
		if ch.IsActive && (ch.Type == models.ChannelPublic || ch.CreatedBy == userID || ch.Members.Has(userID)) {
			out = append(out, cloneChannel(ch))
		}
	}
	return out, nil
}

func (s *memChannels) FindByTeam(_ context.Context, teamID uint) ([]models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Channel
	for _, ch := range s.byID {
		if ch.IsActive && ch.TeamID != nil && *ch.TeamID == teamID {
			out = append(out, cloneChannel(ch))
		}
	}
	return out, nil
}

func (s *memChannels) Create(_ context.Context, ch *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ch.ID = s.seq
	ch.CreatedAt = time.Now()
	s.byID[ch.ID] = cloneChannel(*ch)
	return nil
}

func (s *memChannels) Save(_ context.Context, ch *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[ch.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if cur.Version != ch.Version {
		return apperr.ErrConflict
	}
	ch.Version++
	s.byID[ch.ID] = cloneChannel(*ch)
	return nil
}

func (s *memChannels) SoftDelete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.byID[id]
	if !ok || !ch.IsActive {
		return apperr.ErrNotFound
	}
	ch.IsActive = false
	s.byID[id] = ch
	return nil
}

type memMessages struct {
	mu   sync.Mutex
	byID map[uint]models.Message
	seq  uint
	base time.Time
}

func newMemMessages() *memMessages {
	return &memMessages{byID: make(map[uint]models.Message), base: time.Now().Add(-time.Hour)}
}

func cloneMessage(m models.Message) models.Message {
	cp := m
	cp.Reactions = append(models.ReactionList(nil), m.Reactions...)
	cp.Attachments = append(models.AttachmentList(nil), m.Attachments...)
	return cp
}

func (s *memMessages) FindByID(_ context.Context, id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := cloneMessage(m)
	return &cp, nil
}

func (s *memMessages) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m.ID = s.seq
	// Deterministic, strictly increasing timestamps
	m.CreatedAt = s.base.Add(time.Duration(s.seq) * time.Second)
	s.byID[m.ID] = cloneMessage(*m)
	return nil
}

func (s *memMessages) Save(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[m.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if cur.Version != m.Version {
		return apperr.ErrConflict
	}
	m.Version++
	s.byID[m.ID] = cloneMessage(*m)
	return nil
}

func (s *memMessages) ListByChannel(_ context.Context, channelID uint, limit int, beforeID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.byID {
		if m.ChannelID != channelID || m.ParentID != nil {
			continue
		}
		if beforeID > 0 && m.ID >= beforeID {
			continue
		}
		out = append(out, cloneMessage(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memMessages) ListThread(_ context.Context, parentID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.byID {
		if m.ParentID != nil && *m.ParentID == parentID && !m.IsDeleted {
			out = append(out, cloneMessage(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// recordingPublisher captures broadcasts for assertions.

type broadcast struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast
}

func (p *recordingPublisher) Broadcast(room, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, broadcast{Room: room, Event: event, Payload: payload})
}

func (p *recordingPublisher) byEvent(event string) []broadcast {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []broadcast
	for _, b := range p.events {
		if b.Event == event {
			out = append(out, b)
		}
	}
	return out
}

// recordingNotifier captures targeted notifications.

type notification struct {
	Kind   string
	UserID uint
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) MessagePosted(ch *models.Channel, msg *models.Message) {
	n.record("message", msg.UserID)
}

func (n *recordingNotifier) MemberAdded(team *models.Team, member models.TeamMember) {
	n.record("added", member.UserID)
}

func (n *recordingNotifier) MemberRemoved(team *models.Team, userID uint) {
	n.record("removed", userID)
}

func (n *recordingNotifier) RoleChanged(team *models.Team, userID uint, role string) {
	n.record("roleChanged", userID)
}

func (n *recordingNotifier) OwnerTransferred(team *models.Team, oldOwnerID, newOwnerID uint) {
	n.record("ownerTransferred", newOwnerID)
}

func (n *recordingNotifier) record(kind string, userID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{Kind: kind, UserID: userID})
}

func (n *recordingNotifier) byKind(kind string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, c := range n.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
