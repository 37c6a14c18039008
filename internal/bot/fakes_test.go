package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

const (
	testGuildID     = "900000000000000000"
	testCategoryID  = "910000000000000000"
	testOwnerID     = "920000000000000000"
	testRequester   = "100000000000000001"
	testCounterpart = "200000000000000002"
	testRestricted  = "300000000000000003"
)

// permissionGrant records one ChannelPermissionSet call.
type permissionGrant struct {
	channelID  string
	targetID   string
	targetType discordgo.PermissionOverwriteType
	allow      int64
	deny       int64
}

// fakeSession is an in-memory Session. Messages sent to a channel are kept
// so history scans see them.
type fakeSession struct {
	mu sync.Mutex

	nextID     int
	channels   map[string]*discordgo.Channel
	created    []discordgo.GuildChannelCreateData
	deleted    []string
	messages   map[string][]*discordgo.Message
	sent       []*discordgo.MessageSend
	edits      []*discordgo.MessageEdit
	msgDeletes []string
	grants     []permissionGrant
	responses  []*discordgo.InteractionResponse
	members    map[string]bool

	memberLookups int

	guildErr         error
	createErr        error
	channelDeleteErr error
	sendErr          error
	grantErr         error
	msgDeleteErr     error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channels: make(map[string]*discordgo.Channel),
		messages: make(map[string][]*discordgo.Message),
		members:  map[string]bool{testRequester: true, testCounterpart: true, testRestricted: true},
	}
}

func (f *fakeSession) id() string {
	f.nextID++
	return fmt.Sprintf("%018d", 500000000000000000+f.nextID)
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &discordgo.Channel{ID: f.id(), GuildID: guildID, Name: data.Name, ParentID: data.ParentID, Type: data.Type}
	f.channels[ch.ID] = ch
	f.created = append(f.created, data)
	return ch, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID)
	if f.channelDeleteErr != nil {
		return nil, f.channelDeleteErr
	}
	ch := f.channels[channelID]
	delete(f.channels, channelID)
	return ch, nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found, Unknown Channel")
	}
	return ch, nil
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	f.grants = append(f.grants, permissionGrant{channelID, targetID, targetType, allow, deny})
	return nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	m := &discordgo.Message{ID: f.id(), ChannelID: channelID, Content: data.Content, Embeds: data.Embeds}
	f.messages[channelID] = append(f.messages[channelID], m)
	f.sent = append(f.sent, data)
	return m, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.msgDeleteErr != nil {
		return f.msgDeleteErr
	}
	f.msgDeletes = append(f.msgDeletes, messageID)
	kept := f.messages[channelID][:0]
	for _, m := range f.messages[channelID] {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	f.messages[channelID] = kept
	return nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.messages[channelID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*discordgo.Message, len(all))
	copy(out, all)
	return out, nil
}

func (f *fakeSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	return &discordgo.Guild{ID: guildID}, nil
}

func (f *fakeSession) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberLookups++
	if !f.members[userID] {
		return nil, errors.New("HTTP 404 Not Found, Unknown Member")
	}
	return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID}}, nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

// addChannel registers an existing channel, as if created before a restart.
func (f *fakeSession) addChannel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[id] = &discordgo.Channel{ID: id, GuildID: testGuildID}
}

func (f *fakeSession) set(fn func(f *fakeSession)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// sentTo returns the messages currently in a channel's history.
func (f *fakeSession) sentTo(channelID string) []*discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*discordgo.Message, len(f.messages[channelID]))
	copy(out, f.messages[channelID])
	return out
}

// countEmbeds counts messages in a channel whose first embed matches.
func (f *fakeSession) countEmbeds(channelID string, match func(e *discordgo.MessageEmbed) bool) int {
	n := 0
	for _, m := range f.sentTo(channelID) {
		if len(m.Embeds) > 0 && match(m.Embeds[0]) {
			n++
		}
	}
	return n
}

// countSentEmbeds counts every message ever sent whose first embed matches,
// including messages deleted since.
func (f *fakeSession) countSentEmbeds(match func(e *discordgo.MessageEmbed) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if len(m.Embeds) > 0 && match(m.Embeds[0]) {
			n++
		}
	}
	return n
}

func (f *fakeSession) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeSession) interactionResponses() []*discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.InteractionResponse(nil), f.responses...)
}

func (f *fakeSession) permissionGrants() []permissionGrant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]permissionGrant(nil), f.grants...)
}

// mockStore is an in-memory store.Store safe for concurrent collectors.
type mockStore struct {
	mu      sync.Mutex
	tickets map[string]*model.Ticket

	createErr    error
	listErr      error
	getErr       error
	deleteErr    error
	userAddedErr error
}

func newMockStore() *mockStore {
	return &mockStore{tickets: make(map[string]*model.Ticket)}
}

func (m *mockStore) CreateTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *mockStore) GetTicket(_ context.Context, id string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	t, ok := m.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) GetTicketByChannel(_ context.Context, channelID string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.ChannelID == channelID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListTickets(_ context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*model.Ticket
	for _, t := range m.tickets {
		if filter.Pending != nil && t.UserAddPending != *filter.Pending {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) MarkWarned(_ context.Context, id string, w model.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Warned = t.Warned.With(w)
	return nil
}

func (m *mockStore) MarkUserAdded(_ context.Context, id, counterpartyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userAddedErr != nil {
		return m.userAddedErr
	}
	t, ok := m.tickets[id]
	if !ok || !t.UserAddPending {
		return sql.ErrNoRows
	}
	t.UserAddPending = false
	t.CounterpartyID = counterpartyID
	return nil
}

func (m *mockStore) DeleteTicketByChannel(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for id, t := range m.tickets {
		if t.ChannelID == channelID {
			delete(m.tickets, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) put(t *model.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tickets[t.ID] = &cp
}

func (m *mockStore) get(id string) (*model.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

// recordingPublisher captures published topics.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

type testEnv struct {
	bot     *Bot
	session *fakeSession
	store   *mockStore
	events  *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		session: newFakeSession(),
		store:   newMockStore(),
		events:  &recordingPublisher{},
	}
	env.bot = New(env.session, env.store, Options{
		GuildID:    testGuildID,
		CategoryID: testCategoryID,
		OwnerID:    testOwnerID,
		Restricted: NewRestrictedSet([]string{testRestricted}),
		CloseDelay: 20 * time.Millisecond,
		Publisher:  env.events,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(env.bot.Close)
	return env
}

// pendingTicket stores a pending ticket whose channel exists in the session.
func (e *testEnv) pendingTicket(id, channelID string) *model.Ticket {
	e.session.addChannel(channelID)
	t := &model.Ticket{
		ID:             id,
		RequesterID:    testRequester,
		Currency:       model.CurrencyBitcoin,
		ChannelID:      channelID,
		SecureToken:    "ABCDEFGHIJKLMNOP",
		UserAddPending: true,
	}
	e.store.put(t)
	return t
}

// say delivers a message from author in channelID through the gateway path.
func (e *testEnv) say(channelID, authorID, content string) {
	e.bot.handleMessage(&discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func selectInteraction(userID, customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "interaction-1",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuildID,
		ChannelID: "700000000000000000",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Message:   &discordgo.Message{ID: "710000000000000000", ChannelID: "700000000000000000"},
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.SelectMenuComponent,
			Values:        values,
		},
	}
}

func closeInteraction(userID, channelID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "interaction-2",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuildID,
		ChannelID: channelID,
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      closeButtonID,
			ComponentType: discordgo.ButtonComponent,
		},
	}
}
