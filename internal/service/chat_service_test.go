package service

import (
	"context"
	"mime/multipart"
	"sort"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Fakes ---

type fakeChatRepo struct {
	messages  map[uuid.UUID]*model.ChatMessage
	reactions []model.ChatReaction
	seq       time.Time
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		messages: make(map[uuid.UUID]*model.ChatMessage),
		seq:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeChatRepo) CreateMessage(_ context.Context, msg *model.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	f.seq = f.seq.Add(time.Second)
	msg.CreatedAt = f.seq
	cp := *msg
	f.messages[msg.ID] = &cp
	return nil
}

func (f *fakeChatRepo) GetMessage(_ context.Context, id uuid.UUID) (*model.ChatMessage, error) {
	msg, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *msg
	cp.Reactions = nil
	for _, r := range f.reactions {
		if r.MessageID == id {
			cp.Reactions = append(cp.Reactions, r)
		}
	}
	return &cp, nil
}

func (f *fakeChatRepo) ListMessages(_ context.Context, projectID uuid.UUID, before *model.ChatMessage, limit int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.ProjectID != projectID {
			continue
		}
		if before != nil && !m.CreatedAt.Before(before.CreatedAt) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeChatRepo) AddReaction(_ context.Context, reaction *model.ChatReaction) error {
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	f.reactions = append(f.reactions, *reaction)
	return nil
}

func (f *fakeChatRepo) RemoveReaction(_ context.Context, messageID, userID uuid.UUID, emoji string) error {
	kept := f.reactions[:0]
	for _, r := range f.reactions {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			continue
		}
		kept = append(kept, r)
	}
	f.reactions = kept
	return nil
}

func (f *fakeChatRepo) HasReaction(_ context.Context, messageID, userID uuid.UUID, emoji string) (bool, error) {
	for _, r := range f.reactions {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			return true, nil
		}
	}
	return false, nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*model.Project
}

func newFakeProjectRepo(projects ...*model.Project) *fakeProjectRepo {
	f := &fakeProjectRepo{projects: make(map[uuid.UUID]*model.Project)}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeProjectRepo) List(_ context.Context, _, _ int) ([]model.Project, int64, error) {
	var out []model.Project
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProjectRepo) ListHighlighted(_ context.Context) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.Highlighted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, project *model.Project) error {
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

type fakeFileStorage struct {
	stored []string
}

func (f *fakeFileStorage) Store(file *multipart.FileHeader) (string, error) {
	url := "/uploads/" + file.Filename
	f.stored = append(f.stored, url)
	return url, nil
}

type recordingBroadcaster struct {
	projectIDs []uuid.UUID
	payloads   [][]byte
}

func (b *recordingBroadcaster) BroadcastToProject(projectID uuid.UUID, payload []byte) {
	b.projectIDs = append(b.projectIDs, projectID)
	b.payloads = append(b.payloads, payload)
}

// --- Fixtures ---

type chatServiceFixture struct {
	svc     ChatService
	chats   *fakeChatRepo
	hub     *recordingBroadcaster
	project *model.Project
	sender  *model.User
}

func newChatServiceFixture(t *testing.T) *chatServiceFixture {
	t.Helper()

	sender := &model.User{ID: uuid.New(), FullName: "Dana Customer", Email: "dana@example.com", Role: model.RoleCustomer, Active: true}
	project := &model.Project{ID: uuid.New(), Name: "Booking Platform", Status: model.ProjectInDevelopment}

	chats := newFakeChatRepo()
	hub := &recordingBroadcaster{}

	svc := NewChatService(
		chats,
		newFakeProjectRepo(project),
		newFakeUserRepo(sender),
		&fakeFileStorage{},
		hub,
		passthroughTx{},
	)

	return &chatServiceFixture{svc: svc, chats: chats, hub: hub, project: project, sender: sender}
}

func (f *chatServiceFixture) send(t *testing.T, text string) ChatMessageResponse {
	t.Helper()
	resp, err := f.svc.SendMessage(context.Background(), f.project.ID, f.sender.ID, text, nil)
	require.NoError(t, err)
	return resp
}

// --- Tests ---

func TestSendMessage_StoresAndBroadcasts(t *testing.T) {
	f := newChatServiceFixture(t)

	resp := f.send(t, "hello team")

	require.Equal(t, f.project.ID.String(), resp.ProjectID)
	require.Equal(t, f.sender.ID.String(), resp.SenderID)
	require.Equal(t, "Dana Customer", resp.SenderName)
	require.Equal(t, "hello team", resp.Message)

	require.Len(t, f.hub.projectIDs, 1)
	require.Equal(t, f.project.ID, f.hub.projectIDs[0])
	require.Contains(t, string(f.hub.payloads[0]), "hello team")
}

func TestSendMessage_UnknownProject(t *testing.T) {
	f := newChatServiceFixture(t)

	_, err := f.svc.SendMessage(context.Background(), uuid.New(), f.sender.ID, "hi", nil)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, f.hub.payloads)
}

func TestMessages_CursorPaging(t *testing.T) {
	f := newChatServiceFixture(t)

	first := f.send(t, "one")
	second := f.send(t, "two")
	third := f.send(t, "three")

	// newest first without a cursor
	page, err := f.svc.Messages(context.Background(), f.project.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, third.ID, page[0].ID)
	require.Equal(t, second.ID, page[1].ID)

	// cursor at the oldest message of the first page
	before := uuid.MustParse(second.ID)
	page, err = f.svc.Messages(context.Background(), f.project.ID, &before, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, first.ID, page[0].ID)
}

func TestMessages_UnknownCursor(t *testing.T) {
	f := newChatServiceFixture(t)
	f.send(t, "one")

	before := uuid.New()
	_, err := f.svc.Messages(context.Background(), f.project.ID, &before, 10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddReaction_IdempotentPerEmoji(t *testing.T) {
	f := newChatServiceFixture(t)
	msg := f.send(t, "react to me")
	messageID := uuid.MustParse(msg.ID)

	require.NoError(t, f.svc.AddReaction(context.Background(), messageID, f.sender.ID, "👍"))
	require.NoError(t, f.svc.AddReaction(context.Background(), messageID, f.sender.ID, "👍"))
	require.Len(t, f.chats.reactions, 1)

	// a different emoji from the same user is a separate reaction
	require.NoError(t, f.svc.AddReaction(context.Background(), messageID, f.sender.ID, "🎉"))
	require.Len(t, f.chats.reactions, 2)
}

func TestRemoveReaction(t *testing.T) {
	f := newChatServiceFixture(t)
	msg := f.send(t, "react to me")
	messageID := uuid.MustParse(msg.ID)

	require.NoError(t, f.svc.AddReaction(context.Background(), messageID, f.sender.ID, "👍"))
	require.NoError(t, f.svc.RemoveReaction(context.Background(), messageID, f.sender.ID, "👍"))
	require.Empty(t, f.chats.reactions)
}

func TestAddReaction_UnknownMessage(t *testing.T) {
	f := newChatServiceFixture(t)

	err := f.svc.AddReaction(context.Background(), uuid.New(), f.sender.ID, "👍")
	require.ErrorIs(t, err, ErrNotFound)
}
