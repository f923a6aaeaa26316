package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mentorai/tutor/config"
	"mentorai/tutor/llm"
	"mentorai/tutor/notify"
	"mentorai/tutor/sessions"
	"mentorai/tutor/store"
	"mentorai/tutor/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []string
	gate     chan struct{}
	entered  chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	f.messages = append(f.messages, message)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeCompleter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fixture struct {
	ctrl    *Controller
	repo    *sessions.Repository
	backend *store.MemoryBackend
	notices *notify.Buffer
	client  *fakeCompleter
}

// gatedBackend holds every Put until gate is closed.
type gatedBackend struct {
	*store.MemoryBackend
	gate    chan struct{}
	entered chan struct{}
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		MemoryBackend: store.NewMemoryBackend(),
		gate:          make(chan struct{}),
		entered:       make(chan struct{}, 1),
	}
}

func (g *gatedBackend) Put(ctx context.Context, key string, value []byte) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.gate
	return g.MemoryBackend.Put(ctx, key, value)
}

func newFixture(t *testing.T, client *fakeCompleter) fixture {
	t.Helper()
	backend := store.NewMemoryBackend()
	return newFixtureOn(t, client, backend, backend)
}

func newFixtureOn(t *testing.T, client *fakeCompleter, backend store.Backend, mem *store.MemoryBackend) fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	notices := notify.NewBuffer(0)
	repo := sessions.NewRepository(store.NewSessionStore(backend, config.StorageKey),
		sessions.WithNotifier(notices), sessions.WithLogger(log))
	ctrl := NewController(repo, client,
		WithNotifier(notices), WithLogger(log), WithTimeout(time.Second))
	return fixture{ctrl: ctrl, repo: repo, backend: mem, notices: notices, client: client}
}

func TestSendMessage_CreatesSessionWhenNoneActive(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hi there"})

	res, err := f.ctrl.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)

	assert.False(t, res.Failed)
	assert.True(t, res.Stored)
	assert.Equal(t, res.SessionID, f.repo.ActiveID())

	sess, ok := f.repo.Session(res.SessionID)
	require.True(t, ok)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, types.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "Hello", sess.Messages[0].Content)
	assert.Equal(t, types.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, "Hi there", sess.Messages[1].Content)
	assert.NotEqual(t, sess.Messages[0].ID, sess.Messages[1].ID)
	assert.Equal(t, []string{"Hello"}, f.client.calls())
	assert.Zero(t, f.notices.Len())
}

func TestSendMessage_UserMessageVisibleWhileSending(t *testing.T) {
	client := &fakeCompleter{reply: "Hi there", gate: make(chan struct{}), entered: make(chan struct{})}
	f := newFixture(t, client)

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(context.Background(), "Hello")
		done <- res
	}()
	<-client.entered

	active, ok := f.repo.Active()
	require.True(t, ok)
	require.Len(t, active.Messages, 1)
	assert.Equal(t, "Hello", active.Messages[0].Content)
	assert.Equal(t, Sending, f.ctrl.State(active.ID))
	assert.True(t, f.ctrl.Busy())
	assert.True(t, f.ctrl.View().Busy)

	close(client.gate)
	res := <-done

	assert.Equal(t, Idle, f.ctrl.State(res.SessionID))
	assert.False(t, f.ctrl.Busy())
}

func TestSendMessage_TransportErrorAppendsFallback(t *testing.T) {
	client := &fakeCompleter{
		err:     &llm.TransportError{Endpoint: "http://ai", Err: errors.New("connection refused")},
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	f := newFixture(t, client)

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(context.Background(), "Explain recursion")
		done <- res
	}()
	<-client.entered

	before, ok := f.repo.Active()
	require.True(t, ok)
	require.Len(t, before.Messages, 1)

	close(client.gate)
	res := <-done

	assert.True(t, res.Failed)
	assert.ErrorIs(t, res.Err, llm.ErrTransport)

	after, _ := f.repo.Session(before.ID)
	require.Len(t, after.Messages, 2)
	assert.Equal(t, before.Messages[0], after.Messages[0])
	assert.Equal(t, types.RoleAssistant, after.Messages[1].Role)
	assert.Equal(t, config.FallbackReply, after.Messages[1].Content)

	got := f.notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "An error occurred", got[0].Title)
	assert.Equal(t, "Failed to get a response from the AI tutor.", got[0].Description)
	assert.Equal(t, notify.VariantDestructive, got[0].Variant)
}

func TestSendMessage_RequestFailedAppendsFallback(t *testing.T) {
	f := newFixture(t, &fakeCompleter{err: &llm.RequestFailedError{StatusCode: 500, Status: "500 Internal Server Error"}})

	res, err := f.ctrl.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)

	assert.True(t, res.Failed)
	assert.Equal(t, config.FallbackReply, res.Reply.Content)
	sess, _ := f.repo.Session(res.SessionID)
	assert.Len(t, sess.Messages, 2)
}

func TestSendMessage_BlankInputIgnored(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "x"})

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := f.ctrl.SendMessage(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Zero(t, f.repo.Len())
	assert.Empty(t, f.client.calls())
}

func TestSendMessage_ReentrantSendIgnored(t *testing.T) {
	client := &fakeCompleter{reply: "Hi there", gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	f := newFixture(t, client)

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(context.Background(), "Hello")
		done <- res
	}()
	<-client.entered

	_, err := f.ctrl.SendMessage(context.Background(), "Hello again")
	assert.ErrorIs(t, err, ErrBusy)

	close(client.gate)
	res := <-done

	sess, _ := f.repo.Session(res.SessionID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, []string{"Hello"}, client.calls())
}

func TestSendMessage_OtherSessionNotBlocked(t *testing.T) {
	client := &fakeCompleter{reply: "ok", gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	f := newFixture(t, client)
	ctx := context.Background()

	first := f.ctrl.NewChat(ctx)
	done := make(chan SendResult, 2)
	go func() {
		res, _ := f.ctrl.SendMessage(ctx, "one")
		done <- res
	}()
	<-client.entered

	second := f.ctrl.NewChat(ctx)
	go func() {
		res, _ := f.ctrl.SendMessage(ctx, "two")
		done <- res
	}()
	<-client.entered

	assert.Equal(t, Sending, f.ctrl.State(first))
	assert.Equal(t, Sending, f.ctrl.State(second))

	close(client.gate)
	<-done
	<-done

	for _, id := range []string{first, second} {
		sess, _ := f.repo.Session(id)
		assert.Len(t, sess.Messages, 2)
	}
}

func TestSendMessage_SessionDeletedWhileSending(t *testing.T) {
	client := &fakeCompleter{reply: "late", gate: make(chan struct{}), entered: make(chan struct{})}
	f := newFixture(t, client)
	ctx := context.Background()

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(ctx, "Hello")
		done <- res
	}()
	<-client.entered

	id := f.repo.ActiveID()
	require.True(t, f.ctrl.DeleteSession(ctx, id))

	close(client.gate)
	res := <-done

	assert.False(t, res.Stored)
	assert.Zero(t, f.repo.Len(), "a late reply never resurrects a deleted session")
	_, ok, err := f.backend.Get(ctx, config.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSendMessage_SlowSessionWriteDoesNotBlockReads(t *testing.T) {
	backend := newGatedBackend()
	f := newFixtureOn(t, &fakeCompleter{reply: "Hi"}, backend, backend.MemoryBackend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.ctrl.SendMessage(context.Background(), "Hello")
	}()
	<-backend.entered

	read := make(chan View)
	go func() { read <- f.ctrl.View() }()
	select {
	case v := <-read:
		assert.Len(t, v.Sessions, 1)
	case <-time.After(time.Second):
		t.Fatal("View blocked behind the session write")
	}
	assert.Equal(t, Idle, f.ctrl.State("unknown"))
	assert.False(t, f.ctrl.Busy())

	close(backend.gate)
	<-done
	assert.Equal(t, []string{"Hello"}, f.client.calls())
}

func TestSendMessage_SessionDeletedBeforeUserMessage(t *testing.T) {
	backend := newGatedBackend()
	f := newFixtureOn(t, &fakeCompleter{reply: "Hi"}, backend, backend.MemoryBackend)
	ctx := context.Background()

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(ctx, "Hello")
		done <- res
	}()
	<-backend.entered

	id := f.repo.ActiveID()
	require.NotEmpty(t, id)
	deleted := make(chan bool)
	go func() { deleted <- f.ctrl.DeleteSession(ctx, id) }()
	require.Eventually(t, func() bool { return f.repo.Len() == 0 }, time.Second, 5*time.Millisecond)

	close(backend.gate)
	res := <-done
	assert.True(t, <-deleted)

	assert.Equal(t, id, res.SessionID)
	assert.False(t, res.Stored)
	assert.False(t, res.Failed)
	assert.Empty(t, res.Reply.ID, "no reply is produced for a session that is gone")
	assert.Empty(t, f.client.calls(), "the tutor is never asked")
	assert.Zero(t, f.repo.Len())
	assert.Equal(t, Idle, f.ctrl.State(id))
}

func TestSendMessage_CallerCancellationDoesNotAbortReply(t *testing.T) {
	client := &fakeCompleter{reply: "Hi there", gate: make(chan struct{}), entered: make(chan struct{})}
	f := newFixture(t, client)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan SendResult)
	go func() {
		res, _ := f.ctrl.SendMessage(ctx, "Hello")
		done <- res
	}()
	<-client.entered
	cancel()
	close(client.gate)
	res := <-done

	assert.False(t, res.Failed)
	sess, _ := f.repo.Session(res.SessionID)
	assert.Len(t, sess.Messages, 2)
}

func TestSendMessage_TimeoutUsesFallback(t *testing.T) {
	client := &fakeCompleter{gate: make(chan struct{})}
	f := newFixture(t, client)
	f.ctrl.timeout = 20 * time.Millisecond

	res, err := f.ctrl.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)

	assert.True(t, res.Failed)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, config.FallbackReply, res.Reply.Content)
}

func TestSendMessage_MessageIDs(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hi"})
	n := 0
	WithMessageIDs(func() string {
		n++
		return fmt.Sprintf("msg-%d", n)
	})(f.ctrl)

	res, err := f.ctrl.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, "msg-1", res.UserMessage.ID)
	assert.Equal(t, "msg-2", res.Reply.ID)
}

func TestSendMessage_DefaultIDsAreDistinct(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hi"})
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res, err := f.ctrl.SendMessage(ctx, "Hello")
		require.NoError(t, err)
		for _, id := range []string{res.UserMessage.ID, res.Reply.ID} {
			require.False(t, seen[id], "duplicate message id %s", id)
			seen[id] = true
		}
	}
}

func TestDeleteSession_Notices(t *testing.T) {
	f := newFixture(t, &fakeCompleter{})
	ctx := context.Background()
	older := f.ctrl.NewChat(ctx)
	newer := f.ctrl.NewChat(ctx)
	f.ctrl.SelectSession(older)

	require.True(t, f.ctrl.DeleteSession(ctx, older))
	assert.False(t, f.ctrl.DeleteSession(ctx, "ghost"))
	assert.Equal(t, newer, f.repo.ActiveID())

	got := f.notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Chat Deleted", got[0].Title)
	assert.Equal(t, notify.VariantDefault, got[0].Variant)
}

func TestClearAll(t *testing.T) {
	f := newFixture(t, &fakeCompleter{})
	ctx := context.Background()
	f.ctrl.NewChat(ctx)
	f.ctrl.NewChat(ctx)

	f.ctrl.ClearAll(ctx)

	v := f.ctrl.View()
	assert.Empty(t, v.Sessions)
	assert.Empty(t, v.ActiveID)
	assert.Nil(t, v.Active)
	_, ok, _ := f.backend.Get(ctx, config.StorageKey)
	assert.False(t, ok)

	got := f.notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "All Chats Cleared", got[0].Title)
	assert.Equal(t, "Your chat history has been wiped.", got[0].Description)
}

func TestSummary(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hi"})
	ctx := context.Background()
	first := f.ctrl.NewChat(ctx)
	_, err := f.ctrl.SendMessage(ctx, "Hello")
	require.NoError(t, err)
	second := f.ctrl.NewChat(ctx)

	sum, ok := f.ctrl.Summary(first)
	require.True(t, ok)
	assert.Equal(t, first, sum.ID)
	assert.Equal(t, 2, sum.MessageCount)
	assert.False(t, sum.Active)
	assert.False(t, sum.Busy)

	sum, ok = f.ctrl.Summary(second)
	require.True(t, ok)
	assert.True(t, sum.Active)
	assert.Equal(t, config.PlaceholderTitle, sum.Title)
	assert.False(t, sum.CreatedAt.IsZero())

	_, ok = f.ctrl.Summary("ghost")
	assert.False(t, ok)
}

func TestView(t *testing.T) {
	f := newFixture(t, &fakeCompleter{reply: "Hi"})
	ctx := context.Background()
	older := f.ctrl.NewChat(ctx)
	_, err := f.ctrl.SendMessage(ctx, "Hello")
	require.NoError(t, err)
	newer := f.ctrl.NewChat(ctx)

	v := f.ctrl.View()
	require.Len(t, v.Sessions, 2)
	assert.Equal(t, newer, v.Sessions[0].ID)
	assert.True(t, v.Sessions[0].Active)
	assert.Equal(t, older, v.Sessions[1].ID)
	assert.Equal(t, 2, v.Sessions[1].MessageCount)
	require.NotNil(t, v.Active)
	assert.Equal(t, newer, v.Active.ID)

	f.ctrl.SelectSession("ghost")
	v = f.ctrl.View()
	assert.Nil(t, v.Active, "a dangling pointer renders as no active chat")
	assert.False(t, v.Busy)
}
