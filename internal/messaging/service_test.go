package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/models"
	"github.com/Kushagra128/LangBridge/internal/realtime"
	"github.com/Kushagra128/LangBridge/internal/store"
	"github.com/Kushagra128/LangBridge/internal/translate"
)

const (
	userA = "0192f0a0-0000-7000-8000-00000000000a"
	userB = "0192f0a0-0000-7000-8000-00000000000b"
	userC = "0192f0a0-0000-7000-8000-00000000000c"
)

// dictOracle translates from a fixed table and counts calls.
type dictOracle struct {
	calls atomic.Int32
	dict  map[string]string
	err   error
}

func (o *dictOracle) Translate(_ context.Context, text, targetLang, _ string) (string, error) {
	o.calls.Add(1)
	if o.err != nil {
		return "", o.err
	}
	return o.dict[targetLang+":"+text], nil
}

// recordingConn is a realtime.Conn that keeps what it was sent.
type recordingConn struct {
	mu     sync.Mutex
	events []models.Event
}

func (c *recordingConn) Send(evt models.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Message
	for _, evt := range c.events {
		if evt.Name == models.EventNewMessage {
			out = append(out, evt.Data.(models.Message))
		}
	}
	return out
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       *Service
	store     *store.MemoryStore
	hub       *realtime.Hub
	oracle    *dictOracle
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemoryStore()
	for _, u := range []models.User{
		{ID: userA, FullName: "A", Language: "en"},
		{ID: userB, FullName: "B", Language: "es"},
		{ID: userC, FullName: "C", Language: "en"},
	} {
		u := u
		if err := st.CreateUser(ctx, &u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	oracle := &dictOracle{dict: map[string]string{"es:Hello": "Hola"}}
	hub := realtime.NewHub(realtime.NewRegistry(), zerolog.Nop())
	pub := &recordingPublisher{}
	gate := translate.NewGate(oracle, 100*time.Millisecond, zerolog.Nop())

	return &fixture{
		svc:       NewService(st, gate, hub, pub, zerolog.Nop()),
		store:     st,
		hub:       hub,
		oracle:    oracle,
		publisher: pub,
	}
}

func TestSendTranslatesForOnlineRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "Hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if msg.Text != "Hello" || msg.Language != "en" {
		t.Errorf("sender response = %+v, want original text in en", msg)
	}

	pushed := bConn.messages()
	if len(pushed) != 1 {
		t.Fatalf("recipient got %d pushes, want 1", len(pushed))
	}
	if pushed[0].Text != "Hola" {
		t.Errorf("pushed text = %q, want Hola", pushed[0].Text)
	}
	if pushed[0].ID != msg.ID {
		t.Error("pushed copy should carry the stored message id")
	}

	stored, err := f.store.ListConversation(ctx, userA, userB)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d messages, want 1", len(stored))
	}
	got := stored[0]
	if got.SenderID != userA || got.ReceiverID != userB || got.Text != "Hello" || got.Language != "en" {
		t.Errorf("stored record = %+v", got)
	}

	if len(f.publisher.keys) != 1 || f.publisher.keys[0] != "message.created" {
		t.Errorf("published %v, want [message.created]", f.publisher.keys)
	}
}

func TestSendToOfflineRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "Hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Text != "Hello" {
		t.Errorf("response text = %q", msg.Text)
	}
	if n := f.oracle.calls.Load(); n != 0 {
		t.Errorf("oracle called %d times for an offline recipient", n)
	}

	// B comes back later and reads history: original text, no retroactive translation
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	history, err := f.svc.ListConversation(ctx, userB, userA)
	if err != nil {
		t.Fatalf("ListConversation: %v", err)
	}
	if len(history) != 1 || history[0].Text != "Hello" {
		t.Errorf("history = %+v, want original Hello", history)
	}
	if len(bConn.messages()) != 0 {
		t.Error("no push should happen on reconnect")
	}
}

func TestSendSameLanguageSkipsOracle(t *testing.T) {
	f := newFixture(t)
	cConn := &recordingConn{}
	f.hub.Connect(userC, cConn)

	if _, err := f.svc.Send(context.Background(), userA, userC, SendInput{Text: "Hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n := f.oracle.calls.Load(); n != 0 {
		t.Errorf("oracle called %d times, want 0", n)
	}
	if pushed := cConn.messages(); len(pushed) != 1 || pushed[0].Text != "Hello" {
		t.Errorf("pushed = %+v", pushed)
	}
}

func TestSendImageOnlySkipsOracle(t *testing.T) {
	f := newFixture(t)
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	msg, err := f.svc.Send(context.Background(), userA, userB, SendInput{Image: "https://img.example.com/cat.png"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Image == "" {
		t.Error("image not stored")
	}
	if n := f.oracle.calls.Load(); n != 0 {
		t.Errorf("oracle called %d times, want 0", n)
	}
	if len(bConn.messages()) != 1 {
		t.Error("image message should still be pushed")
	}
}

func TestSendOracleFailureStillDelivers(t *testing.T) {
	f := newFixture(t)
	f.oracle.err = errors.New("service unavailable")
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	msg, err := f.svc.Send(context.Background(), userA, userB, SendInput{Text: "Hello"})
	if err != nil {
		t.Fatalf("Send should succeed when translation fails: %v", err)
	}
	if msg.Text != "Hello" {
		t.Errorf("response text = %q", msg.Text)
	}
	if pushed := bConn.messages(); len(pushed) != 1 || pushed[0].Text != "Hello" {
		t.Errorf("pushed = %+v, want original text", pushed)
	}
	if n := f.oracle.calls.Load(); n != 1 {
		t.Errorf("oracle called %d times, want exactly 1", n)
	}
}

func TestSendEmptyMessageRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, userA, userB, SendInput{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	n, _ := f.store.CountMessages(ctx)
	if n != 0 {
		t.Errorf("%d messages stored, want 0", n)
	}
}

func TestSendUnknownRecipient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), userA, "0192f0a0-0000-7000-8000-0000000000ff", SendInput{Text: "hi"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSendExplicitLanguageOverridesProfile(t *testing.T) {
	f := newFixture(t)

	msg, err := f.svc.Send(context.Background(), userA, userB, SendInput{Text: "Bonjour", Language: "fr-CA"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Language != "fr" {
		t.Errorf("language = %q, want fr", msg.Language)
	}
}

func TestConversationKeepsCreationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []struct{ from, to, text string }{
		{userA, userB, "first"},
		{userB, userA, "second"},
		{userA, userB, "third"},
	} {
		if _, err := f.svc.Send(ctx, s.from, s.to, SendInput{Text: s.text}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	history, err := f.svc.ListConversation(ctx, userA, userB)
	if err != nil {
		t.Fatalf("ListConversation: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if history[i].Text != want {
			t.Errorf("history[%d] = %q, want %q", i, history[i].Text, want)
		}
	}
}

func TestDeleteMessageBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "oops"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := f.svc.DeleteMessage(ctx, userA, msg.ID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if _, err := f.store.GetMessage(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	if err := f.svc.DeleteMessage(ctx, userA, msg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
	if got := f.publisher.keys[len(f.publisher.keys)-1]; got != "message.deleted" {
		t.Errorf("last published = %q, want message.deleted", got)
	}
}

func TestDeleteMessageByOtherIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "mine"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// the recipient does not own the message either
	for _, caller := range []string{userB, userC} {
		if err := f.svc.DeleteMessage(ctx, caller, msg.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("delete by %s: err = %v, want ErrForbidden", caller, err)
		}
	}

	if _, err := f.store.GetMessage(ctx, msg.ID); err != nil {
		t.Errorf("record should be intact: %v", err)
	}
}

var errDiskFull = errors.New("disk full")

// failingStore wraps a MemoryStore and fails the switched-on operations.
type failingStore struct {
	*store.MemoryStore
	failCreate, failGet, failDelete bool
}

func (s *failingStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if s.failCreate {
		return errDiskFull
	}
	return s.MemoryStore.CreateMessage(ctx, msg)
}

func (s *failingStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	if s.failGet {
		return nil, errDiskFull
	}
	return s.MemoryStore.GetMessage(ctx, id)
}

func (s *failingStore) DeleteMessage(ctx context.Context, id string) error {
	if s.failDelete {
		return errDiskFull
	}
	return s.MemoryStore.DeleteMessage(ctx, id)
}

func (f *fixture) withFailingStore() *failingStore {
	fs := &failingStore{MemoryStore: f.store}
	gate := translate.NewGate(f.oracle, 100*time.Millisecond, zerolog.Nop())
	f.svc = NewService(fs, gate, f.hub, f.publisher, zerolog.Nop())
	return fs
}

func assertUnclassified(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrForbidden} {
		if errors.Is(err, sentinel) {
			t.Errorf("store failure reported as %v", sentinel)
		}
	}
}

func TestSendStoreFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fs := f.withFailingStore()
	fs.failCreate = true
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "Hello"})
	assertUnclassified(t, err)
	if msg != nil {
		t.Errorf("msg = %+v, want nil", msg)
	}

	if got := bConn.messages(); len(got) != 0 {
		t.Errorf("recipient got %d pushes, want 0", len(got))
	}
	if len(f.publisher.keys) != 0 {
		t.Errorf("published %v, want nothing", f.publisher.keys)
	}
	if n := f.oracle.calls.Load(); n != 0 {
		t.Errorf("oracle called %d times before persistence", n)
	}
	history, _ := f.store.ListConversation(ctx, userA, userB)
	if len(history) != 0 {
		t.Errorf("stored %d messages, want 0", len(history))
	}
}

func TestDeleteLoadFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "keep"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	fs := f.withFailingStore()
	fs.failGet = true
	published := len(f.publisher.keys)

	assertUnclassified(t, f.svc.DeleteMessage(ctx, userA, msg.ID))
	if len(f.publisher.keys) != published {
		t.Errorf("published %v after failed delete", f.publisher.keys[published:])
	}
	if _, err := f.store.GetMessage(ctx, msg.ID); err != nil {
		t.Errorf("record should be intact: %v", err)
	}
}

func TestDeleteRemoveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, userA, userB, SendInput{Text: "keep"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	fs := f.withFailingStore()
	fs.failDelete = true
	published := len(f.publisher.keys)

	assertUnclassified(t, f.svc.DeleteMessage(ctx, userA, msg.ID))
	for _, key := range f.publisher.keys[published:] {
		if key == "message.deleted" {
			t.Error("message.deleted published for a failed delete")
		}
	}
	if _, err := f.store.GetMessage(ctx, msg.ID); err != nil {
		t.Errorf("record should be intact: %v", err)
	}
}

func TestSendFromUnknownSenderDefaultsToEnglish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bConn := &recordingConn{}
	f.hub.Connect(userB, bConn)

	msg, err := f.svc.Send(ctx, "0192f0a0-0000-7000-8000-0000000000ee", userB, SendInput{Text: "Hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Language != "en" {
		t.Errorf("language = %q, want en", msg.Language)
	}
	pushed := bConn.messages()
	if len(pushed) != 1 || pushed[0].Text != "Hola" {
		t.Errorf("pushed = %+v, want one message translated from en", pushed)
	}
}
