package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saga/internal/amqp"
	"saga/internal/core"
	"saga/internal/ledger"
	"saga/internal/store"
)

type fakeAdopter struct {
	adopted [][]byte
	stamps  []time.Time
	stale   bool
	err     error
}

func (f *fakeAdopter) Scope() string  { return "scope" }
func (f *fakeAdopter) Origin() string { return "me" }
func (f *fakeAdopter) Adopt(payload []byte, writtenAt time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.stale {
		return false, nil
	}
	f.adopted = append(f.adopted, payload)
	f.stamps = append(f.stamps, writtenAt)
	return true, nil
}

// mapStore is a minimal store.Store for wiring a real repository.
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type fakeSource struct {
	messages []*amqp.LedgerChangedMessage
	errs     []error
}

func (f *fakeSource) ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangedMessage) error) error {
	for _, m := range f.messages {
		f.errs = append(f.errs, handler(ctx, m))
	}
	return ctx.Err()
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func message(origin, scope string, at time.Time, payload string) *amqp.LedgerChangedMessage {
	return &amqp.LedgerChangedMessage{Scope: scope, Origin: origin, Timestamp: at, Payload: json.RawMessage(payload)}
}

func TestHandleLedgerChanged(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeAdopter{}
	w := NewSyncWorker(nil, repo, quiet())
	ctx := context.Background()

	require.NoError(t, w.HandleLedgerChanged(ctx, message("me", "scope", base, `{"own":true}`)))
	require.NoError(t, w.HandleLedgerChanged(ctx, message("other", "elsewhere", base, `{"foreign":true}`)))
	assert.Empty(t, repo.adopted, "own and foreign-scope messages are skipped")

	require.NoError(t, w.HandleLedgerChanged(ctx, message("other", "scope", base.Add(time.Minute), `{"v":2}`)))
	require.Len(t, repo.adopted, 1)
	assert.JSONEq(t, `{"v":2}`, string(repo.adopted[0]))
	assert.Equal(t, base.Add(time.Minute), repo.stamps[0])
}

func TestHandleLedgerChangedStale(t *testing.T) {
	repo := &fakeAdopter{stale: true}
	w := NewSyncWorker(nil, repo, quiet())

	require.NoError(t, w.HandleLedgerChanged(context.Background(), message("other", "scope", time.Now(), `{}`)))
	assert.Empty(t, repo.adopted)
}

func TestSyncKeepsNewerLocalSave(t *testing.T) {
	ctx := context.Background()
	t2 := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	t1 := t2.Add(-time.Minute)

	s := &mapStore{data: map[string][]byte{}}
	repo := ledger.NewRepository(s, ledger.Config{
		Now:    func() time.Time { return t2 },
		Logger: quiet(),
	})
	l, err := repo.Load(ctx)
	require.NoError(t, err)
	l.Budgets = append(l.Budgets, core.Budget{ID: "b1", Category: "Food", Amount: core.Cents(100)})
	require.NoError(t, repo.Save(ctx, l))

	older := core.SeedLedger(t1, false)
	older.SelectedMonth = "B-old"
	payload, err := ledger.Encode(older)
	require.NoError(t, err)

	w := NewSyncWorker(nil, repo, quiet())
	require.NoError(t, w.HandleLedgerChanged(ctx, message("other", repo.Scope(), t1, string(payload))))

	current := repo.Current()
	assert.Len(t, current.Budgets, 1)
	assert.Equal(t, "March 2024", current.SelectedMonth)

	// A newer foreign snapshot still wins, re-aggregated on arrival.
	require.NoError(t, w.HandleLedgerChanged(ctx, message("other", repo.Scope(), t2.Add(time.Minute), string(payload))))
	current = repo.Current()
	assert.Empty(t, current.Budgets)
	assert.Equal(t, "March 2024", current.SelectedMonth)
}

func TestHandleLedgerChangedAdoptError(t *testing.T) {
	repo := &fakeAdopter{err: errors.New("decode ledger: bad json")}
	w := NewSyncWorker(nil, repo, quiet())

	err := w.HandleLedgerChanged(context.Background(), message("other", "scope", time.Now(), `{}`))
	assert.ErrorContains(t, err, "bad json")
}

func TestRunConsumesFromSource(t *testing.T) {
	repo := &fakeAdopter{}
	source := &fakeSource{messages: []*amqp.LedgerChangedMessage{
		message("other", "scope", time.Now(), `{"v":1}`),
	}}
	w := NewSyncWorker(source, repo, quiet())

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, repo.adopted, 1)
	assert.Equal(t, []error{nil}, source.errs)
}
