package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"github.com/kasuganosora/lifeos/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRanker struct {
	mu    sync.Mutex
	users map[string]model.DirectoryUser
}

func (m *memRanker) Update(_ context.Context, u model.DirectoryUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = map[string]model.DirectoryUser{}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memRanker) get(id string) (model.DirectoryUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

var regNow = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T, opts RegistryOptions) *Registry {
	t.Helper()
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return regNow }
	}
	return NewRegistry(opts)
}

// onboard opens accountID and completes onboarding as name.
func onboard(t *testing.T, r *Registry, accountID int64, name string) *Session {
	t.Helper()
	ctx := context.Background()
	sess, err := r.Open(ctx, accountID)
	require.NoError(t, err)
	_, err = sess.Dispatcher.Do(ctx, "onboarding", "onboarding", Pure(func(s *model.GameState) model.Patch {
		return action.CompleteOnboarding(s, r.Env(), name, model.ClassScholar)
	}))
	require.NoError(t, err)
	return sess
}

func charID(sess *Session) string { return sess.Store.Snapshot().Character.ID }

func TestRegistryOpenIsIdempotent(t *testing.T) {
	r := newRegistry(t, RegistryOptions{})
	a, err := r.Open(context.Background(), 1)
	require.NoError(t, err)
	b, err := r.Open(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "Valerius", a.Store.Snapshot().Character.Name)

	infos := r.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, int64(1), infos[0].AccountID)
	assert.Equal(t, regNow, infos[0].OpenedAt)
}

func TestRegistryCloseSavesAndRestores(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)
	r := newRegistry(t, RegistryOptions{DB: db, Scheduler: sched, Timings: Timings{ToastTTL: time.Hour}})

	sess := onboard(t, r, 1, "Mira")
	_, err := sess.Dispatcher.Do(ctx, "k", "note", Pure(func(*model.GameState) model.Patch {
		return toastPatch("t1")
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, sched.Tasks(), "toast timer armed")
	require.NoError(t, r.Close(ctx, 1))
	assert.Empty(t, sched.Tasks())
	assert.ErrorIs(t, r.Close(ctx, 1), ErrNoSession)

	restored, err := r.Open(ctx, 1)
	require.NoError(t, err)
	assert.NotSame(t, sess, restored)
	s := restored.Store.Snapshot()
	assert.True(t, s.IsOnboarded)
	assert.Equal(t, "Mira", s.Character.Name)
	assert.Empty(t, s.Toasts)
}

func TestRegistrySaveAllSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	r := newRegistry(t, RegistryOptions{DB: db})

	_, err := r.Open(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, r.SaveAll(ctx))
	var n int64
	db.Model(&model.GameSnapshot{}).Count(&n)
	assert.Zero(t, n, "untouched starting state is not written")

	onboard(t, r, 2, "Mira")
	require.NoError(t, r.SaveAll(ctx))
	db.Model(&model.GameSnapshot{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestRegistryPublishesChangesAndRanks(t *testing.T) {
	ctx := context.Background()
	_, ps := testutil.SetupTestCache(t)
	ranker := &memRanker{}
	r := newRegistry(t, RegistryOptions{PubSub: ps, Ranker: ranker})

	ch, unsubscribe, err := ps.Subscribe(ctx, StateChannel(1))
	require.NoError(t, err)
	defer unsubscribe()

	sess := onboard(t, r, 1, "Mira")

	var ev ChangeEvent
	require.Eventually(t, func() bool {
		select {
		case msg := <-ch:
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			return ev.Action == "onboarding"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), ev.AccountID)
	assert.Equal(t, uint64(1), ev.Version)

	u, ok := ranker.get(charID(sess))
	require.True(t, ok)
	assert.Equal(t, "Mira", u.Name)
}

func TestRegistryEnvFindsLivePlayers(t *testing.T) {
	r := newRegistry(t, RegistryOptions{})
	a := onboard(t, r, 1, "Mira")
	env := r.Env()
	assert.Equal(t, regNow, env.Now)

	u, ok := env.Users(charID(a))
	require.True(t, ok)
	assert.Equal(t, "Mira", u.Name)

	u, ok = env.Users("char2")
	require.True(t, ok, "catalog directory still resolves")
	assert.Equal(t, "Zephyr", u.Name)

	_, ok = env.Users("nobody")
	assert.False(t, ok)
}

func TestRegistryMirrorsFriendship(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, RegistryOptions{})
	a := onboard(t, r, 1, "Mira")
	b := onboard(t, r, 2, "Tomas")
	aID, bID := charID(a), charID(b)

	_, err := r.SendFriendRequest(ctx, 1, bID)
	require.NoError(t, err)
	fa, _, ok := a.Store.Snapshot().FindFriend(bID)
	require.True(t, ok)
	assert.Equal(t, model.FriendPendingOut, fa.Status)
	fb, _, ok := b.Store.Snapshot().FindFriend(aID)
	require.True(t, ok)
	assert.Equal(t, model.FriendPendingIn, fb.Status)
	assert.Equal(t, "Mira", fb.Name)

	_, err = r.AcceptFriend(ctx, 2, aID)
	require.NoError(t, err)
	fa, _, _ = a.Store.Snapshot().FindFriend(bID)
	fb, _, _ = b.Store.Snapshot().FindFriend(aID)
	assert.Equal(t, model.FriendAccepted, fa.Status)
	assert.Equal(t, model.FriendAccepted, fb.Status)

	_, err = r.RemoveFriend(ctx, 1, bID)
	require.NoError(t, err)
	_, _, ok = a.Store.Snapshot().FindFriend(bID)
	assert.False(t, ok)
	_, _, ok = b.Store.Snapshot().FindFriend(aID)
	assert.False(t, ok)
}

func TestRegistryFriendRequestToDirectoryUserIsOneSided(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, RegistryOptions{})
	a := onboard(t, r, 1, "Mira")

	_, err := r.SendFriendRequest(ctx, 1, "char3")
	require.NoError(t, err)
	f, _, ok := a.Store.Snapshot().FindFriend("char3")
	require.True(t, ok)
	assert.Equal(t, model.FriendPendingOut, f.Status)

	_, err = r.SendFriendRequest(ctx, 9, "char3")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRegistryTickBriefings(t *testing.T) {
	clock := testutil.NewFakeClock(regNow)
	r := newRegistry(t, RegistryOptions{Now: clock.Now})
	sess := onboard(t, r, 1, "Mira")
	_, err := sess.Store.Apply(HideDailyBriefing{})
	require.NoError(t, err)

	r.TickBriefings()
	assert.Nil(t, sess.Store.Snapshot().DailyBriefing, "already logged in today")

	clock.Advance(24 * time.Hour)
	r.TickBriefings()
	b := sess.Store.Snapshot().DailyBriefing
	require.NotNil(t, b)
	assert.True(t, b.Visible)
}
