package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoSession is returned for an account with no open session.
var ErrNoSession = errors.New("store: no session")

// Ranker receives the standing of players whose progress changed.
type Ranker interface {
	Update(ctx context.Context, u model.DirectoryUser) error
}

// ChangeEvent is published on StateChannel after every applied action.
type ChangeEvent struct {
	AccountID int64  `json:"account_id"`
	Version   uint64 `json:"version"`
	Action    string `json:"action"`
}

// StateChannel is the pub/sub channel of one account's change events.
func StateChannel(accountID int64) string {
	return fmt.Sprintf("lifeos:state:%d", accountID)
}

// Session is one account's live store and its dispatcher.
type Session struct {
	AccountID  int64
	Store      *Store
	Dispatcher *Dispatcher
	OpenedAt   time.Time

	saved  atomic.Uint64
	ranked atomic.Uint64
}

// SessionInfo is the admin view of a session.
type SessionInfo struct {
	AccountID     int64     `json:"account_id"`
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Level         int       `json:"level"`
	Version       uint64    `json:"version"`
	Loading       int       `json:"loading"`
	OpenedAt      time.Time `json:"opened_at"`
}

// RegistryOptions wires a Registry. DB, PubSub, Ranker, Scheduler and
// Audit are optional.
type RegistryOptions struct {
	Catalog   *catalog.Catalog
	DB        *gorm.DB
	PubSub    cache.PubSub
	Ranker    Ranker
	Scheduler *scheduler.Scheduler
	Audit     Auditor
	Timings   Timings
	Now       func() time.Time
	Logger    *zap.Logger
}

// Registry owns the sessions of every connected account.
type Registry struct {
	opts   RegistryOptions
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[int64]*Session),
	}
}

func (r *Registry) Catalog() *catalog.Catalog { return r.opts.Catalog }

// Now is the registry clock.
func (r *Registry) Now() time.Time { return r.opts.Now() }

// Open returns the account's session, creating it from the stored snapshot
// or, for a new account, from the catalog's starting state.
func (r *Registry) Open(ctx context.Context, accountID int64) (*Session, error) {
	if sess, ok := r.Get(accountID); ok {
		return sess, nil
	}

	initial, err := r.restore(ctx, accountID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[accountID]; ok {
		return sess, nil
	}
	st := New(initial)
	sess := &Session{
		AccountID: accountID,
		Store:     st,
		Dispatcher: NewDispatcher(st, DispatcherOptions{
			AccountID: accountID,
			Timings:   r.opts.Timings,
			Scheduler: r.opts.Scheduler,
			Audit:     r.opts.Audit,
			Logger:    r.logger,
		}),
		OpenedAt: r.opts.Now(),
	}
	sess.saved.Store(initial.Version)
	st.OnChange(func(version uint64, name string) { r.changed(sess, version, name) })
	r.sessions[accountID] = sess
	r.logger.Info("session opened", zap.Int64("account_id", accountID), zap.Uint64("version", initial.Version))
	return sess, nil
}

func (r *Registry) restore(ctx context.Context, accountID int64) (*model.GameState, error) {
	if r.opts.DB == nil {
		return r.opts.Catalog.NewState(), nil
	}
	s, err := LoadSnapshot(ctx, r.opts.DB, accountID)
	if errors.Is(err, ErrNoSnapshot) {
		return r.opts.Catalog.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore account %d: %w", accountID, err)
	}
	return s, nil
}

func (r *Registry) Get(accountID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[accountID]
	return sess, ok
}

// Close saves and drops the session and cancels its pending timers.
func (r *Registry) Close(ctx context.Context, accountID int64) error {
	r.mu.Lock()
	sess, ok := r.sessions[accountID]
	delete(r.sessions, accountID)
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	if r.opts.Scheduler != nil {
		r.opts.Scheduler.RemovePrefix(TaskPrefix(accountID))
	}
	r.logger.Info("session closed", zap.Int64("account_id", accountID))
	return r.save(ctx, sess)
}

// CloseAll closes every session, saving each one.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil && !errors.Is(err, ErrNoSession) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sessions lists open sessions ordered by account id.
func (r *Registry) Sessions() []SessionInfo {
	out := make([]SessionInfo, 0)
	for _, sess := range r.list() {
		sess.Store.Read(func(s *model.GameState) {
			out = append(out, SessionInfo{
				AccountID:     sess.AccountID,
				CharacterID:   s.Character.ID,
				CharacterName: s.Character.Name,
				Level:         s.Character.Level,
				Version:       s.Version,
				Loading:       len(s.LoadingStates),
				OpenedAt:      sess.OpenedAt,
			})
		})
	}
	return out
}

func (r *Registry) list() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// Env builds the handler environment for a call made now. Players with a
// live session are befriendable alongside the catalog directory.
func (r *Registry) Env() action.Env {
	env := action.NewEnv(r.opts.Catalog, r.opts.Now())
	env.Users = r.lookupUser
	return env
}

func (r *Registry) lookupUser(id string) (model.DirectoryUser, bool) {
	if sess := r.byCharacter(id); sess != nil {
		return directoryUser(sess), true
	}
	return r.opts.Catalog.User(id)
}

// byCharacter finds the live, onboarded session whose character is id.
func (r *Registry) byCharacter(id string) *Session {
	for _, sess := range r.list() {
		var match bool
		sess.Store.Read(func(s *model.GameState) {
			match = s.IsOnboarded && s.Character.ID == id
		})
		if match {
			return sess
		}
	}
	return nil
}

func directoryUser(sess *Session) model.DirectoryUser {
	var u model.DirectoryUser
	sess.Store.Read(func(s *model.GameState) {
		u = model.DirectoryUser{
			ID:    s.Character.ID,
			Name:  s.Character.Name,
			Level: s.Character.Level,
			XP:    s.Character.XP,
		}
	})
	return u
}

// changed fans a store change out to subscribers and the leaderboard.
func (r *Registry) changed(sess *Session, version uint64, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if r.opts.PubSub != nil {
		raw, _ := json.Marshal(ChangeEvent{AccountID: sess.AccountID, Version: version, Action: name})
		if err := r.opts.PubSub.Publish(ctx, StateChannel(sess.AccountID), string(raw)); err != nil {
			r.logger.Warn("publish state change failed", zap.Int64("account_id", sess.AccountID), zap.Error(err))
		}
	}

	if r.opts.Ranker == nil {
		return
	}
	if prev := sess.ranked.Load(); version <= prev || !sess.ranked.CompareAndSwap(prev, version) {
		return
	}
	var onboarded bool
	sess.Store.Read(func(s *model.GameState) { onboarded = s.IsOnboarded })
	if !onboarded {
		return
	}
	if err := r.opts.Ranker.Update(ctx, directoryUser(sess)); err != nil {
		r.logger.Warn("leaderboard update failed", zap.Int64("account_id", sess.AccountID), zap.Error(err))
	}
}

// SaveAll snapshots every session that changed since its last save.
func (r *Registry) SaveAll(ctx context.Context) error {
	var errs []error
	for _, sess := range r.list() {
		if err := r.save(ctx, sess); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) save(ctx context.Context, sess *Session) error {
	if r.opts.DB == nil {
		return nil
	}
	s := sess.Store.Snapshot()
	if s.Version == sess.saved.Load() {
		return nil
	}
	if err := SaveSnapshot(ctx, r.opts.DB, sess.AccountID, s); err != nil {
		r.logger.Error("save snapshot failed", zap.Int64("account_id", sess.AccountID), zap.Error(err))
		return err
	}
	sess.saved.Store(s.Version)
	return nil
}

// TickBriefings raises the daily briefing of every session whose player
// has not logged in today.
func (r *Registry) TickBriefings() {
	for _, sess := range r.list() {
		env := r.Env()
		if _, err := sess.Store.Apply(Mutate{Action: "daily_briefing", Fn: func(s *model.GameState) model.Patch {
			return action.OpenDailyBriefing(s, env)
		}}); err != nil {
			r.logger.Warn("daily briefing failed", zap.Int64("account_id", sess.AccountID), zap.Error(err))
		}
	}
}

func friendKey(prefix, id string) string { return prefix + "-" + id }

// SendFriendRequest runs AddFriend for the account and, when the target is
// a live player and the request went out, records it on their side.
func (r *Registry) SendFriendRequest(ctx context.Context, accountID int64, friendID string) (uint64, error) {
	sess, ok := r.Get(accountID)
	if !ok {
		return 0, ErrNoSession
	}
	v, err := sess.Dispatcher.Do(ctx, friendKey("addFriend", friendID), "add_friend", Pure(func(s *model.GameState) model.Patch {
		return action.AddFriend(s, r.Env(), friendID)
	}))
	if err != nil {
		return v, err
	}
	if r.friendStatus(sess, friendID) != model.FriendPendingOut {
		return v, nil
	}
	r.mirror(sess, friendID, "receive_friend_request", func(s *model.GameState, env action.Env, me model.DirectoryUser) model.Patch {
		return action.ReceiveFriendRequest(s, env, me)
	})
	return v, nil
}

// AcceptFriend accepts a pending request and completes the friendship on
// the requester's side when they are live.
func (r *Registry) AcceptFriend(ctx context.Context, accountID int64, friendID string) (uint64, error) {
	sess, ok := r.Get(accountID)
	if !ok {
		return 0, ErrNoSession
	}
	v, err := sess.Dispatcher.Do(ctx, friendKey("acceptFriend", friendID), "accept_friend", Pure(func(s *model.GameState) model.Patch {
		return action.AcceptFriendRequest(s, r.Env(), friendID)
	}))
	if err != nil {
		return v, err
	}
	if r.friendStatus(sess, friendID) != model.FriendAccepted {
		return v, nil
	}
	r.mirror(sess, friendID, "friend_accepted", func(s *model.GameState, env action.Env, me model.DirectoryUser) model.Patch {
		if f, _, ok := s.FindFriend(me.ID); !ok || f.Status != model.FriendPendingOut {
			return model.Patch{}
		}
		return action.ReceiveFriendRequest(s, env, me)
	})
	return v, nil
}

// RemoveFriend ends the relationship on both sides.
func (r *Registry) RemoveFriend(ctx context.Context, accountID int64, friendID string) (uint64, error) {
	sess, ok := r.Get(accountID)
	if !ok {
		return 0, ErrNoSession
	}
	v, err := sess.Dispatcher.Do(ctx, friendKey("removeFriend", friendID), "remove_friend", Pure(func(s *model.GameState) model.Patch {
		return action.RemoveFriend(s, r.Env(), friendID)
	}))
	if err != nil {
		return v, err
	}
	r.mirror(sess, friendID, "friend_removed", func(s *model.GameState, env action.Env, me model.DirectoryUser) model.Patch {
		return action.RemoveFriend(s, env, me.ID)
	})
	return v, nil
}

func (r *Registry) friendStatus(sess *Session, friendID string) model.FriendStatus {
	var status model.FriendStatus
	sess.Store.Read(func(s *model.GameState) {
		if f, _, ok := s.FindFriend(friendID); ok {
			status = f.Status
		}
	})
	return status
}

// mirror applies fn to the live session of friendID, if any.
func (r *Registry) mirror(from *Session, friendID, name string, fn func(*model.GameState, action.Env, model.DirectoryUser) model.Patch) {
	other := r.byCharacter(friendID)
	if other == nil || other == from {
		return
	}
	me := directoryUser(from)
	env := r.Env()
	if _, err := other.Store.Apply(Mutate{Action: name, Fn: func(s *model.GameState) model.Patch {
		return fn(s, env, me)
	}}); err != nil {
		r.logger.Warn("friend mirror failed",
			zap.Int64("account_id", other.AccountID), zap.String("action", name), zap.Error(err))
	}
}
