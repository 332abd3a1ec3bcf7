// Package session owns the authenticated user for the lifetime of the
// process: login, logout, persisted-token restore, and profile refresh.
//
// Login and restore are optimistic: the locally known user becomes visible
// immediately and a profile refresh reconciles it afterwards. The reconcile
// phase is tracked explicitly so both halves of the transition are
// observable.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/storage"
)

// Durable-storage keys for the persisted session.
const (
	TokenKey = "jwt_token"
	UserKey  = "user"
)

// ErrNotAuthenticated is returned by operations that require a logged-in
// user. UpdateUser deliberately refuses to fabricate a user from a partial
// patch when nobody is logged in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Status is the session lifecycle state.
type Status int

const (
	StatusAnonymous Status = iota
	StatusLoading
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ReconcilePhase tracks the optimistic-update lifecycle of the current user.
type ReconcilePhase int

const (
	// PhaseNone: no user, or no reconcile in flight.
	PhaseNone ReconcilePhase = iota
	// PhaseOptimistic: the user shown is the cached/login payload, refresh pending.
	PhaseOptimistic
	// PhaseReconciled: the user was replaced by a fresh backend profile.
	PhaseReconciled
	// PhaseReconcileFailed: the refresh failed and the optimistic user was kept.
	PhaseReconcileFailed
)

// User is the authenticated profile.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
}

// Patch carries the fields UpdateUser may change. Nil fields are left as-is.
type Patch struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// AuthClient is the backend auth boundary. Login returns the profile payload
// and a bearer token; Logout is best-effort server-side invalidation.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (User, string, error)
	Profile(ctx context.Context, token string) (User, error)
	Logout(ctx context.Context, token string) error
}

// Store is the process-wide session container.
type Store struct {
	auth    AuthClient
	storage storage.Store
	lg      *zap.Logger

	mu     sync.Mutex
	status Status
	phase  ReconcilePhase
	user   *User
	token  string
}

// NewStore creates an anonymous session container.
func NewStore(auth AuthClient, st storage.Store, lg *zap.Logger) *Store {
	return &Store{
		auth:    auth,
		storage: st,
		lg:      lg.Named("session"),
	}
}

// Restore revives a persisted session. With both a stored token and a cached
// user the session becomes authenticated immediately with the cached profile,
// then a refresh reconciles it; a failed refresh keeps the cached user and is
// only logged. Without a cached user, a stored token still gets one profile
// fetch before giving up. This path never hard-fails.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusLoading

	token, err := s.getString(ctx, TokenKey)
	if err != nil || token == "" {
		s.resetLocked()
		return
	}

	cached, cacheErr := s.getUser(ctx)
	if cacheErr == nil {
		s.token = token
		s.user = cached
		s.status = StatusAuthenticated
		s.phase = PhaseOptimistic
		s.refreshLocked(ctx)
		return
	}

	// Token without a cached user: one shot at the profile endpoint.
	fresh, err := s.auth.Profile(ctx, token)
	if err != nil {
		s.lg.Info("Stored token rejected, starting anonymous", zap.Error(err))
		s.clearStorage(ctx)
		s.resetLocked()
		return
	}
	s.token = token
	s.user = &fresh
	s.status = StatusAuthenticated
	s.phase = PhaseReconciled
	s.putUser(ctx, fresh)
}

// Login authenticates against the backend, persists the token, exposes the
// login payload optimistically, and reconciles it with a full profile fetch.
// Only the login call itself can fail; a failed refresh keeps the optimistic
// user.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusAuthenticating

	user, token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.resetLocked()
		return errors.Wrap(err, "login")
	}

	s.token = token
	s.user = &user
	s.status = StatusAuthenticated
	s.phase = PhaseOptimistic

	if err := s.putString(ctx, TokenKey, token); err != nil {
		s.lg.Error("Persisting token failed", zap.Error(err))
	}
	s.putUser(ctx, user)

	s.refreshLocked(ctx)
	return nil
}

// refreshLocked fetches the full profile and replaces the optimistic user.
// On failure the optimistic user stays and the phase records the failure.
// Caller holds the lock.
func (s *Store) refreshLocked(ctx context.Context) {
	fresh, err := s.auth.Profile(ctx, s.token)
	if err != nil {
		s.lg.Warn("Profile refresh failed, keeping optimistic user", zap.Error(err))
		s.phase = PhaseReconcileFailed
		return
	}
	s.user = &fresh
	s.phase = PhaseReconciled
	s.putUser(ctx, fresh)
}

// Logout clears the session. The backend notification is fire-and-forget and
// never blocks or fails the local clear.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		token := s.token
		notifyCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.auth.Logout(notifyCtx, token); err != nil {
				s.lg.Debug("Backend logout notification failed", zap.Error(err))
			}
		}()
	}

	s.clearStorage(ctx)
	s.resetLocked()
}

// UpdateUser merges the patch into the current user and persists the result.
// When nobody is logged in it returns ErrNotAuthenticated instead of
// fabricating a user from the patch alone.
func (s *Store) UpdateUser(ctx context.Context, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}

	merged := *s.user
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Phone != nil {
		merged.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		merged.Avatar = *patch.Avatar
	}
	s.user = &merged

	raw, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	if err := s.storage.Set(ctx, UserKey, raw); err != nil {
		return errors.Wrap(err, "persist user")
	}
	return nil
}

// IsAuthenticated reports whether a user is present. It is equivalent to
// User() != nil at all times.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// User returns a copy of the current user, or nil when anonymous.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Status returns the lifecycle state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Phase returns the reconcile phase of the current user.
func (s *Store) Phase() ReconcilePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// resetLocked returns the container to the anonymous state. Caller holds the
// lock.
func (s *Store) resetLocked() {
	s.user = nil
	s.token = ""
	s.status = StatusAnonymous
	s.phase = PhaseNone
}

// clearStorage removes the persisted token and user. Failures are logged;
// local clearing must proceed regardless.
func (s *Store) clearStorage(ctx context.Context) {
	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		s.lg.Error("Deleting persisted token failed", zap.Error(err))
	}
	if err := s.storage.Delete(ctx, UserKey); err != nil {
		s.lg.Error("Deleting persisted user failed", zap.Error(err))
	}
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	raw, err := s.storage.Get(ctx, key)
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", errors.Wrapf(err, "decode %q", key)
	}
	return v, nil
}

func (s *Store) putString(ctx context.Context, key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, key, raw)
}

func (s *Store) getUser(ctx context.Context) (*User, error) {
	raw, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &u, nil
}

// putUser persists the user, logging failures instead of propagating them:
// the in-memory session is authoritative during the process lifetime.
func (s *Store) putUser(ctx context.Context, u User) {
	raw, err := json.Marshal(u)
	if err != nil {
		s.lg.Error("Encoding user failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, UserKey, raw); err != nil {
		s.lg.Error("Persisting user failed", zap.Error(err))
	}
}
