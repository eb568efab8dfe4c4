// Package localauth implements core.AuthProvider on top of a core.Store:
// users live in the "users" collection, sessions are held in memory and
// carry a signed JWT so other processes can verify who is acting.
package localauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasksage/tasksage/pkg/core"
)

const (
	fieldEmail        = "email"
	fieldDisplayName  = "displayName"
	fieldPasswordHash = "passwordHash"
	fieldPasswordSalt = "passwordSalt"

	sessionTTL = 24 * time.Hour
)

// Session is the active signed-in state.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// Provider implements core.AuthProvider.
type Provider struct {
	store  core.Store
	secret []byte
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(core.User, bool)
	nextID    int

	usersMu sync.RWMutex
	byEmail map[string]core.Record
	sub     *core.Subscription
}

// Option configures the provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a provider over the given store. The secret signs session
// tokens; it must be stable across restarts for tokens to stay verifiable.
// The provider keeps an index of users fed by a live subscription; Close
// releases it.
func New(ctx context.Context, store core.Store, secret []byte, opts ...Option) (*Provider, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("localauth: empty signing secret")
	}
	p := &Provider{
		store:     store,
		secret:    secret,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[int]func(core.User, bool)),
		byEmail:   make(map[string]core.Record),
	}
	for _, opt := range opts {
		opt(p)
	}

	sub, err := store.Subscribe(ctx, core.Query{Collection: core.CollectionUsers})
	if err != nil {
		return nil, fmt.Errorf("localauth: failed to subscribe to users: %w", err)
	}
	p.sub = sub

	// Index the initial snapshot synchronously so sign-in works immediately,
	// then keep following updates.
	select {
	case snap, ok := <-sub.C:
		if ok {
			p.applySnapshot(snap)
		}
	case <-ctx.Done():
		sub.Cancel()
		return nil, ctx.Err()
	}
	go func() {
		for snap := range sub.C {
			p.applySnapshot(snap)
		}
	}()
	return p, nil
}

func (p *Provider) applySnapshot(snap core.Snapshot) {
	index := make(map[string]core.Record, len(snap.Records))
	for _, r := range snap.Records {
		if email := r.Fields.String(fieldEmail); email != "" {
			index[strings.ToLower(email)] = r
		}
	}
	p.usersMu.Lock()
	p.byEmail = index
	p.usersMu.Unlock()
}

func (p *Provider) lookup(email string) (core.Record, bool) {
	p.usersMu.RLock()
	defer p.usersMu.RUnlock()
	r, ok := p.byEmail[strings.ToLower(email)]
	return r, ok
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SignUp registers a new user and opens a session for them.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (core.User, error) {
	email = strings.TrimSpace(email)
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.User{}, err
	}
	if strings.TrimSpace(displayName) == "" {
		return core.User{}, core.NewAuthError(core.AuthUnknown, fmt.Errorf("display name is required"))
	}
	if _, exists := p.lookup(email); exists {
		return core.User{}, core.NewAuthError(core.AuthEmailInUse, nil)
	}

	salt, err := newSalt()
	if err != nil {
		return core.User{}, core.NewAuthError(core.AuthUnknown, err)
	}
	id, err := p.store.Create(ctx, core.CollectionUsers, core.Fields{
		fieldEmail:        email,
		fieldDisplayName:  strings.TrimSpace(displayName),
		fieldPasswordHash: hashPassword(password, salt),
		fieldPasswordSalt: salt,
	})
	if err != nil {
		return core.User{}, core.NewAuthError(core.AuthUnknown, err)
	}

	user := core.User{ID: id, DisplayName: strings.TrimSpace(displayName), Email: email}
	if err := p.openSession(user); err != nil {
		return core.User{}, err
	}
	return user, nil
}

// SignIn verifies credentials and opens a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (core.User, error) {
	email = strings.TrimSpace(email)
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}
	record, ok := p.lookup(email)
	if !ok {
		return core.User{}, core.NewAuthError(core.AuthUserNotFound, nil)
	}
	salt := record.Fields.String(fieldPasswordSalt)
	want := record.Fields.String(fieldPasswordHash)
	got := hashPassword(password, salt)
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return core.User{}, core.NewAuthError(core.AuthWrongPassword, nil)
	}

	user := core.User{
		ID:          record.ID,
		DisplayName: record.Fields.String(fieldDisplayName),
		Email:       record.Fields.String(fieldEmail),
	}
	if err := p.openSession(user); err != nil {
		return core.User{}, err
	}
	return user, nil
}

func (p *Provider) openSession(user core.User) error {
	now := p.now()
	expires := now.Add(sessionTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.DisplayName,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return core.NewAuthError(core.AuthUnknown, err)
	}

	p.mu.Lock()
	p.session = &Session{User: user, Token: token, ExpiresAt: expires}
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	p.logger.Debug("session opened", "user", user.ID)
	for _, fn := range listeners {
		fn(user, true)
	}
	return nil
}

// SignOut clears the session and notifies listeners.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(core.User{}, false)
	}
	return nil
}

func (p *Provider) snapshotListenersLocked() []func(core.User, bool) {
	out := make([]func(core.User, bool), 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}

// CurrentUser returns the active identity, if a session is open and not
// expired.
func (p *Provider) CurrentUser() (core.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil || p.now().After(p.session.ExpiresAt) {
		return core.User{}, false
	}
	return p.session.User, true
}

// CurrentSession returns the full session including the signed token.
func (p *Provider) CurrentSession() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil || p.now().After(p.session.ExpiresAt) {
		return Session{}, false
	}
	return *p.session, true
}

// VerifyToken parses and validates a session token, returning its user ID.
func (p *Provider) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", core.NewAuthError(core.AuthInvalidCredentials, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", core.NewAuthError(core.AuthInvalidCredentials, nil)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", core.NewAuthError(core.AuthInvalidCredentials, nil)
	}
	return sub, nil
}

// OnSessionChanged registers a listener and returns its unsubscribe handle.
func (p *Provider) OnSessionChanged(fn func(core.User, bool)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Close releases the users subscription.
func (p *Provider) Close() {
	if p.sub != nil {
		p.sub.Cancel()
	}
}

var _ core.AuthProvider = (*Provider)(nil)
