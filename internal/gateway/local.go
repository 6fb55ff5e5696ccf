package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "folio-api"
	tokenAudience = "folio-client"
)

// LocalGateway implements IdentityGateway with bcrypt-hashed accounts, HS256
// tokens, and a Redis registry of active sessions keyed by token ID so a
// sign-out revokes the token before it expires.
type LocalGateway struct {
	accounts       repository.AccountRepository
	rdb            *redis.Client
	jwtSecret      string
	sessionTTL     time.Duration
	signupDisabled bool

	// instanceID tags published events so the pub/sub receiver can skip
	// events this instance already delivered locally.
	instanceID string
	pubsub     *redis.PubSub

	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// wireEvent is the pub/sub representation of a session lifecycle event.
type wireEvent struct {
	Origin  string    `json:"origin"`
	Type    EventType `json:"type"`
	Session *Session  `json:"session,omitempty"`
}

// LocalGatewayOptions configures a LocalGateway.
type LocalGatewayOptions struct {
	Accounts       repository.AccountRepository
	Redis          *redis.Client
	JWTSecret      string
	SessionTTL     time.Duration
	SignupDisabled bool
}

// NewLocalGateway returns a gateway backed by the given account store. A nil
// Redis client disables the revocation registry; tokens then stay valid until
// they expire.
func NewLocalGateway(opts LocalGatewayOptions) *LocalGateway {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = cache.SessionTTL
	}
	g := &LocalGateway{
		accounts:       opts.Accounts,
		rdb:            opts.Redis,
		jwtSecret:      opts.JWTSecret,
		sessionTTL:     ttl,
		signupDisabled: opts.SignupDisabled,
		instanceID:     uuid.NewString(),
		subscribers:    make(map[int]func(Event)),
	}
	if g.rdb != nil {
		g.pubsub = g.rdb.Subscribe(context.Background(), cache.SessionEventsChannel)
		go g.receive()
	}
	return g
}

// Close stops the cross-instance event receiver.
func (g *LocalGateway) Close() error {
	if g.pubsub != nil {
		return g.pubsub.Close()
	}
	return nil
}

// receive delivers session events published by other instances.
func (g *LocalGateway) receive() {
	for msg := range g.pubsub.Channel() {
		var ev wireEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			continue
		}
		if ev.Origin == g.instanceID {
			continue
		}
		g.deliver(Event{Type: ev.Type, Session: ev.Session})
	}
}

// SignUp registers a new account and starts a session for it.
func (g *LocalGateway) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if g.signupDisabled {
		return nil, models.NewValidationError("Signups not allowed for this instance")
	}
	if len(password) < 6 {
		return nil, models.NewValidationError("Password should be at least 6 characters")
	}

	existing, err := g.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	account := &models.Account{
		Email:    email,
		Password: string(hashed),
	}
	if err := g.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	session, err := g.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}
	g.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

// SignIn authenticates credentials and starts a session.
func (g *LocalGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := g.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.NewUnauthorizedError("Invalid login credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid login credentials")
	}

	session, err := g.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}
	g.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

// SignOut revokes the session behind token. Unknown or malformed tokens are
// treated as already signed out. The emitted event names the signed-out user
// (never the token) so listeners can release per-user state.
func (g *LocalGateway) SignOut(ctx context.Context, token string) error {
	var owner *Session
	if claims := g.parseClaims(token); claims != nil {
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub != "" {
			owner = &Session{UserID: sub, Email: email}
		}
		if jti, _ := claims["jti"].(string); jti != "" && g.rdb != nil {
			if err := g.rdb.Del(ctx, cache.SessionKey(jti)).Err(); err != nil {
				return models.NewInternalError(err)
			}
		}
	}
	g.emit(Event{Type: EventSignedOut, Session: owner})
	return nil
}

// GetSession resolves a bearer token into the session it represents.
func (g *LocalGateway) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims := g.parseClaims(token)
	if claims == nil {
		return nil, nil
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return nil, nil
	}

	if g.rdb != nil {
		exists, err := g.rdb.Exists(ctx, cache.SessionKey(jti)).Result()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if exists == 0 {
			// Revoked or expired out of the registry.
			return nil, nil
		}
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return &Session{
		UserID:    sub,
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Subscribe registers fn for session lifecycle events.
func (g *LocalGateway) Subscribe(fn func(Event)) Unsubscribe {
	g.mu.Lock()
	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subscribers, id)
			g.mu.Unlock()
		})
	}
}

// emit delivers ev to local subscribers and publishes it for other
// instances. The published copy never carries the bearer token: remote
// instances only need to know who transitioned, and the broker is not a
// place for credentials.
func (g *LocalGateway) emit(ev Event) {
	g.deliver(ev)

	if g.rdb != nil {
		wire := wireEvent{
			Origin: g.instanceID,
			Type:   ev.Type,
		}
		if ev.Session != nil {
			redacted := *ev.Session
			redacted.Token = ""
			wire.Session = &redacted
		}
		payload, err := json.Marshal(wire)
		if err == nil {
			g.rdb.Publish(context.Background(), cache.SessionEventsChannel, payload)
		}
	}
}

func (g *LocalGateway) deliver(ev Event) {
	g.mu.Lock()
	fns := make([]func(Event), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (g *LocalGateway) issueSession(ctx context.Context, account *models.Account) (*Session, error) {
	if g.jwtSecret == "" {
		return nil, models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}

	now := time.Now()
	expiresAt := now.Add(g.sessionTTL)
	jti := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.jwtSecret))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if g.rdb != nil {
		if err := g.rdb.Set(ctx, cache.SessionKey(jti), account.ID, g.sessionTTL).Err(); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &Session{
		UserID:    account.ID,
		Email:     account.Email,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// parseClaims validates signature, expiry, issuer, and audience. It returns
// nil for anything that should read as "no session".
func (g *LocalGateway) parseClaims(token string) jwt.MapClaims {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(g.jwtSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}
