// Package session tracks one client's authentication state and exposes it as
// a small reactive surface: a current state, a wait primitive, and a change
// feed.
package session

import (
	"context"
	"log/slog"
	"sync"

	"folio/internal/gateway"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
)

// Defaults written into a fresh profile at signup.
const (
	defaultProfessionalTitle = "New User"
	defaultShortDescription  = "Welcome to my portfolio"
)

// State is a point-in-time view of the controller. Loading is true only
// before the first session resolution completes.
type State struct {
	Session *gateway.Session
	Loading bool
}

// Controller owns the session of a single client. It resolves the initial
// session once, mirrors gateway lifecycle events into its own state, and
// fans state changes out to subscribers.
type Controller struct {
	gw       gateway.IdentityGateway
	profiles repository.PersonalInfoRepository
	logger   *slog.Logger

	mu          sync.Mutex
	session     *gateway.Session
	loading     bool
	token       string
	disposed    bool
	changed     chan struct{}
	subscribers map[int]chan State
	nextSubID   int
	unsub       gateway.Unsubscribe
}

// NewController returns a controller in the loading state. Call Initialize to
// resolve the client's existing session, if any.
func NewController(gw gateway.IdentityGateway, profiles repository.PersonalInfoRepository) *Controller {
	c := &Controller{
		gw:          gw,
		profiles:    profiles,
		logger:      middleware.Logger,
		loading:     true,
		changed:     make(chan struct{}),
		subscribers: make(map[int]chan State),
	}
	c.unsub = gw.Subscribe(c.onGatewayEvent)
	return c
}

// Initialize resolves the session behind token and clears the loading flag.
// A backend failure reads as "no session"; the controller still becomes
// ready so callers are never stuck on the loading state.
func (c *Controller) Initialize(ctx context.Context, token string) {
	session, err := c.gw.GetSession(ctx, token)
	if err != nil {
		c.logger.Warn("session resolution failed, treating as signed out", "error", err)
		session = nil
	}

	c.mu.Lock()
	c.token = token
	c.session = session
	c.loading = false
	c.notifyLocked()
	c.mu.Unlock()
}

// SignIn authenticates and adopts the session the gateway returns for THIS
// call. Gateway events are never used to adopt a session: every controller
// hears every client's sign-in, so correlating by event would let a
// concurrent login hand this client someone else's token.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	session, err := c.gw.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	c.adopt(session)
	return nil
}

// SignUp registers a new account, adopts its session, and seeds the public
// profile with the chosen username. A profile seeding failure is logged but
// does not undo the signup; the dashboard lets the user fill the profile in
// later.
func (c *Controller) SignUp(ctx context.Context, username, email, password string) error {
	session, err := c.gw.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	c.adopt(session)

	if c.profiles != nil {
		profile := &models.PersonalInfo{
			UserID:            session.UserID,
			Username:          username,
			Name:              username,
			ProfessionalTitle: defaultProfessionalTitle,
			ShortDescription:  defaultShortDescription,
		}
		if err := c.profiles.Create(ctx, profile); err != nil {
			c.logger.Warn("profile seeding failed after signup",
				"user_id", session.UserID, "error", err)
		}
	}
	return nil
}

// adopt installs a session this controller obtained directly from the
// gateway and notifies subscribers.
func (c *Controller) adopt(session *gateway.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || session == nil {
		return
	}
	c.session = copySession(session)
	c.token = session.Token
	c.notifyLocked()
}

// SignOut revokes the current session.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if err := c.gw.SignOut(ctx, token); err != nil {
		return err
	}

	// The gateway event normally clears state; do it directly as well in
	// case the revocation registry is unavailable.
	c.mu.Lock()
	if c.session != nil {
		c.session = nil
		c.token = ""
		c.notifyLocked()
	}
	c.mu.Unlock()
	return nil
}

// Current returns the controller's state. The session is a copy.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Session: copySession(c.session), Loading: c.loading}
}

// WaitForSession blocks until a session is present or ctx is done. It
// replaces fixed sleeps after sign-in with a readiness signal.
func (c *Controller) WaitForSession(ctx context.Context) (*gateway.Session, error) {
	for {
		c.mu.Lock()
		if c.session != nil {
			s := copySession(c.session)
			c.mu.Unlock()
			return s, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

// Subscribe returns a channel of state snapshots. Slow consumers miss
// intermediate states, never current ones. The returned function detaches
// the subscriber and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan State, 8)
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Dispose detaches the controller from the gateway and closes all
// subscriber channels. The controller is unusable afterwards.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	subs := c.subscribers
	c.subscribers = make(map[int]chan State)
	c.mu.Unlock()

	if c.unsub != nil {
		c.unsub()
	}
	for _, ch := range subs {
		close(ch)
	}
}

func (c *Controller) onGatewayEvent(ev gateway.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	switch ev.Type {
	case gateway.EventSignedIn:
		// Sign-ins are adopted from the direct gateway return value only;
		// events announce other clients' sign-ins, which are not ours.
		return
	case gateway.EventSignedOut:
		if c.session == nil {
			return
		}
		if ev.Session != nil && ev.Session.UserID != c.session.UserID {
			// Someone else signed out.
			return
		}
		// The same user can hold other live tokens (another tab), so check
		// whether OUR token is the one that was revoked before clearing.
		still, err := c.gw.GetSession(context.Background(), c.token)
		if err == nil && still != nil {
			return
		}
		c.session = nil
		c.token = ""
		c.notifyLocked()
	}
}

// notifyLocked broadcasts the current state. Caller holds c.mu.
func (c *Controller) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})

	state := State{Session: copySession(c.session), Loading: c.loading}
	for _, ch := range c.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}

func copySession(s *gateway.Session) *gateway.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
