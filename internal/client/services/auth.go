// Package services contains the console's session and orchestration logic:
// the authentication lifecycle, credential persistence, the data panels and
// the admin roster. Nothing here renders output; the cli package does that.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/client"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/logging"
)

// AuthAPI is the part of the backend the controller talks to.
type AuthAPI interface {
	AuthStatus(ctx context.Context) (bool, error)
	Login(ctx context.Context, username string, password []byte) (client.LoginResult, error)
	Bootstrap(ctx context.Context, username string, password []byte) (client.LoginResult, error)
}

// AuthController drives the authentication lifecycle and owns the session
// credential. It implements client.Session so the gateway can read the token
// and report rejected sessions.
//
// Network calls are made without holding the lock, so Invalidate may be
// called from inside a Login that is in progress.
type AuthController struct {
	api   AuthAPI
	store CredentialStore
	log   logging.Logger

	mu            sync.Mutex
	phase         models.AuthPhase
	cred          models.Credential
	message       string
	draftUsername string
	listeners     []func(models.AuthPhase)
}

var _ client.Session = (*AuthController)(nil)

// NewAuthController returns a controller in the Checking phase. Call Start
// to load the stored credential and probe the backend.
func NewAuthController(api AuthAPI, store CredentialStore, log logging.Logger) *AuthController {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthController{
		api:   api,
		store: store,
		log:   log.With("component", "auth"),
		phase: models.PhaseChecking,
	}
}

// OnPhaseChange registers fn to be called after every phase change. fn runs
// without the controller lock held.
func (c *AuthController) OnPhaseChange(fn func(models.AuthPhase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Phase returns the current lifecycle phase.
func (c *AuthController) Phase() models.AuthPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Credential returns the current session credential.
func (c *AuthController) Credential() models.Credential {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred
}

// Token returns the session token, or "" when not authenticated.
func (c *AuthController) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred.Token
}

// Message returns the latest operator-facing auth message, e.g. why the
// console switched to bootstrap.
func (c *AuthController) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// DraftUsername returns the username of the last failed submission, kept as
// a default for the next prompt until the form is reset.
func (c *AuthController) DraftUsername() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftUsername
}

// Start loads the stored credential and begins the one-time admin probe in
// the background. The returned channel is closed once the probe outcome has
// been applied or discarded. If ctx is cancelled before the probe returns,
// its result is dropped.
func (c *AuthController) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	cred, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn(ctx, "stored credential unreadable", "error", err)
		cred = models.Credential{}
	}

	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()

	effects := c.dispatch(ctx, EventStarted{HasCredential: !cred.IsEmpty()})
	if !hasEffect(effects, EffectRunProbe) {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		hasAdmins, err := c.api.AuthStatus(ctx)
		if ctx.Err() != nil {
			c.log.Debug(ctx, "probe result discarded", "error", ctx.Err())
			return
		}
		hasCred := c.Token() != ""
		if err != nil {
			c.log.Warn(ctx, "admin probe failed", "error", err)
			c.dispatch(ctx, EventProbeFailed{HasCredential: hasCred})
			return
		}
		c.log.Debug(ctx, "admin probe done", "has_admins", hasAdmins)
		c.dispatch(ctx, EventProbeResolved{HasAdmins: hasAdmins, HasCredential: hasCred})
	}()

	return done
}

// Login authenticates with existing administrator credentials.
func (c *AuthController) Login(ctx context.Context, username string, password []byte) error {
	return c.submit(ctx, "login", c.api.Login, username, password)
}

// Bootstrap creates the first administrator and logs in as it.
func (c *AuthController) Bootstrap(ctx context.Context, username string, password []byte) error {
	return c.submit(ctx, "bootstrap", c.api.Bootstrap, username, password)
}

type authCall func(ctx context.Context, username string, password []byte) (client.LoginResult, error)

func (c *AuthController) submit(ctx context.Context, action string, call authCall, username string, password []byte) error {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		c.setMessage("username and password are required")
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	c.mu.Lock()
	c.draftUsername = username
	c.mu.Unlock()

	res, err := call(ctx, username, password)
	if err != nil {
		switch {
		case client.IsCode(err, client.CodeNoAdmins):
			c.dispatch(ctx, EventNoAdmins{})
			c.setMessage(client.Describe(err))
		case errors.Is(err, client.ErrUnauthorized):
			c.setMessage("invalid username or password")
		default:
			c.setMessage(client.Describe(err))
		}
		c.log.Info(ctx, action+" failed", "username", username, "outcome", client.OutcomeOf(err).String())
		return fmt.Errorf("%s: %w", action, err)
	}

	name := res.Username
	if name == "" {
		name = username
	}

	c.mu.Lock()
	c.cred = models.Credential{Token: res.Token, DisplayName: name}
	c.message = ""
	c.mu.Unlock()

	args := []any{"username", name}
	if res.ExpiresUnix != nil {
		args = append(args, "expires_unix", *res.ExpiresUnix)
	}
	c.log.Info(ctx, action+" succeeded", args...)

	c.dispatch(ctx, EventLoginSucceeded{})
	return nil
}

// Logout ends the session locally. The backend is not contacted.
func (c *AuthController) Logout(ctx context.Context) {
	c.setMessage("")
	c.dispatch(ctx, EventLogout{})
}

// Invalidate is the forced logout run when the backend rejects the token.
func (c *AuthController) Invalidate(ctx context.Context) {
	c.dispatch(ctx, EventSessionRejected{})
	if c.Phase() == models.PhaseLogin {
		c.setMessage("session expired or was rejected, please log in again")
	}
}

func (c *AuthController) setMessage(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = msg
}

// dispatch runs ev through Transition and applies the resulting effects,
// except RunProbe which is returned for Start to handle.
func (c *AuthController) dispatch(ctx context.Context, ev Event) []Effect {
	c.mu.Lock()
	prev := c.phase
	next, effects := Transition(prev, ev)
	c.phase = next

	for _, e := range effects {
		switch e {
		case EffectSaveCredential:
			if err := c.store.Save(ctx, c.cred); err != nil {
				c.log.Error(ctx, "save credential", "error", err)
			}
		case EffectClearCredential:
			c.cred = models.Credential{}
			if err := c.store.Save(ctx, c.cred); err != nil {
				c.log.Error(ctx, "clear credential", "error", err)
			}
		case EffectResetForm:
			c.draftUsername = ""
		}
	}
	listeners := append([]func(models.AuthPhase){}, c.listeners...)
	c.mu.Unlock()

	if prev != next {
		c.log.Info(ctx, "auth phase changed", "from", string(prev), "to", string(next))
		for _, fn := range listeners {
			fn(next)
		}
	}
	return effects
}

func hasEffect(effects []Effect, want Effect) bool {
	for _, e := range effects {
		if e == want {
			return true
		}
	}
	return false
}
