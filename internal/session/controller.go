// Package session drives the login/dashboard flow for one panel user.
//
// A Controller owns the current user record and the view state derived from
// it. Frontends call SubmitCredentials and Logout and render View().
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"umspanel/internal/authclient"
	"umspanel/internal/dashboard"
	"umspanel/internal/profile"
)

// Messages shown on the login form.
const (
	MsgFillAllFields      = "Please fill all fields"
	MsgInvalidCredentials = "Invalid credentials. Please check your ID and password."
	MsgServerUnreachable  = "Unable to connect to server. Please check if the backend is running."
)

var (
	// ErrValidation is returned when a required login field is empty.
	ErrValidation = errors.New("all login fields are required")
	// ErrSubmitInFlight is returned when a login is already waiting on the backend.
	ErrSubmitInFlight = errors.New("login already in progress")
	// ErrAlreadyLoggedIn is returned when submitting while the dashboard is shown.
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

// Authenticator checks credentials against the authentication backend.
type Authenticator interface {
	Login(ctx context.Context, creds authclient.Credentials) (*profile.UserProfile, error)
}

// State is the login state of a session.
type State int

const (
	LoggedOut State = iota
	AuthPending
	LoggedIn
)

func (s State) String() string {
	switch s {
	case AuthPending:
		return "auth_pending"
	case LoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// Outcome classifies how a submission ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeRejected       Outcome = "rejected"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeInvalid        Outcome = "invalid"
)

// Result describes one finished submission. It never carries the password.
type Result struct {
	Outcome  Outcome
	UserType string
	UserID   string
	Message  string
	Duration time.Duration
}

// Observer is notified after every submission.
type Observer func(Result)

// Option configures a Controller.
type Option func(*Controller)

// WithBarDelay sets how long after login the progress bars move to their
// final width. Zero applies them immediately.
func WithBarDelay(d time.Duration) Option {
	return func(c *Controller) { c.barDelay = d }
}

// WithObserver registers a submission observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller is the session state machine. It is safe for concurrent use.
type Controller struct {
	auth     Authenticator
	barDelay time.Duration
	observer Observer

	mu       sync.Mutex
	state    State
	user     *profile.UserProfile
	view     ViewState
	epoch    uint64
	barTimer *time.Timer
}

// New creates a logged-out controller.
func New(auth Authenticator, opts ...Option) *Controller {
	c := &Controller{
		auth:     auth,
		barDelay: 100 * time.Millisecond,
		view:     loginView(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current login state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns a copy of the logged-in profile, or nil.
func (c *Controller) CurrentUser() *profile.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.Clone()
}

// View returns a snapshot of what the frontend should display.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone(c.state)
}

// SubmitCredentials validates the form and asks the backend to log the user
// in. On success the session moves to the dashboard. Rejections and
// transport failures are shown on the form and returned as errors.
func (c *Controller) SubmitCredentials(ctx context.Context, userType, userID, password string) error {
	userID = strings.TrimSpace(userID)

	c.mu.Lock()
	switch c.state {
	case AuthPending:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case LoggedIn:
		c.mu.Unlock()
		return ErrAlreadyLoggedIn
	}

	c.view.hideMessages()
	c.view.Form = Form{UserType: userType, UserID: userID}

	if userType == "" || userID == "" || password == "" {
		c.view.showError(MsgFillAllFields)
		c.mu.Unlock()
		c.notify(Result{Outcome: OutcomeInvalid, UserType: userType, UserID: userID, Message: MsgFillAllFields})
		return ErrValidation
	}

	c.state = AuthPending
	c.view.Loading = true
	c.view.SubmitDisabled = true
	c.epoch++
	attempt := c.epoch
	c.mu.Unlock()

	start := time.Now()
	user, err := c.auth.Login(ctx, authclient.Credentials{UserType: userType, UserID: userID, Password: password})
	res := Result{UserType: userType, UserID: userID, Duration: time.Since(start)}
	if err == nil && user == nil {
		err = &authclient.RejectedError{}
	}

	if err != nil {
		res.Outcome, res.Message = classify(err)
	} else {
		res.Outcome = OutcomeSuccess
	}

	c.mu.Lock()
	if c.epoch != attempt {
		// Logged out while the request was in flight; the view is left alone.
		c.mu.Unlock()
		c.notify(res)
		return err
	}
	c.view.Loading = false
	c.view.SubmitDisabled = false

	if err != nil {
		c.state = LoggedOut
		c.view.showError(res.Message)
		c.mu.Unlock()
		c.notify(res)
		return err
	}

	c.state = LoggedIn
	c.user = user
	c.showDashboard()
	c.mu.Unlock()

	c.notify(res)
	return nil
}

// Logout clears the session and returns to the login form. Calling it while
// logged out is harmless.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopBars()
	c.epoch++
	c.user = nil
	c.state = LoggedOut
	c.view = loginView()
}

// showDashboard renders the current user and schedules the bar animation.
// Caller holds c.mu.
func (c *Controller) showDashboard() {
	d, ok := dashboard.Render(c.user.Clone())
	if !ok {
		return
	}
	c.view.View = ViewDashboard
	c.view.Dashboard = &d
	c.view.Bars = dashboard.ResetBars()

	c.stopBars()
	if c.barDelay <= 0 {
		c.view.Bars = d.Bars
		return
	}
	epoch := c.epoch
	c.barTimer = time.AfterFunc(c.barDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch == epoch && c.state == LoggedIn {
			c.view.Bars = d.Bars
		}
	})
}

func (c *Controller) stopBars() {
	if c.barTimer != nil {
		c.barTimer.Stop()
		c.barTimer = nil
	}
}

func (c *Controller) notify(res Result) {
	if c.observer != nil {
		c.observer(res)
	}
}

func classify(err error) (Outcome, string) {
	var rejected *authclient.RejectedError
	if errors.As(err, &rejected) {
		if rejected.Message != "" {
			return OutcomeRejected, rejected.Message
		}
		return OutcomeRejected, MsgInvalidCredentials
	}
	return OutcomeTransportError, MsgServerUnreachable
}
