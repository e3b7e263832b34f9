package panel

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"umspanel/internal/audit"
	"umspanel/internal/auth"
	"umspanel/internal/authclient"
	"umspanel/internal/dashboard"
	"umspanel/internal/session"
)

// History lists past logins for the dashboard.
type History interface {
	ListByUser(ctx context.Context, userType, userID string, limit int) ([]audit.Event, error)
}

// Handler serves the login/dashboard panel.
type Handler struct {
	sessions *Registry
	history  History // nil when auditing is disabled
}

// New creates a handler over the session registry.
func New(sessions *Registry, history History) *Handler {
	return &Handler{sessions: sessions, history: history}
}

// Register mounts the panel routes. limit guards the login endpoints.
// The router must run auth.SessionCookie before these routes.
func (h *Handler) Register(r gin.IRouter, limit gin.HandlerFunc) {
	r.GET("/", h.Page)
	r.POST("/login", limit, h.LoginForm)
	r.POST("/logout", h.LogoutForm)

	api := r.Group("/api")
	api.GET("/state", h.State)
	api.POST("/login", limit, h.LoginJSON)
	api.POST("/logout", h.LogoutJSON)
	api.GET("/history", h.History)
}

func (h *Handler) controller(c *gin.Context) *session.Controller {
	return h.sessions.Get(auth.SessionID(c))
}

// Page renders whichever screen the session is on.
func (h *Handler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "panel.html", h.controller(c).View())
}

// LoginForm handles the HTML form post and redirects back to the page.
func (h *Handler) LoginForm(c *gin.Context) {
	ctrl := h.controller(c)
	_ = ctrl.SubmitCredentials(detached(c), c.PostForm("user_type"), c.PostForm("user_id"), c.PostForm("password"))
	c.Redirect(http.StatusSeeOther, "/")
}

// LogoutForm handles the logout button.
func (h *Handler) LogoutForm(c *gin.Context) {
	h.controller(c).Logout()
	c.Redirect(http.StatusSeeOther, "/")
}

// State returns the view state as JSON.
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller(c).View())
}

// LoginJSON runs a login from a JSON body shaped like the backend request.
func (h *Handler) LoginJSON(c *gin.Context) {
	var req authclient.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctrl := h.controller(c)
	err := ctrl.SubmitCredentials(detached(c), req.UserType, req.UserID, req.Password)
	c.JSON(loginStatus(err), ctrl.View())
}

// LogoutJSON logs out and returns the login view state.
func (h *Handler) LogoutJSON(c *gin.Context) {
	ctrl := h.controller(c)
	ctrl.Logout()
	c.JSON(http.StatusOK, ctrl.View())
}

// History returns the logged-in user's recent logins.
func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "login history disabled"})
		return
	}
	ctrl := h.controller(c)
	if ctrl.State() != session.LoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	form := ctrl.View().Form
	events, err := h.history.ListByUser(c.Request.Context(), form.UserType, form.UserID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func loginStatus(err error) int {
	var rejected *authclient.RejectedError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSubmitInFlight), errors.Is(err, session.ErrAlreadyLoggedIn):
		return http.StatusConflict
	case errors.As(err, &rejected):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// detached keeps the backend call alive if the browser goes away mid-login.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// Templates parses the embedded page templates for gin.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"photoSrc": photoSrc,
	}).ParseFS(templateFS, "templates/*.html"))
}

// photoSrc lets embedded image data through the URL sanitizer; anything else
// is escaped normally.
func photoSrc(src string) any {
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	if src == "" {
		return dashboard.PlaceholderPhoto
	}
	return src
}
