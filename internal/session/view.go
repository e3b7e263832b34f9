package session

import "umspanel/internal/dashboard"

// View names the screen that is visible.
type View string

const (
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
)

// Form holds the login form fields. The password is never kept.
type Form struct {
	UserType string `json:"user_type"`
	UserID   string `json:"user_id"`
}

// ViewState is everything a frontend needs to draw the panel.
type ViewState struct {
	View           View                 `json:"view"`
	State          string               `json:"state"`
	Form           Form                 `json:"form"`
	Error          string               `json:"error,omitempty"`
	ErrorVisible   bool                 `json:"error_visible"`
	Loading        bool                 `json:"loading"`
	SubmitDisabled bool                 `json:"submit_disabled"`
	Dashboard      *dashboard.Dashboard `json:"dashboard,omitempty"`
	Bars           dashboard.Bars       `json:"bars"`
}

func loginView() ViewState {
	return ViewState{View: ViewLogin, Bars: dashboard.ResetBars()}
}

func (v *ViewState) hideMessages() {
	v.Error = ""
	v.ErrorVisible = false
	v.Loading = false
}

func (v *ViewState) showError(msg string) {
	v.Error = msg
	v.ErrorVisible = true
}

func (v ViewState) clone(s State) ViewState {
	v.State = s.String()
	if v.Dashboard != nil {
		d := *v.Dashboard
		v.Dashboard = &d
	}
	return v
}
