// Package dashboard projects a user profile onto the fields shown after login.
package dashboard

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"umspanel/internal/profile"
)

// PlaceholderPhoto is shown when the profile carries no photo.
const PlaceholderPhoto = "https://via.placeholder.com/150/cccccc/666666?text=No+Photo"

// EmptyBar is the progress-bar width before animation and after logout.
const EmptyBar = "0%"

const (
	missing     = "-"
	defaultName = "User"
	defaultRole = "student"
)

// Dashboard is the display-ready projection of a profile.
type Dashboard struct {
	HeaderName string `json:"header_name"`
	HeaderRole string `json:"header_role"`
	PhotoSrc   string `json:"photo_src"`

	ProfileName  string `json:"profile_name"`
	ProfileID    string `json:"profile_id"`
	ProfileType  string `json:"profile_type"`
	ProfileDept  string `json:"profile_department"`
	ProfileEmail string `json:"profile_email"`

	TotalClasses   string `json:"total_classes"`
	PresentClasses string `json:"present_classes"`
	AbsentClasses  string `json:"absent_classes"`
	PresentPercent string `json:"present_percent"`
	AbsentPercent  string `json:"absent_percent"`

	// Bars are the widths the progress bars animate to.
	Bars Bars `json:"-"`
}

// Bars holds progress-bar widths as CSS percentages.
type Bars struct {
	Present string `json:"present"`
	Absent  string `json:"absent"`
}

// ResetBars returns bars at zero width.
func ResetBars() Bars {
	return Bars{Present: EmptyBar, Absent: EmptyBar}
}

// Render projects p onto display fields. It reports false and renders
// nothing when p is nil. Missing fields degrade to defaults.
func Render(p *profile.UserProfile) (Dashboard, bool) {
	if p == nil {
		return Dashboard{}, false
	}

	att := p.Attendance()
	present := profile.FormatPercent(att.PresentPercentage())
	absent := profile.FormatPercent(att.AbsentPercentage())

	photo := PlaceholderPhoto
	if p.Photo != nil {
		photo = *p.Photo
	}

	return Dashboard{
		HeaderName: or(p.Name, defaultName),
		HeaderRole: Capitalize(or(p.Type, defaultRole)),
		PhotoSrc:   photo,

		ProfileName:  or(p.Name, missing),
		ProfileID:    or(p.ID, missing),
		ProfileType:  Capitalize(or(p.Type, missing)),
		ProfileDept:  or(p.Department, missing),
		ProfileEmail: or(p.Email, missing),

		TotalClasses:   strconv.Itoa(att.Total),
		PresentClasses: strconv.Itoa(att.Present),
		AbsentClasses:  strconv.Itoa(att.Absent),
		PresentPercent: present,
		AbsentPercent:  absent,

		Bars: Bars{Present: present, Absent: absent},
	}, true
}

// Capitalize upper-cases the first character and leaves the rest unchanged.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func or(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
