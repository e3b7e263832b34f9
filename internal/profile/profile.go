package profile

import (
	"encoding/json"
	"math"
	"strconv"
)

// Attendance defaults applied when the backend omits a count.
const (
	DefaultTotalClasses = 24
	DefaultPresent      = 0
	DefaultAbsent       = 0
)

// UserProfile is the user record returned by the authentication backend.
// Every field is optional; nil means the backend did not send a usable value.
type UserProfile struct {
	ID           *string `json:"id,omitempty"`
	Name         *string `json:"name,omitempty"`
	Type         *string `json:"type,omitempty"`
	Department   *string `json:"department,omitempty"`
	Email        *string `json:"email,omitempty"`
	Photo        *string `json:"photo,omitempty"`
	TotalClasses *int    `json:"total_classes,omitempty"`
	Present      *int    `json:"present,omitempty"`
	Absent       *int    `json:"absent,omitempty"`
}

// UnmarshalJSON decodes a profile leniently: a field with the wrong JSON type
// or an out-of-range count is dropped instead of failing the whole record.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = UserProfile{
		ID:           stringField(raw["id"]),
		Name:         stringField(raw["name"]),
		Type:         stringField(raw["type"]),
		Department:   stringField(raw["department"]),
		Email:        stringField(raw["email"]),
		Photo:        stringField(raw["photo"]),
		TotalClasses: countField(raw["total_classes"]),
		Present:      countField(raw["present"]),
		Absent:       countField(raw["absent"]),
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate the session's record.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	return &UserProfile{
		ID:           cloneString(p.ID),
		Name:         cloneString(p.Name),
		Type:         cloneString(p.Type),
		Department:   cloneString(p.Department),
		Email:        cloneString(p.Email),
		Photo:        cloneString(p.Photo),
		TotalClasses: cloneInt(p.TotalClasses),
		Present:      cloneInt(p.Present),
		Absent:       cloneInt(p.Absent),
	}
}

// Attendance holds attendance counts with defaults applied.
type Attendance struct {
	Total   int
	Present int
	Absent  int
}

// Attendance resolves the attendance counts, substituting defaults for
// missing values.
func (p *UserProfile) Attendance() Attendance {
	a := Attendance{Total: DefaultTotalClasses, Present: DefaultPresent, Absent: DefaultAbsent}
	if p == nil {
		return a
	}
	if p.TotalClasses != nil {
		a.Total = *p.TotalClasses
	}
	if p.Present != nil {
		a.Present = *p.Present
	}
	if p.Absent != nil {
		a.Absent = *p.Absent
	}
	return a
}

// PresentPercentage is present/total*100 rounded to one decimal, 0 when total is 0.
func (a Attendance) PresentPercentage() float64 { return percentage(a.Present, a.Total) }

// AbsentPercentage is absent/total*100 rounded to one decimal, 0 when total is 0.
func (a Attendance) AbsentPercentage() float64 { return percentage(a.Absent, a.Total) }

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	v := float64(part) / float64(total) * 100
	// Round through the one-decimal string form so the number matches what is displayed.
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return rounded
}

// FormatPercent renders a percentage with one decimal place and a % suffix.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	return &s
}

func countField(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
