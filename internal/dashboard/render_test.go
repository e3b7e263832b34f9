package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umspanel/internal/profile"
)

func decode(t *testing.T, body string) *profile.UserProfile {
	t.Helper()
	var p profile.UserProfile
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func TestRenderNilIsNoop(t *testing.T) {
	d, ok := Render(nil)
	assert.False(t, ok)
	assert.Equal(t, Dashboard{}, d)
}

func TestRenderAttendance(t *testing.T) {
	d, ok := Render(decode(t, `{"name":"A","total_classes":20,"present":15,"absent":5}`))
	require.True(t, ok)

	assert.Equal(t, "20", d.TotalClasses)
	assert.Equal(t, "15", d.PresentClasses)
	assert.Equal(t, "5", d.AbsentClasses)
	assert.Equal(t, "75.0%", d.PresentPercent)
	assert.Equal(t, "25.0%", d.AbsentPercent)
	assert.Equal(t, Bars{Present: "75.0%", Absent: "25.0%"}, d.Bars)
}

func TestRenderZeroTotal(t *testing.T) {
	d, ok := Render(decode(t, `{"total_classes":0,"present":4,"absent":1}`))
	require.True(t, ok)

	assert.Equal(t, "0", d.TotalClasses)
	assert.Equal(t, "0.0%", d.PresentPercent)
	assert.Equal(t, "0.0%", d.AbsentPercent)
}

func TestRenderDefaults(t *testing.T) {
	d, ok := Render(decode(t, `{}`))
	require.True(t, ok)

	assert.Equal(t, "User", d.HeaderName)
	assert.Equal(t, "Student", d.HeaderRole)
	assert.Equal(t, PlaceholderPhoto, d.PhotoSrc)
	assert.Equal(t, "-", d.ProfileName)
	assert.Equal(t, "-", d.ProfileID)
	assert.Equal(t, "-", d.ProfileType)
	assert.Equal(t, "-", d.ProfileDept)
	assert.Equal(t, "-", d.ProfileEmail)
	assert.Equal(t, "24", d.TotalClasses)
	assert.Equal(t, "0", d.PresentClasses)
	assert.Equal(t, "0", d.AbsentClasses)
	assert.Equal(t, "0.0%", d.PresentPercent)
}

func TestRenderPhoto(t *testing.T) {
	dataURI := "data:image/png;base64,iVBORw0KGgo="
	d, _ := Render(decode(t, `{"photo":"`+dataURI+`"}`))
	assert.Equal(t, dataURI, d.PhotoSrc)

	d, _ = Render(decode(t, `{"photo":"https://cdn.example.com/u/7.jpg"}`))
	assert.Equal(t, "https://cdn.example.com/u/7.jpg", d.PhotoSrc)
}

func TestRenderRole(t *testing.T) {
	d, _ := Render(decode(t, `{"name":"Nadia","type":"staff","department":"EEE","email":"n@seu.edu","id":"S-9"}`))

	assert.Equal(t, "Nadia", d.HeaderName)
	assert.Equal(t, "Staff", d.HeaderRole)
	assert.Equal(t, "Staff", d.ProfileType)
	assert.Equal(t, "S-9", d.ProfileID)
	assert.Equal(t, "EEE", d.ProfileDept)
	assert.Equal(t, "n@seu.edu", d.ProfileEmail)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Student", Capitalize("student"))
	assert.Equal(t, "TEACHER", Capitalize("tEACHER"))
	assert.Equal(t, "-", Capitalize("-"))
	assert.Equal(t, "Éclair", Capitalize("éclair"))
}
