package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalFullProfile(t *testing.T) {
	var p UserProfile
	err := json.Unmarshal([]byte(`{
		"id": "2021-1-60-001",
		"name": "Ayesha",
		"type": "student",
		"department": "CSE",
		"email": "ayesha@seu.edu",
		"photo": "https://cdn.example.com/a.jpg",
		"total_classes": 20,
		"present": 15,
		"absent": 5
	}`), &p)
	require.NoError(t, err)

	require.NotNil(t, p.Name)
	assert.Equal(t, "Ayesha", *p.Name)
	assert.Equal(t, "CSE", *p.Department)
	assert.Equal(t, Attendance{Total: 20, Present: 15, Absent: 5}, p.Attendance())
}

func TestUnmarshalDegradesBadFields(t *testing.T) {
	var p UserProfile
	err := json.Unmarshal([]byte(`{
		"name": 42,
		"email": "",
		"photo": null,
		"total_classes": "twenty",
		"present": -3,
		"absent": 2.5
	}`), &p)
	require.NoError(t, err)

	assert.Nil(t, p.Name)
	assert.Nil(t, p.Email)
	assert.Nil(t, p.Photo)
	assert.Nil(t, p.TotalClasses)
	assert.Nil(t, p.Present)
	assert.Nil(t, p.Absent)
	assert.Equal(t, Attendance{Total: DefaultTotalClasses}, p.Attendance())
}

func TestUnmarshalNullCountUsesDefault(t *testing.T) {
	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"total_classes": null}`), &p))
	assert.Equal(t, DefaultTotalClasses, p.Attendance().Total)
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	var p UserProfile
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &p))
}

func TestPercentages(t *testing.T) {
	tests := []struct {
		name    string
		a       Attendance
		present string
		absent  string
	}{
		{"three quarters", Attendance{Total: 20, Present: 15, Absent: 5}, "75.0%", "25.0%"},
		{"zero total", Attendance{Total: 0, Present: 3, Absent: 1}, "0.0%", "0.0%"},
		{"thirds", Attendance{Total: 3, Present: 1, Absent: 2}, "33.3%", "66.7%"},
		{"defaults", (*UserProfile)(nil).Attendance(), "0.0%", "0.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.present, FormatPercent(tt.a.PresentPercentage()))
			assert.Equal(t, tt.absent, FormatPercent(tt.a.AbsentPercentage()))
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	name := "Rafi"
	total := 10
	p := &UserProfile{Name: &name, TotalClasses: &total}

	c := p.Clone()
	*c.Name = "changed"
	*c.TotalClasses = 99

	assert.Equal(t, "Rafi", *p.Name)
	assert.Equal(t, 10, *p.TotalClasses)
	assert.Nil(t, (*UserProfile)(nil).Clone())
}
