package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRoles(t *testing.T) {
	cases := []struct {
		name  string
		roles []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"empty", []string{}, []string{}},
		{"user", []string{"user"}, []string{StatusRead}},
		{"manager", []string{"manager"}, []string{StatusRead}},
		{"service", []string{"service"}, []string{AnalyticsRead, StatusRead}},
		{"admin", []string{"admin"}, []string{AnalyticsRead, StatusRead, UsersManage}},
		{"union dedupes", []string{"admin", "user", "service"}, []string{AnalyticsRead, StatusRead, UsersManage}},
		{"unknown ignored", []string{"superuser"}, []string{}},
		{"unknown mixed", []string{"superuser", "user"}, []string{StatusRead}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromRoles(tc.roles))
		})
	}
}

func TestFromRolesStableAcrossOrdering(t *testing.T) {
	a := FromRoles([]string{"admin", "service", "user"})
	b := FromRoles([]string{"user", "admin", "service"})
	assert.Equal(t, a, b)
}

func TestRolesSorted(t *testing.T) {
	assert.Equal(t, []string{"admin", "manager", "service", "user"}, Roles())
}
