// Package permission maps role names to the permissions they grant.  The
// table is a fixed compile-time constant consumed read-only; there is no
// policy engine behind it.
package permission

import "sort"

// Permission names referenced by the role table and the route guards.
const (
    UsersManage   = "users.manage"
    StatusRead    = "status.read"
    AnalyticsRead = "analytics.read"
)

// rolePermissions is the authoritative role -> permissions table.
var rolePermissions = map[string][]string{
    "admin":   {UsersManage, StatusRead, AnalyticsRead},
    "manager": {StatusRead},
    "service": {StatusRead, AnalyticsRead},
    "user":    {StatusRead},
}

// FromRoles returns the deduplicated, sorted union of the permissions each
// role grants.  Unknown role names contribute nothing.  The function is
// pure: no I/O, no mutation of the table, stable output for any input
// ordering.
func FromRoles(roles []string) []string {
    set := make(map[string]struct{})
    for _, role := range roles {
        for _, perm := range rolePermissions[role] {
            set[perm] = struct{}{}
        }
    }
    out := make([]string, 0, len(set))
    for perm := range set {
        out = append(out, perm)
    }
    sort.Strings(out)
    return out
}

// Roles returns the role names known to the table, sorted.  Used by the
// seeding path to keep the catalog and the table in sync.
func Roles() []string {
    out := make([]string, 0, len(rolePermissions))
    for role := range rolePermissions {
        out = append(out, role)
    }
    sort.Strings(out)
    return out
}
