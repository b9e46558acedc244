package model

import "time"

// Audit actions recorded in activity_logs.  The analytics queries group by
// these values, so they are constants rather than free-form strings.
const (
    ActionRegister         = "REGISTER"
    ActionLoginSuccess     = "LOGIN_SUCCESS"
    ActionLoginFailure     = "LOGIN_FAILURE"
    ActionLogout           = "LOGOUT"
    ActionRecoverySuccess  = "PASSWORD_RECOVERY_SUCCESS"
    ActionRoleAssigned     = "ROLE_ASSIGNED"
)

// ActivityLog models a row in the append-only `activity_logs` table.
// Rows are inserted and never mutated.
type ActivityLog struct {
    ID        uint64    // activity_logs.id
    UserID    string    // activity_logs.user_id (nullable, empty when unknown)
    Action    string    // activity_logs.action
    IP        string    // activity_logs.ip
    UA        string    // activity_logs.ua
    Metadata  string    // activity_logs.metadata (JSON text, may be empty)
    CreatedAt time.Time // activity_logs.created_at
}
