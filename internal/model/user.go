package model

import "time"

// User statuses as stored in the `users.status` column.  Accounts start
// active; disabling an account blocks login without deleting history.
const (
    StatusActive   = "active"
    StatusDisabled = "disabled"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  Email and Phone are both
// unique when present; Phone may be empty for accounts registered with an
// email only.  Handlers define separate response types with JSON tags, so
// none are attached here.
//
// Fields:
//  ID           – UUID primary key of the user.
//  Email        – unique, lower-cased email address.
//  Phone        – unique phone number (empty when not supplied).
//  PasswordHash – bcrypt hashed password.
//  Status       – "active" or "disabled".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    Phone        string    // users.phone (nullable in the schema)
    PasswordHash string    // users.password_hash
    Status       string    // users.status
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Role represents a row in the `roles` table.  The catalog is fixed
// (admin, manager, user, service) and seeded idempotently at startup.
//
// Fields:
//  ID   – UUID identifier of the role.
//  Name – unique role name.
type Role struct {
    ID   string // roles.id
    Name string // roles.name
}
