package model

import "time"

// Delivery channels for one-time codes.
const (
    ChannelEmail = "email"
    ChannelSMS   = "sms"
)

// Purposes scope a code to the flow that issued it, so a code sent for
// email verification cannot be replayed into the recovery flow.
const (
    PurposeVerifyEmail = "verify_email"
    PurposeVerifyPhone = "verify_phone"
    PurposeLogin       = "login"
    PurposeRecovery    = "recovery"
)

// OtpCode models a row in the `otp_codes` table: one short-lived challenge
// scoped by (destination, purpose).  Only the digest of the code is stored.
// Multiple sends for the same destination/purpose may coexist; verification
// considers only the most recently created unconsumed row.  Once consumed
// the row is immutable.
//
// Fields:
//  ID          – UUID primary key.
//  UserID      – issuing user when known (empty for pre-registration sends).
//  Destination – email address or phone number the code was sent to.
//  Channel     – "email" or "sms".
//  CodeHash    – SHA-256 hex digest of the 6-digit code.
//  Purpose     – one of the Purpose* constants.
//  ExpiresAt   – expiry timestamp (5 minutes after issuance).
//  ConsumedAt  – when the code was successfully verified (nil until then).
//  Attempts    – count of failed verification attempts.
//  CreatedAt   – timestamp of creation.
type OtpCode struct {
    ID          string     // otp_codes.id
    UserID      string     // otp_codes.user_id (nullable)
    Destination string     // otp_codes.destination
    Channel     string     // otp_codes.channel
    CodeHash    string     // otp_codes.code_hash
    Purpose     string     // otp_codes.purpose
    ExpiresAt   time.Time  // otp_codes.expires_at
    ConsumedAt  *time.Time // otp_codes.consumed_at (nullable)
    Attempts    int        // otp_codes.attempts
    CreatedAt   time.Time  // otp_codes.created_at
}
