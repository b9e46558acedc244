package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/utils"
)

func newTestSigner(t *testing.T) *utils.Signer {
	t.Helper()
	signer, err := utils.NewSigner("HS256", "test-secret", "", "", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

func newExpiringSigner(t *testing.T, accessTTL time.Duration) *utils.Signer {
	t.Helper()
	signer, err := utils.NewSigner("HS256", "test-secret", "", "", accessTTL, 24*time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

// In-memory fakes implementing the store interfaces.  They mirror the SQL
// repositories' contracts, including the conditional-update semantics the
// services rely on (single-winner rotation, single-winner OTP consume).

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
		if u.Phone != "" && existing.Phone == u.Phone {
			return repository.ErrPhoneExists
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetByIdentifier(_ context.Context, identifier string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == identifier || (u.Phone != "" && u.Phone == identifier) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByPhone(_ context.Context, phone string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone != "" && u.Phone == phone {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken // by id
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]model.RefreshToken{}}
}

func (f *fakeTokenStore) Insert(_ context.Context, rec model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[rec.ID] = rec
	return nil
}

func (f *fakeTokenStore) FindActive(_ context.Context, id, tokenHash string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tokens[id]
	if !ok || rec.TokenHash != tokenHash || rec.RevokedAt != nil {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeTokenStore) Rotate(_ context.Context, oldID, oldHash string, next model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tokens[oldID]
	if !ok || rec.TokenHash != oldHash || rec.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	f.tokens[oldID] = rec
	f.tokens[next.ID] = next
	return nil
}

func (f *fakeTokenStore) RevokeByIDAndHash(_ context.Context, id, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tokens[id]
	if !ok || rec.TokenHash != tokenHash || rec.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	f.tokens[id] = rec
	return nil
}

func (f *fakeTokenStore) RevokeByIDForUser(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tokens[id]
	if !ok || rec.UserID != userID || rec.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	f.tokens[id] = rec
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for id, rec := range f.tokens {
		if rec.UserID == userID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
			f.tokens[id] = rec
		}
	}
	return nil
}

func (f *fakeTokenStore) active(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.tokens {
		if rec.UserID == userID && rec.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeRoleStore struct {
	mu          sync.Mutex
	roles       map[string]string   // name -> id
	assignments map[string][]string // user id -> role names
}

func newFakeRoleStore(names ...string) *fakeRoleStore {
	f := &fakeRoleStore{roles: map[string]string{}, assignments: map[string][]string{}}
	for i, name := range names {
		f.roles[name] = "role-" + name + "-" + string(rune('a'+i))
	}
	return f
}

func (f *fakeRoleStore) Ensure(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[name]; !ok {
		f.roles[name] = id
	}
	return nil
}

func (f *fakeRoleStore) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.roles))
	for name := range f.roles {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeRoleStore) FindByName(_ context.Context, name string) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.roles[name]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return model.Role{ID: id, Name: name}, nil
}

func (f *fakeRoleStore) RolesForUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.assignments[userID]...), nil
}

func (f *fakeRoleStore) Assign(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var name string
	for n, id := range f.roles {
		if id == roleID {
			name = n
			break
		}
	}
	if name == "" {
		return repository.ErrNotFound
	}
	for _, held := range f.assignments[userID] {
		if held == name {
			return nil
		}
	}
	f.assignments[userID] = append(f.assignments[userID], name)
	return nil
}

type fakeOtpStore struct {
	mu    sync.Mutex
	codes []model.OtpCode
}

func newFakeOtpStore() *fakeOtpStore { return &fakeOtpStore{} }

func (f *fakeOtpStore) Insert(_ context.Context, c model.OtpCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CreatedAt = time.Now().UTC()
	f.codes = append(f.codes, c)
	return nil
}

func (f *fakeOtpStore) LatestUnconsumed(_ context.Context, destination, purpose string) (model.OtpCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.Destination == destination && c.Purpose == purpose && c.ConsumedAt == nil {
			return c, nil
		}
	}
	return model.OtpCode{}, repository.ErrNotFound
}

func (f *fakeOtpStore) IncrementAttempts(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.codes {
		if f.codes[i].ID == id {
			f.codes[i].Attempts++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOtpStore) Consume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.codes {
		if f.codes[i].ID == id && f.codes[i].ConsumedAt == nil {
			now := time.Now().UTC()
			f.codes[i].ConsumedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeRecoveryStore struct {
	mu     sync.Mutex
	tokens map[string]model.RecoveryToken // by hash
}

func newFakeRecoveryStore() *fakeRecoveryStore {
	return &fakeRecoveryStore{tokens: map[string]model.RecoveryToken{}}
}

func (f *fakeRecoveryStore) Insert(_ context.Context, t model.RecoveryToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[t.TokenHash] = t
	return nil
}

func (f *fakeRecoveryStore) ConsumeByHash(_ context.Context, tokenHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok || t.ConsumedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
		return "", repository.ErrNotFound
	}
	now := time.Now().UTC()
	t.ConsumedAt = &now
	f.tokens[tokenHash] = t
	return t.UserID, nil
}

type fakeActivityStore struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

func newFakeActivityStore() *fakeActivityStore { return &fakeActivityStore{} }

func (f *fakeActivityStore) Insert(_ context.Context, e model.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeActivityStore) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingSender captures outgoing messages instead of delivering them.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

type sentMessage struct {
	Destination string
	Subject     string
	Body        string
}

func (r *recordingSender) Send(_ context.Context, destination, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return context.DeadlineExceeded
	}
	r.sent = append(r.sent, sentMessage{Destination: destination, Subject: subject, Body: body})
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordingSender) last() sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}
