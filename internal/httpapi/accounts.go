package httpapi

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"restopos/backend/internal/domain"
)

// UserStore persists back-office accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
	SetUserActive(ctx context.Context, username string, active bool) error
}

type account struct {
	passwordHash string
	role         string
	active       bool
	createdAt    time.Time
}

func (acct account) staffUser(username string) domain.StaffUser {
	return domain.StaffUser{
		Username:  username,
		Role:      acct.role,
		Active:    acct.active,
		CreatedAt: acct.createdAt,
	}
}

// accountBook keeps an in-memory view of the user store. The view is reloaded
// when it is older than refreshEvery or when a lookup misses, so accounts
// added or disabled by another instance are picked up.
type accountBook struct {
	mu           sync.RWMutex
	store        UserStore
	byName       map[string]account
	loadedAt     time.Time
	refreshEvery time.Duration
	now          func() time.Time
}

func newAccountBook(userStore UserStore, refreshEvery time.Duration) *accountBook {
	return &accountBook{
		store:        userStore,
		byName:       make(map[string]account),
		refreshEvery: refreshEvery,
		now:          time.Now,
	}
}

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// load replaces the view with the store's accounts. Plain-text passwords met
// on the way are hashed and written back.
func (b *accountBook) load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		return err
	}

	loaded := make(map[string]account, len(users))
	for _, user := range users {
		username := normalizeUsername(user.Username)
		if username == "" {
			continue
		}
		hash := user.Password
		if !isPasswordHash(hash) {
			upgraded, err := hashPassword(hash)
			if err != nil {
				continue
			}
			hash = upgraded
			_ = b.store.UpdateUserPassword(ctx, username, hash)
		}
		loaded[username] = account{
			passwordHash: hash,
			role:         user.Role,
			active:       user.Active,
			createdAt:    user.CreatedAt,
		}
	}

	b.mu.Lock()
	b.byName = loaded
	b.loadedAt = b.now()
	b.mu.Unlock()
	return nil
}

func (b *accountBook) stale() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadedAt.IsZero() || b.now().Sub(b.loadedAt) > b.refreshEvery
}

// refresh reloads a stale view. A store failure leaves the previous view in
// place.
func (b *accountBook) refresh(ctx context.Context) {
	if b.stale() {
		_ = b.load(ctx)
	}
}

func (b *accountBook) lookup(ctx context.Context, username string) (account, bool) {
	b.refresh(ctx)
	if acct, ok := b.get(username); ok {
		return acct, true
	}
	if b.load(ctx) != nil {
		return account{}, false
	}
	return b.get(username)
}

func (b *accountBook) get(username string) (account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acct, ok := b.byName[username]
	return acct, ok
}

func (b *accountBook) put(username string, acct account) {
	b.mu.Lock()
	b.byName[username] = acct
	b.mu.Unlock()
}

func (b *accountBook) setActive(username string, active bool) (account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.byName[username]
	if !ok {
		return account{}, false
	}
	acct.active = active
	b.byName[username] = acct
	return acct, true
}

func (b *accountBook) withRole(role string) []domain.StaffUser {
	b.mu.RLock()
	result := make([]domain.StaffUser, 0, len(b.byName))
	for username, acct := range b.byName {
		if acct.role == role {
			result = append(result, acct.staffUser(username))
		}
	}
	b.mu.RUnlock()
	slices.SortFunc(result, func(x, y domain.StaffUser) int {
		return strings.Compare(x.Username, y.Username)
	})
	return result
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
