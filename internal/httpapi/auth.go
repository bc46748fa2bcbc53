package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	userStoreTimeout       = 3 * time.Second
	accountRefreshInterval = 30 * time.Second
	minUsernameLength      = 4
	minPasswordLength      = 6
)

// AuthManager signs in back-office users, issues their access tokens and
// checks the manager PIN that approves order modifications.
type AuthManager struct {
	tokens   tokenSigner
	accounts *accountBook
	// managerPIN is a bcrypt hash; empty disables PIN approval.
	managerPIN []byte
}

func NewAuthManager(secret string, tokenTTL time.Duration, managerPIN string, userStore UserStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	manager := &AuthManager{
		tokens:   tokenSigner{secret: []byte(secret), ttl: tokenTTL, now: time.Now},
		accounts: newAccountBook(userStore, accountRefreshInterval),
	}
	if pin := strings.TrimSpace(managerPIN); pin != "" {
		if hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost); err == nil {
			manager.managerPIN = hash
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), userStoreTimeout)
	defer cancel()
	_ = manager.accounts.load(ctx)
	return manager
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, userStoreTimeout)
	defer cancel()

	username := normalizeUsername(req.Username)
	acct, ok := a.accounts.lookup(ctx, username)
	if !ok || !verifyPassword(acct.passwordHash, req.Password) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if !acct.active {
		return domain.LoginResponse{}, ErrAccountInactive
	}

	actor := domain.Actor{
		Username:    username,
		Role:        acct.role,
		Permissions: domain.PermissionsFor(acct.role),
	}
	token, expiresAt, err := a.tokens.issue(actor)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		Role:        actor.Role,
		Permissions: actor.Permissions,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

// ParseToken verifies an access token and the account behind it. Tokens of
// disabled accounts, or of accounts whose role changed after issue, are
// rejected before they expire.
func (a *AuthManager) ParseToken(ctx context.Context, raw string) (domain.Actor, error) {
	actor, err := a.tokens.verify(raw)
	if err != nil {
		return domain.Actor{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, userStoreTimeout)
	defer cancel()
	acct, ok := a.accounts.lookup(ctx, actor.Username)
	switch {
	case !ok:
		return domain.Actor{}, fmt.Errorf("%w: unknown account", ErrInvalidToken)
	case !acct.active:
		return domain.Actor{}, ErrAccountInactive
	case acct.role != actor.Role:
		return domain.Actor{}, fmt.Errorf("%w: role changed", ErrInvalidToken)
	}
	return actor, nil
}

func (a *AuthManager) ValidateManagerPIN(pin string) bool {
	input := strings.TrimSpace(pin)
	if input == "" || len(a.managerPIN) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.managerPIN, []byte(input)) == nil
}

func validateStaffCredentials(username string, password string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", store.ErrInvalidInput, minUsernameLength)
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return fmt.Errorf("%w: username must not contain spaces", store.ErrInvalidInput)
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", store.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

func (a *AuthManager) CreateStaff(ctx context.Context, req domain.StaffCreateRequest) (domain.StaffUser, error) {
	username := normalizeUsername(req.Username)
	if err := validateStaffCredentials(username, req.Password); err != nil {
		return domain.StaffUser{}, err
	}
	if _, exists := a.accounts.lookup(ctx, username); exists {
		return domain.StaffUser{}, fmt.Errorf("%w: username already exists", store.ErrDuplicate)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return domain.StaffUser{}, fmt.Errorf("hash password: %w", err)
	}
	acct := account{
		passwordHash: hash,
		role:         domain.RoleStaff,
		active:       true,
		createdAt:    time.Now().UTC(),
	}
	if a.accounts.store != nil {
		err := a.accounts.store.CreateUser(ctx, domain.UserAccount{
			Username:  username,
			Password:  acct.passwordHash,
			Role:      acct.role,
			Active:    acct.active,
			CreatedAt: acct.createdAt,
		})
		if err != nil {
			return domain.StaffUser{}, err
		}
	}
	a.accounts.put(username, acct)
	return acct.staffUser(username), nil
}

// SetStaffActive enables or disables a staff account. Tokens already issued
// to a disabled account stop working on their next request.
func (a *AuthManager) SetStaffActive(ctx context.Context, username string, active bool) (domain.StaffUser, error) {
	username = normalizeUsername(username)
	acct, ok := a.accounts.lookup(ctx, username)
	if !ok {
		return domain.StaffUser{}, store.ErrNotFound
	}
	if acct.role != domain.RoleStaff {
		return domain.StaffUser{}, fmt.Errorf("%w: only staff accounts can be enabled or disabled", store.ErrInvalidInput)
	}
	if a.accounts.store != nil {
		if err := a.accounts.store.SetUserActive(ctx, username, active); err != nil {
			return domain.StaffUser{}, err
		}
	}
	acct, _ = a.accounts.setActive(username, active)
	return acct.staffUser(username), nil
}

func (a *AuthManager) ListStaff(ctx context.Context) []domain.StaffUser {
	a.accounts.refresh(ctx)
	return a.accounts.withRole(domain.RoleStaff)
}
