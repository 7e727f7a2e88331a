package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayaan09TTT/tradeforge/internal/apperr"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/store"
)

// Directory owns the accounts and sessions keyspaces. Email uniqueness is
// enforced through a dedicated email -> account id index bucket written in
// the same transaction as the account record.
type Directory struct {
	kv         store.KV
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewDirectory(kv store.KV, jwtSecret string, sessionTTL time.Duration) *Directory {
	return &Directory{kv: kv, jwtSecret: []byte(jwtSecret), sessionTTL: sessionTTL}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (in *RegisterInput) validate() error {
	ve := apperr.New(apperr.CodeValidation, "invalid registration data")
	ok := true
	if !strings.Contains(in.Email, "@") {
		ve.WithDetail("email", "a valid email is required")
		ok = false
	}
	if strings.TrimSpace(in.Name) == "" {
		ve.WithDetail("name", "name is required")
		ok = false
	}
	if len(in.Password) < 6 {
		ve.WithDetail("password", "password must be at least 6 characters")
		ok = false
	}
	if ok {
		return nil
	}
	return ve
}

// Register creates an account and issues a session for it. Email matching is
// case-sensitive exact match.
func (d *Directory) Register(ctx context.Context, in RegisterInput) (*Account, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	acct := &Account{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		Rating:       5.0,
		Verified:     false,
		Role:         RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = d.kv.Update(ctx, func(tx store.Tx) error {
		var existing string
		err := tx.Get(store.BucketAccountEmails, acct.Email, &existing)
		if err == nil {
			return apperr.New(apperr.CodeDuplicateEmail, "email already in use")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.Put(store.BucketAccounts, acct.ID, acct); err != nil {
			return err
		}
		return tx.Put(store.BucketAccountEmails, acct.Email, acct.ID)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := d.issueSession(ctx, acct)
	if err != nil {
		return nil, "", err
	}
	logger.Log.Info("account registered", zap.String("account_id", acct.ID))
	return acct, token, nil
}

// Login verifies the stored credential and issues a fresh session. Unknown
// email and wrong password are indistinguishable to the caller.
func (d *Directory) Login(ctx context.Context, email, password string) (*Account, string, error) {
	invalid := apperr.New(apperr.CodeInvalidCredentials, "invalid email or password")

	var acct Account
	err := d.kv.View(ctx, func(tx store.Tx) error {
		var id string
		if err := tx.Get(store.BucketAccountEmails, email, &id); err != nil {
			return err
		}
		return tx.Get(store.BucketAccounts, id, &acct)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, "", invalid
	}

	token, err := d.issueSession(ctx, &acct)
	if err != nil {
		return nil, "", err
	}
	return &acct, token, nil
}

func (d *Directory) issueSession(ctx context.Context, acct *Account) (string, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		ExpiresAt: now.Add(d.sessionTTL),
		CreatedAt: now,
	}
	err := d.kv.Update(ctx, func(tx store.Tx) error {
		return tx.Put(store.BucketSessions, sess.ID, sess)
	})
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"user_id":    acct.ID,
		"session_id": sess.ID,
		"role":       acct.Role,
		"exp":        sess.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(d.jwtSecret)
}

func (d *Directory) parseToken(token string) (sessionID, accountID string, err error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return d.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", apperr.New(apperr.CodeNotAuthenticated, "invalid or expired token")
	}
	sessionID, _ = claims["session_id"].(string)
	accountID, _ = claims["user_id"].(string)
	if sessionID == "" || accountID == "" {
		return "", "", apperr.New(apperr.CodeNotAuthenticated, "invalid token claims")
	}
	return sessionID, accountID, nil
}

// CurrentSession resolves a bearer token to its account. The token must be
// signed, unexpired, and backed by a live session record.
func (d *Directory) CurrentSession(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, apperr.New(apperr.CodeNotAuthenticated, "missing token")
	}
	sessionID, accountID, err := d.parseToken(token)
	if err != nil {
		return nil, err
	}

	var acct Account
	err = d.kv.View(ctx, func(tx store.Tx) error {
		var sess Session
		if err := tx.Get(store.BucketSessions, sessionID, &sess); err != nil {
			return err
		}
		if sess.AccountID != accountID || time.Now().After(sess.ExpiresAt) {
			return store.ErrNotFound
		}
		return tx.Get(store.BucketAccounts, accountID, &acct)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.CodeNotAuthenticated, "session revoked or expired")
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// Logout deletes the session record behind the token. Idempotent: a token
// that no longer resolves is not an error.
func (d *Directory) Logout(ctx context.Context, token string) error {
	sessionID, _, err := d.parseToken(token)
	if err != nil {
		return nil
	}
	return d.kv.Update(ctx, func(tx store.Tx) error {
		return tx.Delete(store.BucketSessions, sessionID)
	})
}

type UpdateInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile merges the provided fields and bumps the updated timestamp.
func (d *Directory) UpdateProfile(ctx context.Context, accountID string, in UpdateInput) (*Account, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.New(apperr.CodeValidation, "invalid profile data").
			WithDetail("name", "name cannot be empty")
	}
	return d.mutate(ctx, accountID, func(acct *Account) error {
		if in.Name != nil {
			acct.Name = strings.TrimSpace(*in.Name)
		}
		if in.Phone != nil {
			acct.Phone = *in.Phone
		}
		return nil
	})
}

// Verify marks the account verified.
func (d *Directory) Verify(ctx context.Context, accountID string) (*Account, error) {
	return d.mutate(ctx, accountID, func(acct *Account) error {
		acct.Verified = true
		return nil
	})
}

// ChangePassword verifies the old password before storing a new hash.
func (d *Directory) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.New(apperr.CodeValidation, "invalid password").
			WithDetail("password", "password must be at least 6 characters")
	}
	_, err := d.mutate(ctx, accountID, func(acct *Account) error {
		if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(oldPassword)) != nil {
			return apperr.New(apperr.CodeInvalidCredentials, "current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		acct.PasswordHash = string(hash)
		return nil
	})
	return err
}

// Get returns the account by id.
func (d *Directory) Get(ctx context.Context, accountID string) (*Account, error) {
	var acct Account
	err := store.GetOne(ctx, d.kv, store.BucketAccounts, accountID, &acct)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (d *Directory) mutate(ctx context.Context, accountID string, fn func(*Account) error) (*Account, error) {
	var acct Account
	err := d.kv.Update(ctx, func(tx store.Tx) error {
		if err := tx.Get(store.BucketAccounts, accountID, &acct); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeNotFound, "user not found")
			}
			return err
		}
		if err := fn(&acct); err != nil {
			return err
		}
		acct.UpdatedAt = time.Now().UTC()
		return tx.Put(store.BucketAccounts, acct.ID, &acct)
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
