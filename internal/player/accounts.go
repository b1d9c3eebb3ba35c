package player

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const NamespaceAccounts = "accounts"

var (
	ErrBadPassword     = errors.New("incorrect password")
	ErrInvalidUsername = errors.New("invalid username")

	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{1,15}$`)
)

// Store persists JSON documents by namespace and key.
type Store interface {
	Load(ns, key string, out any) (bool, error)
	Save(ns, key string, v any) error
}

// Account is the login record for one player.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// Accounts checks and creates bcrypt protected logins.
type Accounts struct {
	store Store
	cost  int
}

type AccountsOpt func(*Accounts)

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) AccountsOpt {
	return func(a *Accounts) {
		a.cost = cost
	}
}

func NewAccounts(store Store, opts ...AccountsOpt) *Accounts {
	a := &Accounts{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CharId is the stable player id for a username.
func CharId(username string) string {
	return strings.ToLower(username)
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Lookup returns the account for username, or nil when none exists.
func (a *Accounts) Lookup(username string) (*Account, error) {
	var acct Account
	found, err := a.store.Load(NamespaceAccounts, CharId(username), &acct)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &acct, nil
}

// Create stores a new account with a hashed password.
func (a *Accounts) Create(username, password string) (*Account, error) {
	if !ValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	acct := &Account{Username: username, PasswordHash: string(hash)}
	if err := a.store.Save(NamespaceAccounts, CharId(username), acct); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}
	return acct, nil
}

func (a *Account) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadPassword
	}
	return err
}

// Authenticate logs in an existing account or registers a new one.
func (a *Accounts) Authenticate(username, password string) (*Account, error) {
	if !ValidUsername(username) {
		return nil, ErrInvalidUsername
	}

	acct, err := a.Lookup(username)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return a.Create(username, password)
	}
	if err := acct.CheckPassword(password); err != nil {
		return nil, err
	}
	return acct, nil
}
