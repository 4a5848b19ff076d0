// Package session tracks the shopper currently signed in on one client and
// which usernames carry admin rights. Credentials are verified elsewhere;
// nothing here checks a password.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/store"
)

const (
	// BuiltinAdmin is privileged whatever its stored flag says.
	BuiltinAdmin = "admin"
	// LoginPath is where a shopper is sent after logging out.
	LoginPath = "login.html"
)

var ErrValidation = errors.New("validation")

type Manager struct {
	Store store.Store
	Bus   *events.Bus
	Scope string
	Now   func() time.Time
	Locks *store.Locks
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *Manager) SetCurrentUser(ctx context.Context, username string, isAdmin bool) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("username required: %w", ErrValidation)
	}

	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCurrentUser))()

	user := models.User{
		Username:  username,
		LoginTime: m.now(),
		IsAdmin:   isAdmin || username == BuiltinAdmin,
	}
	if err := store.SaveJSON(ctx, m.Store, store.KeyCurrentUser, user); err != nil {
		return models.User{}, err
	}
	if err := m.Store.Set(ctx, store.KeyLoggedIn, "true"); err != nil {
		return models.User{}, err
	}

	m.Bus.Publish(events.Event{
		Kind:   events.SessionStarted,
		Scope:  m.Scope,
		Notice: fmt.Sprintf("Welcome, %s", username),
	})
	return user, nil
}

// CurrentUser returns nil when nobody is signed in or the record is unreadable.
func (m *Manager) CurrentUser(ctx context.Context) *models.User {
	var user models.User
	found, err := store.LoadJSON(ctx, m.Store, store.KeyCurrentUser, &user)
	if err != nil {
		logging.FromContext(ctx).Warn("session_load_failed", "scope", m.Scope, "error", err)
		return nil
	}
	if !found || user.Username == "" {
		return nil
	}
	return &user
}

func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	v, ok, err := m.Store.Get(ctx, store.KeyLoggedIn)
	return err == nil && ok && v == "true"
}

func (m *Manager) IsAdmin(ctx context.Context) bool {
	user := m.CurrentUser(ctx)
	if user == nil {
		return false
	}
	return user.Username == BuiltinAdmin || user.IsAdmin
}

// Logout clears the current user and returns the login entry point.
func (m *Manager) Logout(ctx context.Context) (string, error) {
	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCurrentUser))()

	if err := m.Store.Delete(ctx, store.KeyCurrentUser); err != nil {
		return "", err
	}
	if err := m.Store.Delete(ctx, store.KeyLoggedIn); err != nil {
		return "", err
	}
	m.Bus.Publish(events.Event{Kind: events.SessionEnded, Scope: m.Scope})
	return LoginPath, nil
}

func (m *Manager) users(ctx context.Context) []models.User {
	var users []models.User
	if _, err := store.LoadJSON(ctx, m.Store, store.KeyUsers, &users); err != nil {
		logging.FromContext(ctx).Warn("users_load_failed", "scope", m.Scope, "error", err)
		return []models.User{}
	}
	return users
}

// AddAdminUser flags username as admin, registering it when unknown.
func (m *Manager) AddAdminUser(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required: %w", ErrValidation)
	}

	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyUsers))()

	users := m.users(ctx)
	found := false
	for i := range users {
		if users[i].Username == username {
			users[i].IsAdmin = true
			found = true
			break
		}
	}
	if !found {
		users = append(users, models.User{Username: username, IsAdmin: true})
	}
	return store.SaveJSON(ctx, m.Store, store.KeyUsers, users)
}

// AdminUsers lists flagged users; the built-in admin is always included.
func (m *Manager) AdminUsers(ctx context.Context) []models.User {
	admins := []models.User{}
	hasBuiltin := false
	for _, u := range m.users(ctx) {
		if !u.IsAdmin {
			continue
		}
		if u.Username == BuiltinAdmin {
			hasBuiltin = true
		}
		admins = append(admins, u)
	}
	if !hasBuiltin {
		admins = append(admins, models.User{Username: BuiltinAdmin, IsAdmin: true})
	}
	return admins
}
