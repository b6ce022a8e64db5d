// Package auth holds the credential and tenant state that authorised calls
// depend on. The REST client mutates it on login and token refresh; the
// realtime components read it through narrow credential interfaces.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Roles a user can hold within a company.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
	RoleViewer   = "VIEWER"
)

// User is the authenticated account.
type User struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Superadmin bool   `json:"is_superadmin"`
}

// Company is one tenant the user belongs to, with the role held there.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Role string `json:"role,omitempty"`
}

type state struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	User         *User     `json:"user"`
	Companies    []Company `json:"companies"`
	CompanyID    int       `json:"company_id"`
	Role         string    `json:"role"`
}

// Context is the mutable auth/tenant state. Zero value is a logged-out
// context. Safe for concurrent use.
type Context struct {
	mu sync.RWMutex
	s  state
}

// SetLogin installs a fresh login result. The first company becomes the
// selected tenant.
func (c *Context) SetLogin(token, refreshToken string, user *User, companies []Company) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = state{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
		Companies:    companies,
	}
	if len(companies) > 0 {
		c.s.CompanyID = companies[0].ID
		c.s.Role = companies[0].Role
	}
}

// SetToken replaces the access token after a refresh.
func (c *Context) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Token = token
}

// SetCompany selects the tenant scope. An empty role is resolved from the
// company list.
func (c *Context) SetCompany(id int, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.CompanyID = id
	if role == "" {
		for _, co := range c.s.Companies {
			if co.ID == id {
				role = co.Role
				break
			}
		}
	}
	c.s.Role = role
}

// Logout clears all state.
func (c *Context) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = state{}
}

// Token returns the current access token, empty when logged out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Token
}

// RefreshToken returns the current refresh token.
func (c *Context) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.RefreshToken
}

// CompanyID returns the selected tenant, zero when none is selected.
func (c *Context) CompanyID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.CompanyID
}

// User returns the authenticated user, nil when logged out.
func (c *Context) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.User
}

// Companies returns the tenants the user belongs to.
func (c *Context) Companies() []Company {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Company, len(c.s.Companies))
	copy(out, c.s.Companies)
	return out
}

// Credentials returns the bearer token and tenant id required by the
// realtime components. ok is false unless both are present; callers treat
// that as a silent no-op, not an error.
func (c *Context) Credentials() (token string, companyID int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.s.Token == "" || c.s.CompanyID == 0 {
		return "", 0, false
	}
	return c.s.Token, c.s.CompanyID, true
}

// LoggedIn reports whether an access token is present.
func (c *Context) LoggedIn() bool {
	return c.Token() != ""
}

// IsAdmin reports whether the user administers the selected company.
func (c *Context) IsAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.superadmin() || c.s.Role == RoleAdmin
}

// IsOperator reports whether the user can run mutating operations.
func (c *Context) IsOperator() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.superadmin() || c.s.Role == RoleAdmin || c.s.Role == RoleOperator
}

func (c *Context) superadmin() bool {
	return c.s.User != nil && c.s.User.Superadmin
}

// Save persists the context so a later run starts logged in.
func (c *Context) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.s, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("auth: marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("auth: create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("auth: write session: %w", err)
	}
	return nil
}

// Load hydrates the context from a previously saved session. A missing file
// leaves the context logged out without error.
func (c *Context) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth: read session: %w", err)
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("auth: parse session: %w", err)
	}
	c.mu.Lock()
	c.s = s
	c.mu.Unlock()
	return nil
}
