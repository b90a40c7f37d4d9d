// Package auth implements HTTP basic authentication with role checks for gin.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	sharederrors "github.com/Apurer/orders-api/internal/shared/errors"
)

// Role grants access to a group of endpoints.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleActuator Role = "ACTUATOR"
)

// AllRoles lists every role known to the service.
var AllRoles = []Role{RoleAdmin, RoleCustomer, RoleActuator}

// UserContextKey holds the authenticated username on the gin context.
const UserContextKey = "auth.user"

const realm = `Basic realm="orders"`

// User is a configured principal with a bcrypt password hash.
type User struct {
	Name         string
	PasswordHash []byte
	Roles        []Role
}

func (u User) has(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Config is the explicit security configuration handed to the router.
type Config struct {
	Disabled bool
	Users    []User
}

// NewUser hashes password with bcrypt.
func NewUser(name, password string, roles ...Role) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, errors.New("auth user name is required")
	}
	if password == "" {
		return User{}, fmt.Errorf("auth user %q needs a password", name)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password for %q: %w", name, err)
	}
	return User{Name: name, PasswordHash: hash, Roles: roles}, nil
}

// Authenticator checks basic credentials against the configured users.
type Authenticator struct {
	disabled  bool
	users     map[string]User
	responder *sharederrors.Responder
}

// NewAuthenticator indexes the configured users by name.
func NewAuthenticator(cfg Config) *Authenticator {
	a := &Authenticator{
		disabled:  cfg.Disabled,
		users:     make(map[string]User, len(cfg.Users)),
		responder: sharederrors.DefaultResponder,
	}
	for _, u := range cfg.Users {
		a.users[u.Name] = u
	}
	return a
}

// Authenticate returns the user for valid credentials.
func (a *Authenticator) Authenticate(name, password string) (User, bool) {
	user, ok := a.users[name]
	if !ok {
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return User{}, false
	}
	return user, true
}

// Require admits requests whose user holds at least one of roles.
// Missing or wrong credentials yield 401, a missing role yields 403.
func (a *Authenticator) Require(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || a.disabled {
			c.Next()
			return
		}
		name, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", realm)
			a.responder.Abort(c, sharederrors.ErrUnauthorized.WithDetail("basic credentials required"))
			return
		}
		user, ok := a.Authenticate(name, password)
		if !ok {
			c.Header("WWW-Authenticate", realm)
			a.responder.Abort(c, sharederrors.ErrUnauthorized.WithDetail("invalid credentials"))
			return
		}
		if !anyRole(user, roles) {
			a.responder.Abort(c, sharederrors.ErrForbidden.WithDetail("missing required role"))
			return
		}
		c.Set(UserContextKey, user.Name)
		c.Next()
	}
}

func anyRole(user User, roles []Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if user.has(role) {
			return true
		}
	}
	return false
}
