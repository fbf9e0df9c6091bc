// Package user defines platform identities and their roles.
package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
)

// Role gates access to the admin console.
type Role string

// Roles recognized by the platform.
const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleModerator
}

// CanManagePlatform reports whether the role grants admin-console access.
func (r Role) CanManagePlatform() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User represents a platform identity.
type User struct {
	ID          uuid.UUID
	Username    string
	Email       string
	Password    string // bcrypt hash
	PhoneNumber string // MSISDN used for M-Pesa, e.g. 254712345678
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Builder provides a fluent API for constructing User instances.
type Builder struct {
	id          uuid.UUID
	username    string
	email       string
	password    string
	phoneNumber string
	role        Role
	createdAt   time.Time
}

// New creates a Builder with a fresh UUID and the user role.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		role:      RoleUser,
		createdAt: time.Now(),
	}
}

// WithID sets the user ID, used for hydration.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithUsername sets the username. Mandatory.
func (b *Builder) WithUsername(u string) *Builder { b.username = u; return b }

// WithEmail sets the email. Mandatory.
func (b *Builder) WithEmail(e string) *Builder { b.email = e; return b }

// WithPassword sets the bcrypt password hash. Mandatory.
func (b *Builder) WithPassword(hash string) *Builder { b.password = hash; return b }

// WithPhoneNumber sets the mobile-money MSISDN.
func (b *Builder) WithPhoneNumber(p string) *Builder { b.phoneNumber = p; return b }

// WithRole sets the role. Defaults to user.
func (b *Builder) WithRole(r Role) *Builder { b.role = r; return b }

// WithCreatedAt sets the creation timestamp, used for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// Build validates invariants and returns the User.
func (b *Builder) Build() (*User, error) {
	if b.username == "" || b.email == "" || b.password == "" {
		return nil, common.ErrValidation
	}
	if !b.role.IsValid() {
		return nil, common.ErrValidation
	}
	return &User{
		ID:          b.id,
		Username:    b.username,
		Email:       b.email,
		Password:    b.password,
		PhoneNumber: b.phoneNumber,
		Role:        b.role,
		CreatedAt:   b.createdAt,
	}, nil
}
