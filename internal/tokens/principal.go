package tokens

import "github.com/Skotchmaster/online_quiz/internal/models"

// Principal is the authenticated caller attached to a request.
type Principal interface {
	// Subject returns the user id, or false for principals without a
	// database row.
	Subject() (uint, bool)
	Username() string
	Role() string
}

type UserPrincipal struct {
	ID           uint
	Name         string
	ProfileImage string
	UserRole     string
}

func (p UserPrincipal) Subject() (uint, bool) { return p.ID, true }
func (p UserPrincipal) Username() string      { return p.Name }
func (p UserPrincipal) Role() string          { return p.UserRole }

// AdminPrincipal is the operator configured through the environment.
type AdminPrincipal struct {
	Name string
}

func (p AdminPrincipal) Subject() (uint, bool) { return 0, false }
func (p AdminPrincipal) Username() string      { return p.Name }
func (p AdminPrincipal) Role() string          { return models.RoleAdmin }

func IsAdmin(p Principal) bool {
	return p != nil && p.Role() == models.RoleAdmin
}
