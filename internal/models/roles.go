package models

// Role is the platform-wide user role.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Rank maps roles onto the fixed privilege ladder used by minimum-role
// checks. Unknown roles rank 0 and fail every check at student or above.
func (r Role) Rank() int {
	switch r {
	case RoleStudent:
		return 1
	case RoleInstructor:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) IsValid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r sits at or above min on the privilege ladder.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank() && min.Rank() > 0
}
