package models

// UserRole identifies one of the three workflow actor roles.
type UserRole string

const (
	// RoleTeacher is the school contact maintaining rosters and signing
	// attendance sheets on the partner institution side.
	RoleTeacher UserRole = "TEACHER"
	// RoleInstructor is the program's assigned teaching staff.
	RoleInstructor UserRole = "INSTRUCTOR"
	// RoleAdmin has approve/reject authority over all document types.
	RoleAdmin UserRole = "ADMIN"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleTeacher, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor identifies who performed a workflow transition. Actors are only
// referenced by documents, never owned by them.
type Actor struct {
	Role UserRole `json:"role"`
	ID   string   `json:"id"`
	Name string   `json:"name"`
}
