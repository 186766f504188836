package clinical

// Role distinguishes the two kinds of authenticated users.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// User is an identity record from the users collection.
type User struct {
	ID           string `dynamodbav:"id" json:"id"`
	Email        string `dynamodbav:"email" json:"email"`
	Name         string `dynamodbav:"name" json:"name"`
	Role         Role   `dynamodbav:"role" json:"role"`
	PasswordHash string `dynamodbav:"passwordHash,omitempty" json:"passwordHash,omitempty"`
}

// Actor is the authenticated user driving an operation. The core only
// consumes the id/role pair.
type Actor struct {
	ID   string `dynamodbav:"id" json:"id"`
	Role Role   `dynamodbav:"role" json:"role"`
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
