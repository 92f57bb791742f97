package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// User is the single configured operator; there is no user table.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
}
