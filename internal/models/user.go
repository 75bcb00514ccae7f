package models

// Roles assignable to portal accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a portal account (student applicant or administrator).
// Emails are normalized to lowercase before the record is written.
type User struct {
	BaseModel
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Course       string `json:"course,omitempty"`
}
