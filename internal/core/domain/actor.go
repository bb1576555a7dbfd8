package domain

// Actor represents an authenticated person who can issue workflow commands:
// a staff employee or a customer (youth/donor).
type Actor struct {
	ActorID      string `json:"actorID"` // Primary key (UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	County       string `json:"county"`
	PasswordHash string `json:"-"` // bcrypt hash, never serialized
	Active       bool   `json:"active"`
	AuditFields
}
