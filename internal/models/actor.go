package models

// Actor is the database row shape for actors (staff and customers).
type Actor struct {
	ActorID      string `db:"actor_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Role         string `db:"role"`
	County       string `db:"county"`
	PasswordHash string `db:"password_hash"`
	Active       bool   `db:"active"`
	AuditFields
}
