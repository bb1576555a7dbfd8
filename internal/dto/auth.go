package dto

// LoginRequest authenticates an actor by email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token   string `json:"token"`
	ActorID string `json:"actorID"`
	Role    string `json:"role"`
}

// RegisterActorRequest creates a new actor account.
type RegisterActorRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	County   string `json:"county"`
}

// ActorResponse is the wire shape of an actor, without credentials.
type ActorResponse struct {
	ActorID string `json:"actorID"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	County  string `json:"county,omitempty"`
	Active  bool   `json:"active"`
}
