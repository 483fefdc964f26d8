package tallysdk

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" jsonschema:"required,minLength=1,maxLength=64"`
	Email    string `json:"email" jsonschema:"required,minLength=1,maxLength=254"`
	Password string `json:"password" jsonschema:"required,minLength=1,maxLength=1024"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	// Token is the signed bearer token
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ============================================================================
// Todo Types
// ============================================================================

// TodoItem is the wire form of a todo.
type TodoItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" jsonschema:"maxLength=512"`
	IsComplete bool   `json:"isComplete"`
}

// ============================================================================
// Errors and Health
// ============================================================================

// ErrorResponse is the body of a failed request that carries one.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}
