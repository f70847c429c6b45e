package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest is the request body for logging in.
// Identifier is preferred; Username and Email are accepted for older clients.
type LoginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password"`
}

// LoginIdentifier returns Identifier if set, otherwise the field login looks up
func (r LoginRequest) LoginIdentifier(byEmail bool) string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case byEmail:
		return r.Email
	default:
		return r.Username
	}
}
