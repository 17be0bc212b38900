package domain

// Identity is the authenticated caller exposed to handlers. It is built per
// request and never mutated.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}
