package domain

// User is the authenticated account as reported by the processing service.
type User struct {
	Username string
	Email    string
	FullName string
}

// DisplayName prefers the full name, falling back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
