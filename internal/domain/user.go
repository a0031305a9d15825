package domain

// User is the slice of a Discord user the features care about.
type User struct {
	ID       string
	Username string
	// DisplayName is the guild nickname or global name, falling back to Username.
	DisplayName string
	Bot         bool
}

// Name returns the best human-facing name for u.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
