package auth

import "github.com/phrazzld/blog-api/internal/domain"

// PublicUser is the only user representation sent to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SerializeUser strips everything but the public fields from user.
func SerializeUser(user *domain.User) PublicUser {
	return PublicUser{ID: user.ID, Username: user.Username}
}
