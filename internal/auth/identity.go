package auth

import "github.com/gin-gonic/gin"

// Identity is the authenticated caller passed explicitly into service calls.
// Services never read ambient request state.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsZero reports whether the identity carries no authenticated user.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// CallerFrom extracts the authenticated Identity stored by the auth middleware.
// It returns a zero Identity when the request is unauthenticated.
func CallerFrom(c *gin.Context) Identity {
	return Identity{
		UserID: getString(c, "userID"),
		Email:  getString(c, "userEmail"),
		Role:   getString(c, "userRole"),
	}
}

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
