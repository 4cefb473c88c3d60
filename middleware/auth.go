package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const emailKey = "Email"

// AuthRequired is a simple middleware to check the session.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get(emailKey)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// SessionEmail returns the email stored in the caller's cookie session.
func SessionEmail(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	value := session.Get(emailKey)
	email, ok := value.(string)
	if !ok || email == "" {
		return "", errors.New("no authenticated session")
	}
	return email, nil
}

// SetSessionEmail stores the email in the cookie session after login.
func SetSessionEmail(c *gin.Context, email string) error {
	session := sessions.Default(c)
	session.Set(emailKey, email)
	return session.Save()
}

// ClearSession deletes the session on logout.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Delete(emailKey)
	return session.Save()
}
