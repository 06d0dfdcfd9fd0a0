package http

import "github.com/labstack/echo/v4"

// Context keys set by the auth middleware
const (
	ContextKeyUserID   = "user_id"
	ContextKeyEmail    = "user_email"
	ContextKeyFullName = "user_full_name"
)

// actorEmail extracts the authenticated address from the request context.
// Empty only if the auth middleware did not run.
func actorEmail(c echo.Context) string {
	email, ok := c.Get(ContextKeyEmail).(string)
	if !ok {
		return ""
	}
	return email
}
