package middlewares

const (
	ctxUserIDKey   = "auth.userID"
	ctxUsernameKey = "auth.username"
	ctxSIDKey      = "auth.sid"
)
