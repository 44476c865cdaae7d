package web

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionIDKey = "sid"
	ctxSessionID = "sessionID"

	flashSuccess = "success"
	flashWarning = "warning"
)

// withSessionID makes sure the visitor has a session id. The cookie only
// carries the id; the cart itself lives in the cart store under that id.
func withSessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		sid, _ := sess.Get(sessionIDKey).(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Set(sessionIDKey, sid)
			_ = sess.Save()
		}
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func flash(c *gin.Context, category, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, category)
	_ = sess.Save()
}

// takeFlashes pops all pending messages, grouped by category.
func takeFlashes(c *gin.Context) map[string][]string {
	sess := sessions.Default(c)
	out := map[string][]string{}
	for _, category := range []string{flashSuccess, flashWarning} {
		for _, f := range sess.Flashes(category) {
			if s, ok := f.(string); ok {
				out[category] = append(out[category], s)
			}
		}
	}
	_ = sess.Save()
	return out
}
