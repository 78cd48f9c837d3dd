package middleware

import "github.com/gin-gonic/gin"

// identityHeader names the acting participant on each request. Authentication
// itself lives in an upstream collaborator; this layer only carries the
// identity it established.
const identityHeader = "X-Participant-ID"

// Identity copies the acting participant's ID into the request context so
// handlers can reject unauthenticated access to ledger views and mutations.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(identityHeader); id != "" {
			c.Set("participantID", id)
		}
		c.Next()
	}
}
