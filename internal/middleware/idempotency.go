package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedReply is the replayable result of an idempotent request.
type storedReply struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// captureWriter wraps gin.ResponseWriter to keep a copy of the body.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for mutating requests that carry an
// Idempotency-Key already seen, so a client retrying an expense creation or a
// status transition cannot apply it twice. Requests without the header pass
// through untouched, as do all requests when Redis is unavailable.
func Idempotency(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + c.Request.Method + ":" + c.FullPath() + ":" + key

		reply, err := loadReply(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			c.Next()
			return
		}
		if reply != nil {
			c.Data(reply.StatusCode, "application/json", reply.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// Server errors stay retryable; everything else is replayed as-is.
		if c.Writer.Status() < http.StatusInternalServerError {
			_ = saveReply(ctx, redisClient, cacheKey, &storedReply{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
			})
		}
	}
}

func loadReply(ctx context.Context, client *redis.Client, key string) (*storedReply, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var reply storedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func saveReply(ctx context.Context, client *redis.Client, key string, reply *storedReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
