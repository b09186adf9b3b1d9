package httpserver

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"

	"github.com/dc4eu/didengine/pkg/helpers"
)

func (s *Service) middlewareTraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("req_id", shortuuid.New())
		c.Header("req_id", c.GetString("req_id"))
		c.Next()
	}
}

func (s *Service) middlewareDuration() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		c.Set("duration", time.Since(start))
	}
}

func (s *Service) middlewareLogger() gin.HandlerFunc {
	log := s.logger.New("http")
	return func(c *gin.Context) {
		c.Next()
		log.Info("request", "status", c.Writer.Status(), "url", c.Request.URL.String(), "method", c.Request.Method, "req_id", c.GetString("req_id"))
	}
}

func (s *Service) middlewareCrash() gin.HandlerFunc {
	log := s.logger.New("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Trace("crash", "error", r, "url", c.Request.URL.Path, "method", c.Request.Method)
				c.JSON(500, gin.H{"data": nil, "error": helpers.NewError("internal_server_error")})
				c.Abort()
			}
		}()
		c.Next()
	}
}
