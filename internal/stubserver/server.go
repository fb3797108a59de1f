// Package stubserver is an in-memory stand-in for the document chat backend.
// It accepts uploads and answers chat turns with a canned reply that names
// the uploaded document, which is enough to drive the client end to end
// without a model.
package stubserver

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"notebook/internal/document"
	"notebook/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload records one accepted document.
type Upload struct {
	Filename string
	Size     int64
	Kind     document.Kind
	At       time.Time
}

// Server holds uploads keyed by API key.
type Server struct {
	mu      sync.RWMutex
	uploads map[string]Upload
	log     *zap.Logger
}

// New creates an empty stub backend.
func New() *Server {
	return &Server{
		uploads: make(map[string]Upload),
		log:     logging.Get(logging.CategoryStub),
	}
}

// Handler returns the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(s.recovery(), requestID(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.POST("/upload_pdf", s.upload)
	api.POST("/pdf_chat", s.chat)
	return r
}

// Upload returns the document recorded for apiKey.
func (s *Server) Upload(apiKey string) (Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[apiKey]
	return u, ok
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) upload(c *gin.Context) {
	apiKey := c.PostForm("api_key")
	if strings.TrimSpace(apiKey) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid API key"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file provided"})
		return
	}
	defer file.Close()

	kind, err := document.KindOf(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only PDF, Markdown and text files are allowed"})
		return
	}

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to read file"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File is empty"})
		return
	}

	u := Upload{Filename: filepath.Base(header.Filename), Size: n, Kind: kind, At: time.Now()}
	s.mu.Lock()
	s.uploads[apiKey] = u
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document processed successfully",
		"filename": u.Filename,
	})
}

type chatRequest struct {
	UserMessage string `json:"user_message" binding:"required"`
	APIKey      string `json:"api_key" binding:"required"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	u, ok := s.Upload(req.APIKey)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No document uploaded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": Answer(u, req.UserMessage)})
}

// Answer is the canned reply for a question about an uploaded document.
func Answer(u Upload, question string) string {
	return fmt.Sprintf("You asked: %s\nDocument: %s (%s, %d bytes)", question, u.Filename, u.Kind, u.Size)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", c.GetString("request_id")),
		}
		switch {
		case status >= 500:
			s.log.Error("request completed", fields...)
		case status >= 400:
			s.log.Warn("request completed", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered",
					zap.String("panic", fmt.Sprint(err)),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			}
		}()
		c.Next()
	}
}
