// Package httpapi exposes the study services as a JSON API over gin.
//
// Every route under /api/v1 acts for the user named in the X-User-ID header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
	"github.com/quizbolt/quizbolt/internal/logger"
)

// OwnerHeader carries the acting user's ID.
const OwnerHeader = "X-User-ID"

// MaxUploadBytes caps multipart document uploads.
const MaxUploadBytes = 20 << 20

const ownerKey = "owner"

// Services holds the driving ports served by the API.
type Services struct {
	Ingest  driving.IngestService
	Library driving.LibraryService
	Notes   driving.NoteRenderer
	RAG     driving.RAGService
	Study   driving.StudyService

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// Validate ensures all required services are set.
func (s Services) Validate() error {
	if s.Ingest == nil || s.Library == nil || s.RAG == nil || s.Study == nil {
		return errors.New("httpapi: ingest, library, rag and study services are required")
	}
	return nil
}

type handler struct {
	svc Services
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(svc Services) (*gin.Engine, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handler{svc: svc}
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())
	r.MaxMultipartMemory = MaxUploadBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "quizbolt"})
	})
	if svc.Metrics != nil {
		r.GET("/metrics", gin.WrapH(svc.Metrics))
	}
	if svc.MCP != nil {
		r.Any("/mcp", gin.WrapH(svc.MCP))
	}

	api := r.Group("/api/v1", requireOwner())
	{
		api.POST("/documents", h.ingestDocument)
		api.GET("/documents", h.listDocuments)
		api.GET("/documents/:id", h.getDocument)
		api.GET("/documents/:id/text", h.getDocumentText)
		api.DELETE("/documents/:id", h.deleteDocument)

		api.POST("/retrieve", h.retrieve)
		api.POST("/chat", h.chat)

		api.POST("/quizzes", h.generateQuiz)
		api.GET("/quizzes", h.listQuizzes)
		api.GET("/quizzes/:id", h.getQuiz)
		api.POST("/quizzes/:id/attempts", h.submitQuiz)
		api.GET("/quizzes/:id/attempts", h.listQuizAttempts)

		api.POST("/flashcards", h.saveFlashcardSet)
		api.POST("/flashcards/generate", h.generateFlashcards)
		api.POST("/flashcards/preview", h.previewFlashcards)
		api.GET("/flashcards", h.listFlashcardSets)
		api.GET("/flashcards/:id", h.getFlashcardSet)
		api.PUT("/cards/:id/mastery", h.updateMastery)
		api.POST("/cards/:id/reviews", h.reviewCard)

		api.POST("/notes", h.generateNotes)
		api.GET("/notes", h.listNotes)
		api.GET("/notes/:id", h.getNote)
		api.PUT("/notes/:id", h.updateNote)
		api.DELETE("/notes/:id", h.deleteNote)
	}

	return r, nil
}

// Server runs the API over HTTP.
type Server struct {
	addr    string
	handler http.Handler
}

// NewServer creates a server for addr.
func NewServer(addr string, svc Services) (*Server, error) {
	router, err := NewRouter(svc)
	if err != nil {
		return nil, err
	}
	return &Server{addr: addr, handler: router}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", s.addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requireOwner rejects requests without an X-User-ID header.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := domain.OwnerID(c.GetHeader(OwnerHeader))
		if owner.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrMissingOwner.Error()})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func ownerFrom(c *gin.Context) domain.OwnerID {
	owner, _ := c.Get(ownerKey)
	id, _ := owner.(domain.OwnerID)
	return id
}

// accessLog writes one structured line per request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Zap().Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
