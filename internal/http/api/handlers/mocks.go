package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mocksmith/mocksmith/internal/generator"
	"github.com/mocksmith/mocksmith/internal/mock"
	"github.com/mocksmith/mocksmith/internal/store"
)

// StreamFunc forwards generated chunks to a consumer as they arrive. It
// matches the signature of generator.Client.Stream.
type StreamFunc func(ctx context.Context, req generator.Request, consumer func(chunk string) error) error

// MockHandler serves mock generation, persistence and read endpoints.
type MockHandler struct {
	service  *mock.Service
	streamer StreamFunc
}

// NewMockHandler constructs a MockHandler.
func NewMockHandler(service *mock.Service, streamer StreamFunc) *MockHandler {
	return &MockHandler{service: service, streamer: streamer}
}

// Generate handles POST /api/mocks: generate content, persist it, and return
// the stored record.
func (h *MockHandler) Generate(c *gin.Context) {
	var body mock.GenerateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	record, errGenerate := h.service.Generate(c.Request.Context(), body)
	if errGenerate != nil {
		respondError(c, errGenerate, "failed to generate mocks")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GenerateStream handles POST /api/mocks/stream: forward raw generated text
// chunks in arrival order. The consumer assembles the chunks and persists the
// result via the persist endpoint.
func (h *MockHandler) GenerateStream(c *gin.Context) {
	var body mock.GenerateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errValidate := body.Validate(); errValidate != nil {
		respondError(c, errValidate, "failed to generate mocks")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)

	wrote := false
	errStream := h.streamer(c.Request.Context(), generator.Request{
		SourceInterfaces: body.SourceInterfaces,
		TargetInterface:  body.TargetInterface,
		Size:             body.Size,
	}, func(chunk string) error {
		if _, errWrite := c.Writer.WriteString(chunk); errWrite != nil {
			return errWrite
		}
		c.Writer.Flush()
		wrote = true
		return nil
	})
	if errStream != nil {
		// Headers are gone once the first chunk is flushed; all that is
		// left is to stop forwarding.
		if !wrote {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate mocks"})
			return
		}
		log.WithError(errStream).Warn("mock stream aborted")
	}
}

// Persist handles POST /api/mocks/persist: store client-supplied content.
func (h *MockHandler) Persist(c *gin.Context) {
	var body mock.PersistRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	record, errPersist := h.service.Persist(c.Request.Context(), body)
	if errPersist != nil {
		var malformedErr *mock.MalformedContentError
		if errors.As(errPersist, &malformedErr) {
			// Client-supplied content, so a malformed payload is the
			// caller's fault rather than the backend's.
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is not valid JSON"})
			return
		}
		respondError(c, errPersist, "failed to persist mock")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Read handles GET /api/:id: resolve the record, apply its throttling delay,
// and return the stored content verbatim.
func (h *MockHandler) Read(c *gin.Context) {
	content, errRead := h.service.Read(c.Request.Context(), c.Param("id"))
	if errRead != nil {
		if errors.Is(errRead, store.ErrMockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "failed to get requested mock"})
			return
		}
		if errors.Is(errRead, context.Canceled) || errors.Is(errRead, context.DeadlineExceeded) {
			// Client went away during the throttle wait.
			c.Abort()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get requested mock"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", content)
}

// respondError maps pipeline errors onto the HTTP taxonomy.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *mock.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request data",
			"details": validationErr.Fields,
		})
		return
	}

	var backendErr *generator.BackendError
	if errors.As(err, &backendErr) {
		log.WithError(err).Error("generation backend call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}

	var malformedErr *mock.MalformedContentError
	if errors.As(err, &malformedErr) {
		log.WithError(err).Error("generated content rejected")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generated content is not valid JSON"})
		return
	}

	log.WithError(err).Error("mock request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
