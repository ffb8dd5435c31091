package mock

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mocksmith/mocksmith/internal/generator"
	"github.com/mocksmith/mocksmith/internal/models"
	"github.com/mocksmith/mocksmith/internal/store"
)

// Request size and throttling bounds.
const (
	MinSize       = 1
	MaxSize       = 100
	MinThrottling = 0
	MaxThrottling = 5000
)

// Generator is the buffered variant of the text-generation backend.
type Generator interface {
	Complete(ctx context.Context, req generator.Request) (string, error)
}

// GenerateRequest carries the parameters for one generation run.
type GenerateRequest struct {
	SourceInterfaces string `json:"sourceInterfaces"`
	TargetInterface  string `json:"targetInterface"`
	Size             int    `json:"size"`
	Throttling       *int   `json:"throttling,omitempty"`
}

// PersistRequest carries client-supplied content for direct storage, used
// when content was generated via the streaming path.
type PersistRequest struct {
	Content          string `json:"content"`
	SourceInterfaces string `json:"sourceInterfaces"`
	TargetInterface  string `json:"targetInterface"`
	Size             int    `json:"size"`
	Throttling       *int   `json:"throttling,omitempty"`
}

// Service turns generation requests into persisted mock records and serves
// them back by id.
type Service struct {
	gen   Generator
	store *store.MockStore
}

// NewService constructs a Service.
func NewService(gen Generator, s *store.MockStore) *Service {
	return &Service{gen: gen, store: s}
}

// Generate validates the request, invokes the generation backend, validates
// the produced content as JSON, and persists the result. Nothing is persisted
// when any step fails.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*models.Mock, error) {
	if errValidate := req.Validate(); errValidate != nil {
		return nil, errValidate
	}

	text, errGenerate := s.gen.Complete(ctx, generator.Request{
		SourceInterfaces: req.SourceInterfaces,
		TargetInterface:  req.TargetInterface,
		Size:             req.Size,
	})
	if errGenerate != nil {
		return nil, errGenerate
	}

	content, errContent := NormalizeContent(text)
	if errContent != nil {
		log.WithField("targetInterface", req.TargetInterface).Warn("generated content is not valid JSON, refusing to persist")
		return nil, errContent
	}

	return s.insert(ctx, content, req.SourceInterfaces, req.TargetInterface, req.Size, req.Throttling)
}

// Persist validates and stores client-supplied content.
func (s *Service) Persist(ctx context.Context, req PersistRequest) (*models.Mock, error) {
	if errValidate := req.Validate(); errValidate != nil {
		return nil, errValidate
	}

	content, errContent := NormalizeContent(req.Content)
	if errContent != nil {
		return nil, errContent
	}

	return s.insert(ctx, content, req.SourceInterfaces, req.TargetInterface, req.Size, req.Throttling)
}

// Read resolves a record by id and, when its throttling delay is set,
// suspends this call for that many milliseconds before returning the stored
// content verbatim. The wait is cut short when ctx is cancelled.
func (s *Service) Read(ctx context.Context, id string) (json.RawMessage, error) {
	record, errFind := s.store.FindByID(ctx, id)
	if errFind != nil {
		return nil, errFind
	}

	if delay := record.ThrottlingMS(); delay > 0 {
		select {
		case <-time.After(time.Duration(delay) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return json.RawMessage(record.Content), nil
}

func (s *Service) insert(ctx context.Context, content datatypes.JSON, sourceInterfaces, targetInterface string, size int, throttling *int) (*models.Mock, error) {
	stored, errInsert := s.store.Insert(ctx, &models.Mock{
		Content:          content,
		SourceInterfaces: sourceInterfaces,
		TargetInterface:  targetInterface,
		Size:             size,
		Throttling:       throttling,
	})
	if errInsert != nil {
		return nil, &PersistenceError{Err: errInsert}
	}
	log.WithFields(log.Fields{
		"id":              stored.ID,
		"targetInterface": stored.TargetInterface,
		"size":            stored.Size,
	}).Info("mock record persisted")
	return stored, nil
}

// Validate checks the generation parameters against their bounds.
func (r GenerateRequest) Validate() error {
	return validateParams(r.SourceInterfaces, r.TargetInterface, r.Size, r.Throttling)
}

// Validate checks the persistence parameters against their bounds.
func (r PersistRequest) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(r.Content) == "" {
		fields = append(fields, FieldError{Field: "content", Message: "must not be empty"})
	}
	if errParams := validateParams(r.SourceInterfaces, r.TargetInterface, r.Size, r.Throttling); errParams != nil {
		if v, ok := errParams.(*ValidationError); ok {
			fields = append(fields, v.Fields...)
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateParams(sourceInterfaces, targetInterface string, size int, throttling *int) error {
	var fields []FieldError
	if len(sourceInterfaces) == 0 {
		fields = append(fields, FieldError{Field: "sourceInterfaces", Message: "must not be empty"})
	}
	if len(targetInterface) == 0 {
		fields = append(fields, FieldError{Field: "targetInterface", Message: "must not be empty"})
	}
	if size < MinSize || size > MaxSize {
		fields = append(fields, FieldError{Field: "size", Message: "must be between 1 and 100"})
	}
	if throttling != nil && (*throttling < MinThrottling || *throttling > MaxThrottling) {
		fields = append(fields, FieldError{Field: "throttling", Message: "must be between 0 and 5000"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
