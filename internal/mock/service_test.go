package mock

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mocksmith/mocksmith/internal/generator"
	"github.com/mocksmith/mocksmith/internal/models"
	"github.com/mocksmith/mocksmith/internal/store"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
	last  generator.Request
}

func (g *stubGenerator) Complete(_ context.Context, req generator.Request) (string, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func setupServiceTest(t *testing.T, gen *stubGenerator) (*Service, *store.MockStore) {
	t.Helper()
	dsn := fmt.Sprintf("file:mock_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Mock{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	s := store.NewMockStore(db)
	return NewService(gen, s), s
}

func TestService_GenerateEchoesRequestFields(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{text: `[{"id":"1"},{"id":"2"},{"id":"3"}]`}
	svc, _ := setupServiceTest(t, gen)

	throttling := 100
	record, errGenerate := svc.Generate(context.Background(), GenerateRequest{
		SourceInterfaces: "interface User { id: string; name: string }",
		TargetInterface:  "User",
		Size:             3,
		Throttling:       &throttling,
	})
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	if record.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if record.Size != 3 || record.TargetInterface != "User" {
		t.Fatalf("echoed fields mismatch: %+v", record)
	}
	if record.Throttling == nil || *record.Throttling != 100 {
		t.Fatalf("throttling not echoed: %v", record.Throttling)
	}
	if gen.last.Size != 3 || gen.last.TargetInterface != "User" {
		t.Fatalf("adapter called with wrong params: %+v", gen.last)
	}
}

func TestService_GenerateRejectsInvalidSizeWithoutBackendCall(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1, 101} {
		gen := &stubGenerator{text: `[]`}
		svc, _ := setupServiceTest(t, gen)

		_, errGenerate := svc.Generate(context.Background(), GenerateRequest{
			SourceInterfaces: "interface T {}",
			TargetInterface:  "T",
			Size:             size,
		})
		var validationErr *ValidationError
		if !errors.As(errGenerate, &validationErr) {
			t.Fatalf("size %d: expected ValidationError, got %v", size, errGenerate)
		}
		found := false
		for _, f := range validationErr.Fields {
			if f.Field == "size" {
				found = true
			}
		}
		if !found {
			t.Fatalf("size %d: diagnostics missing size entry: %+v", size, validationErr.Fields)
		}
		if gen.calls != 0 {
			t.Fatalf("size %d: backend called despite invalid request", size)
		}
	}
}

func TestService_GenerateCollectsAllDiagnostics(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{}
	svc, _ := setupServiceTest(t, gen)

	bad := 9999
	_, errGenerate := svc.Generate(context.Background(), GenerateRequest{Size: 0, Throttling: &bad})
	var validationErr *ValidationError
	if !errors.As(errGenerate, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", errGenerate)
	}
	if len(validationErr.Fields) != 4 {
		t.Fatalf("expected 4 diagnostics, got %+v", validationErr.Fields)
	}
}

func TestService_GenerateBackendFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{err: &generator.BackendError{Err: errors.New("boom")}}
	svc, _ := setupServiceTest(t, gen)

	_, errGenerate := svc.Generate(context.Background(), GenerateRequest{
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
	})
	var backendErr *generator.BackendError
	if !errors.As(errGenerate, &backendErr) {
		t.Fatalf("expected BackendError, got %v", errGenerate)
	}

	if _, errRead := svc.Read(context.Background(), "any"); !errors.Is(errRead, store.ErrMockNotFound) {
		t.Fatalf("expected empty store, got %v", errRead)
	}
}

func TestService_GenerateMalformedContentRejected(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{text: `here is your data: [{"id":1}`}
	svc, _ := setupServiceTest(t, gen)

	_, errGenerate := svc.Generate(context.Background(), GenerateRequest{
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
	})
	var malformedErr *MalformedContentError
	if !errors.As(errGenerate, &malformedErr) {
		t.Fatalf("expected MalformedContentError, got %v", errGenerate)
	}
}

func TestService_GenerateStripsCodeFences(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{text: "```json\n[{\"id\":\"1\"}]\n```"}
	svc, _ := setupServiceTest(t, gen)

	record, errGenerate := svc.Generate(context.Background(), GenerateRequest{
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
	})
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	if string(record.Content) != `[{"id":"1"}]` {
		t.Fatalf("content = %s", record.Content)
	}
}

func TestService_PersistRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	content := `[{"id":"1","name":"Ada"}]`

	record, errPersist := svc.Persist(context.Background(), PersistRequest{
		Content:          content,
		SourceInterfaces: "interface User { id: string; name: string }",
		TargetInterface:  "User",
		Size:             1,
	})
	if errPersist != nil {
		t.Fatalf("persist: %v", errPersist)
	}

	got, errRead := svc.Read(context.Background(), record.ID)
	if errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if string(got) != content {
		t.Fatalf("round trip content = %s, want %s", got, content)
	}
}

func TestService_PersistRequiresContent(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	_, errPersist := svc.Persist(context.Background(), PersistRequest{
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
	})
	var validationErr *ValidationError
	if !errors.As(errPersist, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", errPersist)
	}
	if validationErr.Fields[0].Field != "content" {
		t.Fatalf("first diagnostic = %+v, want content", validationErr.Fields[0])
	}
}

func TestService_ReadAppliesThrottlingDelay(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	throttling := 120
	record, errPersist := svc.Persist(context.Background(), PersistRequest{
		Content:          `[]`,
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
		Throttling:       &throttling,
	})
	if errPersist != nil {
		t.Fatalf("persist: %v", errPersist)
	}

	start := time.Now()
	if _, errRead := svc.Read(context.Background(), record.ID); errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("read returned after %v, want >= 120ms", elapsed)
	}
}

func TestService_ReadWithoutThrottlingDoesNotDelay(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	record, errPersist := svc.Persist(context.Background(), PersistRequest{
		Content:          `[]`,
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
	})
	if errPersist != nil {
		t.Fatalf("persist: %v", errPersist)
	}

	start := time.Now()
	if _, errRead := svc.Read(context.Background(), record.ID); errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("unthrottled read took %v", elapsed)
	}
}

func TestService_ReadThrottleCancelledByContext(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	throttling := 5000
	record, errPersist := svc.Persist(context.Background(), PersistRequest{
		Content:          `[]`,
		SourceInterfaces: "interface T {}",
		TargetInterface:  "T",
		Size:             1,
		Throttling:       &throttling,
	})
	if errPersist != nil {
		t.Fatalf("persist: %v", errPersist)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, errRead := svc.Read(ctx, record.ID)
	if !errors.Is(errRead, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", errRead)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancellation did not cut the wait short: %v", elapsed)
	}
}

func TestService_ReadUnknownID(t *testing.T) {
	t.Parallel()

	svc, _ := setupServiceTest(t, &stubGenerator{})
	if _, errRead := svc.Read(context.Background(), "nonexistent-id"); !errors.Is(errRead, store.ErrMockNotFound) {
		t.Fatalf("expected ErrMockNotFound, got %v", errRead)
	}
}
