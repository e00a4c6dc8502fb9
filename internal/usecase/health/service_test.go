package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/catalograg/internal/usecase/pipeline"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockStageProber struct {
	report pipeline.HealthReport
}

func (m *mockStageProber) HealthCheck(_ context.Context) pipeline.HealthReport { return m.report }

type mockEmbeddingChecker struct {
	ok bool
}

func (m *mockEmbeddingChecker) IsAvailable(_ context.Context) bool { return m.ok }

func allUp() *mockStageProber {
	return &mockStageProber{report: pipeline.HealthReport{Optimizer: true, Retriever: true, Generator: true, Overall: true}}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, allUp(), &mockEmbeddingChecker{ok: true})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "optimizer", "retriever", "generator", "embedding"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, allUp(), nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_RetrieverDown(t *testing.T) {
	stages := &mockStageProber{report: pipeline.HealthReport{Optimizer: true, Generator: true}}
	svc := New(&mockDBPinger{}, stages, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["retriever"] != CheckError {
		t.Errorf("expected retriever %q, got %q", CheckError, r.Checks["retriever"])
	}
}

func TestCheck_LLMDownIsDegraded(t *testing.T) {
	stages := &mockStageProber{report: pipeline.HealthReport{Retriever: true, Overall: true}}
	svc := New(&mockDBPinger{}, stages, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["optimizer"] != CheckError || r.Checks["generator"] != CheckError {
		t.Errorf("expected llm stages to fail, got %v", r.Checks)
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(&mockDBPinger{}, allUp(), &mockEmbeddingChecker{ok: false})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_NilEmbedding(t *testing.T) {
	svc := New(&mockDBPinger{}, allUp(), nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("expected no embedding check when checker is nil")
	}
}
