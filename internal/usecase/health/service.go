package health

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/usecase/pipeline"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that search works but an auxiliary component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates that search cannot succeed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// StageProber probes the pipeline stages.
type StageProber interface {
	HealthCheck(ctx context.Context) pipeline.HealthReport
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	IsAvailable(ctx context.Context) bool
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	stages    StageProber
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, stages StageProber, embedding EmbeddingChecker) *Service {
	return &Service{db: db, stages: stages, embedding: embedding}
}

// Check runs health checks against all components.
// The report is Unhealthy when the database or the retriever is down, Degraded on any other failure.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = result(s.db.Ping(ctx) == nil)

	stages := s.stages.HealthCheck(ctx)
	checks["optimizer"] = result(stages.Optimizer)
	checks["retriever"] = result(stages.Retriever)
	checks["generator"] = result(stages.Generator)

	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.IsAvailable(ctx))
	}

	if checks["database"] == CheckError || !stages.Overall {
		return Report{Status: Unhealthy, Checks: checks}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
