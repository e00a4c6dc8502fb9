package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kailas-cloud/catalograg/internal/catalog"
	dombatch "github.com/kailas-cloud/catalograg/internal/domain/batch"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
	embeddinguc "github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

func TestRenderSearch(t *testing.T) {
	docs := []product.RetrievedDocument{
		{
			ID:      "cpu-1",
			Product: product.Product{ID: "cpu-1", Name: "Ryzen 7 7800X3D", Brand: "AMD", Category: "processors", Price: 3899000},
			Score:   score.Clamp(0.87),
		},
		{
			ID:      "cpu-2",
			Product: product.Product{ID: "cpu-2", Name: "Ryzen 5 7600", Brand: "AMD", Category: "processors", Price: 1899000},
			Score:   score.Clamp(0.41),
		},
	}
	res := result.New("процессор amd", "amd ryzen", docs, "Take the 7800X3D.")

	var buf bytes.Buffer
	renderSearch(&buf, &res)
	out := buf.String()

	assert.Contains(t, out, "searching for: amd ryzen")
	assert.Contains(t, out, "Take the 7800X3D.")
	assert.Contains(t, out, "1. Ryzen 7 7800X3D")
	assert.Contains(t, out, "87% high")
	assert.Contains(t, out, "41% low")
	assert.Contains(t, out, "AMD · processors · 38990.00")
}

func TestRenderSearch_NoDocuments(t *testing.T) {
	res := result.New("ssd", "ssd", nil, "Nothing found.")

	var buf bytes.Buffer
	renderSearch(&buf, &res)
	out := buf.String()

	assert.Contains(t, out, "Nothing found.")
	assert.NotContains(t, out, "Products")
	assert.NotContains(t, out, "searching for:")
}

func TestRenderIndexReport(t *testing.T) {
	invalid := []*catalog.ItemError{{Index: 2, ID: "bad", Fields: map[string]string{"category": "required"}}}
	rep := &indexer.Report{
		IndexCreated: true,
		Results: []dombatch.Result{
			dombatch.NewOK("a"),
			dombatch.NewError("b", errors.New("embedding provider error")),
		},
		Tokens:   120,
		Duration: 1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	renderIndexReport(&buf, invalid, rep)
	out := buf.String()

	assert.Contains(t, out, "Skipped 1 invalid product(s)")
	assert.Contains(t, out, "Indexed 1 product(s)")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "index created, tokens: 120, duration: 1.5s")
	assert.Contains(t, out, "b: embedding provider error")
}

func TestRenderStats(t *testing.T) {
	idx := retriever.Stats{VectorCount: 40, IndexedCount: 40, Status: retriever.StatusReady}
	budget := embeddinguc.BudgetStatus{DailyUsed: 500, DailyLimit: 1000, MonthlyUsed: 500, MonthlyLimit: embeddinguc.Unlimited}
	health := healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"retriever": healthuc.CheckOK,
			"database":  healthuc.CheckOK,
			"generator": healthuc.CheckError,
		},
	}

	var buf bytes.Buffer
	renderStats(&buf, idx, budget, true, health)
	out := buf.String()

	assert.Contains(t, out, "status:   ready")
	assert.Contains(t, out, "vectors:  40")
	assert.Contains(t, out, "daily:    500 / 1000 tokens")
	assert.Contains(t, out, "monthly:  500 tokens (unlimited)")
	assert.Contains(t, out, "overall:  degraded")
	assert.Contains(t, out, "generator: error")
	assert.Less(t, strings.Index(out, "database:"), strings.Index(out, "generator:"), "checks are sorted")
}

func TestRenderStats_WithoutBudget(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, retriever.Stats{Status: retriever.StatusError, Error: "no such index"},
		embeddinguc.BudgetStatus{}, false, healthuc.Report{Status: healthuc.Unhealthy})
	out := buf.String()

	assert.NotContains(t, out, "Embedding budget")
	assert.Contains(t, out, "error:    no such index")
}
