package services

import (
	"testing"
	"time"

	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRenderImportErrorSection(t *testing.T) {
	assert.Empty(t, RenderImportErrorSection(nil))

	html := RenderImportErrorSection([]string{`Row 3: unknown account "<b>"`})
	assert.Contains(t, html, "Some rows were skipped")
	assert.Contains(t, html, "&lt;b&gt;")
	assert.NotContains(t, html, "<b>\"")
}

func TestRenderImportErrorBody(t *testing.T) {
	html := RenderImportErrorBody("june & july.csv", []string{"Row 2: invalid amount"})
	assert.Contains(t, html, "june &amp; july.csv")
	assert.Contains(t, html, "Row 2: invalid amount")
	assert.Contains(t, html, "Import Problems")
}

func TestRenderOverdueGoalsBody(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	g := models.Goal{
		Name:          "Holiday",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(250),
		TargetDate:    time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		Status:        models.GoalInProgress,
	}

	html := RenderOverdueGoalsBody([]goal.View{goal.NewView(g, today)})
	assert.Contains(t, html, "Holiday")
	assert.Contains(t, html, "2026-05-31")
	assert.Contains(t, html, "25.00%")
	assert.Contains(t, html, "750.00")
}
