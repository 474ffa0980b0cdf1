// Package charts renders PNG summary charts for the bot to send as photos.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/AbhishekS200607/easyfin/internal/model"
)

// Generator renders the different chart types.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// SummaryChart renders total income, total expense and balance as a bar
// chart. Returns nil when there is nothing to draw.
func (g *Generator) SummaryChart(summary *model.Summary) ([]byte, error) {
	if summary == nil || (summary.TotalIncome == 0 && summary.TotalExpense == 0) {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    "Income vs Expense",
		Width:    800,
		Height:   500,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 30, Right: 30, Bottom: 30},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: []chart.Value{
			{
				Value: summary.TotalIncome,
				Label: "Income",
				Style: chart.Style{FillColor: drawing.ColorFromHex("2e8b57"), StrokeColor: drawing.ColorFromHex("2e8b57")},
			},
			{
				Value: summary.TotalExpense,
				Label: "Expense",
				Style: chart.Style{FillColor: drawing.ColorFromHex("cd5c5c"), StrokeColor: drawing.ColorFromHex("cd5c5c")},
			},
			{
				Value: summary.Balance,
				Label: "Balance",
				Style: chart.Style{FillColor: drawing.ColorFromHex("4682b4"), StrokeColor: drawing.ColorFromHex("4682b4")},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render summary chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ExpenseBreakdown renders expense totals per category as a donut chart.
// Returns nil when there are no expenses to draw.
func (g *Generator) ExpenseBreakdown(transactions []model.Transaction, categories []model.Category) ([]byte, error) {
	names := make(map[int64]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	totals := make(map[string]float64)
	for _, txn := range transactions {
		if txn.Type != model.TypeExpense {
			continue
		}
		name := names[txn.CategoryID]
		if name == "" {
			name = "Other"
		}
		totals[name] += txn.Amount
	}
	if len(totals) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(totals))
	for name, amount := range totals {
		values = append(values, chart.Value{
			Value: amount,
			Label: fmt.Sprintf("%s (%.2f)", name, amount),
		})
	}

	graph := chart.DonutChart{
		Title:  "Expenses by category",
		Width:  800,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render expense breakdown: %w", err)
	}
	return buf.Bytes(), nil
}
