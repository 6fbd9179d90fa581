package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/models"
)

const (
	colorAlert   = "#d13438"
	colorWarning = "#ca5010"
	colorInfo    = "#0078d4"
)

// renderLayout wraps content in the shared e-mail frame.
func renderLayout(title, color, content string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, html.EscapeString(title), content)
}

// RenderImportErrorSection lists skipped import rows. It is empty when
// there are none.
func RenderImportErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var items strings.Builder
	for _, e := range errors {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(e))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid %s; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: %s; margin-top: 0; font-size: 18px;">Some rows were skipped</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, colorAlert, colorAlert, items.String())
}

// RenderImportErrorBody renders the mail sent when an import skips rows.
func RenderImportErrorBody(filename string, errors []string) string {
	content := fmt.Sprintf("<p>The file <b>%s</b> was imported with problems:</p>%s",
		html.EscapeString(filename), RenderImportErrorSection(errors))
	return renderLayout("Import Problems", colorAlert, content)
}

// RenderBudgetAlertBody renders one row per budget at or over its threshold.
func RenderBudgetAlertBody(views []budget.View) string {
	var rows strings.Builder
	for _, v := range views {
		color := colorWarning
		if v.Remaining.IsNegative() {
			color = colorAlert
		}
		fmt.Fprintf(&rows, `
			<tr>
				<td style="padding: 8px;">%s</td>
				<td style="padding: 8px; text-align: right;">%s / %s</td>
				<td style="padding: 8px; text-align: right; color: %s;"><b>%s%%</b></td>
				<td style="padding: 8px; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(v.Name),
			v.Spent.StringFixed(2), v.Amount.StringFixed(2),
			color, v.PercentageUsed.StringFixed(2),
			v.Remaining.StringFixed(2),
		)
	}

	content := fmt.Sprintf(`
		<p>These budgets have reached their alert threshold:</p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr style="border-bottom: 1px solid #ddd;">
				<th style="text-align: left; padding: 8px;">Budget</th>
				<th style="text-align: right; padding: 8px;">Spent</th>
				<th style="text-align: right; padding: 8px;">Used</th>
				<th style="text-align: right; padding: 8px;">Remaining</th>
			</tr>%s
		</table>`, rows.String())
	return renderLayout("Budget Alerts", colorWarning, content)
}

// RenderOverdueGoalsBody renders one row per overdue goal with what is
// still missing.
func RenderOverdueGoalsBody(views []goal.View) string {
	var rows strings.Builder
	for _, v := range views {
		fmt.Fprintf(&rows, `
			<tr>
				<td style="padding: 8px;">%s</td>
				<td style="padding: 8px; text-align: right;">%s</td>
				<td style="padding: 8px; text-align: right;">%s%%</td>
				<td style="padding: 8px; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(v.Name),
			v.TargetDate.Format(models.DateLayout),
			v.Progress.PercentageCompleted.StringFixed(2),
			v.Progress.RemainingAmount.StringFixed(2),
		)
	}

	content := fmt.Sprintf(`
		<p>These goals are past their target date and still in progress:</p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr style="border-bottom: 1px solid #ddd;">
				<th style="text-align: left; padding: 8px;">Goal</th>
				<th style="text-align: right; padding: 8px;">Target date</th>
				<th style="text-align: right; padding: 8px;">Completed</th>
				<th style="text-align: right; padding: 8px;">Remaining</th>
			</tr>%s
		</table>`, rows.String())
	return renderLayout("Overdue Goals", colorInfo, content)
}
