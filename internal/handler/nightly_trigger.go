package handler

import (
	"log/slog"
	"net/http"
)

// HandleNightlyTrigger recomputes the configured owner's current budgets and
// mails the ones at or over their alert threshold, then reminds the user of
// overdue goals.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("Starting nightly trigger processing")

	if d.Notify.OwnerID == "" {
		slog.Warn("OWNER_ID is not set; skipping nightly checks")
		w.WriteHeader(http.StatusOK)
		return
	}

	alerts, err := d.Budgets.Alerts(ctx, d.Notify.OwnerID)
	if err != nil {
		slog.Error("Failed to compute budget alerts", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to compute budget alerts")
		return
	}
	overdue, err := d.Goals.Overdue(ctx, d.Notify.OwnerID)
	if err != nil {
		slog.Error("Failed to list overdue goals", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list overdue goals")
		return
	}
	slog.Info("Nightly checks computed", "budget_alerts", len(alerts), "overdue_goals", len(overdue))

	if d.Email == nil || d.Notify.UserEmail == "" {
		slog.Warn("USER_EMAIL or e-mail service is not configured; skipping notifications")
		w.WriteHeader(http.StatusOK)
		return
	}
	recipients := []string{d.Notify.UserEmail}

	if len(alerts) > 0 {
		if err := d.Email.SendBudgetAlerts(ctx, recipients, alerts); err != nil {
			// Continue to goals even if this mail fails.
			slog.Error("Failed to send budget alert email", "email", d.Notify.UserEmail, "error", err)
		} else {
			slog.Info("Budget alert email sent", "email", d.Notify.UserEmail, "count", len(alerts))
		}
	}
	if len(overdue) > 0 {
		if err := d.Email.SendOverdueGoals(ctx, recipients, overdue); err != nil {
			slog.Error("Failed to send overdue goal email", "email", d.Notify.UserEmail, "error", err)
		} else {
			slog.Info("Overdue goal email sent", "email", d.Notify.UserEmail, "count", len(overdue))
		}
	}

	slog.Info("Nightly trigger processing complete")
	w.WriteHeader(http.StatusOK)
}
