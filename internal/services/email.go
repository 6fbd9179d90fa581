package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/goal"
)

// EmailService sends mail through the Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates an EmailService. If cred is nil it defaults to
// DefaultAzureCredential.
func NewEmailService(endpoint, sender string, cred azcore.TokenCredential) (*EmailService, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT is required")
	}
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is required")
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   endpoint,
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

// SendEmail sends an HTML message to every address in to.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, body string) error {
	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{"https://communication.azure.com//.default"},
	})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	recipients := make([]emailAddress, len(to))
	for i, addr := range to {
		recipients[i] = emailAddress{Address: addr}
	}

	jsonBody, err := json.Marshal(emailRequest{
		SenderAddress: s.sender,
		Content:       emailContent{Subject: subject, HTML: body},
		Recipients:    emailRecipients{To: recipients},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=2023-03-31", s.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	slog.Info("email sent", "recipients", to, "subject", subject)
	return nil
}

// SendImportErrors reports the rows an import skipped.
func (s *EmailService) SendImportErrors(ctx context.Context, recipients []string, filename string, errors []string) error {
	return s.SendEmail(ctx, recipients, "Finance - Import problems: "+filename, RenderImportErrorBody(filename, errors))
}

// SendBudgetAlerts reports budgets at or over their alert threshold.
func (s *EmailService) SendBudgetAlerts(ctx context.Context, recipients []string, views []budget.View) error {
	subject := fmt.Sprintf("Finance - %d budget alert(s)", len(views))
	return s.SendEmail(ctx, recipients, subject, RenderBudgetAlertBody(views))
}

// SendOverdueGoals reminds the owner of goals past their target date.
func (s *EmailService) SendOverdueGoals(ctx context.Context, recipients []string, views []goal.View) error {
	subject := fmt.Sprintf("Finance - %d overdue goal(s)", len(views))
	return s.SendEmail(ctx, recipients, subject, RenderOverdueGoalsBody(views))
}
