package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rocjay1/rm-finance/internal/models"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// isLocal reports whether serviceURL points at Azurite. Production endpoints
// are always https.
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

func azuriteCredentials() (string, string) {
	return azuriteAccountName, azuriteAccountKey
}

func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}

// statusCode returns the HTTP status of an Azure response error, or 0.
func statusCode(err error) int {
	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return azErr.StatusCode
	}
	return 0
}

// errorCode returns the service error code of an Azure response error.
func errorCode(err error) string {
	var azErr *azcore.ResponseError
	if errors.As(err, &azErr) {
		return azErr.ErrorCode
	}
	return ""
}

// mapStorageError translates storage failures into the domain sentinels
// the core packages understand.
func mapStorageError(err error, what string) error {
	switch statusCode(err) {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case http.StatusPreconditionFailed:
		return fmt.Errorf("%s: %w", what, models.ErrVersionConflict)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", what, models.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", what, err)
}
