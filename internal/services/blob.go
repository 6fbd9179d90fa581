package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobService stages uploaded import files in Azure Blob Storage.
type BlobService struct {
	client *azblob.Client
}

// NewBlobService connects to the blob endpoint at blobURL. Azurite endpoints
// use the well-known shared key; anything else uses managed identity.
func NewBlobService(blobURL string) (*BlobService, error) {
	if blobURL == "" {
		return nil, fmt.Errorf("BLOB_SERVICE_URL is required")
	}

	slog.Info("initializing blob service", "blob_url", blobURL)
	var client *azblob.Client

	if isLocal(blobURL) {
		slog.Info("using Azurite shared key credentials for blob service")
		cred, err := azblob.NewSharedKeyCredential(azuriteCredentials())
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	return &BlobService{client: client}, nil
}

// UploadText writes text to containerName/blobName, creating the container
// on first use.
func (s *BlobService) UploadText(ctx context.Context, containerName, blobName, text string) error {
	_, err := s.client.CreateContainer(ctx, containerName, nil)
	if err != nil && errorCode(err) != "ContainerAlreadyExists" {
		slog.Warn("failed to create container", "container", containerName, "error", err)
	}

	if _, err := s.client.UploadBuffer(ctx, containerName, blobName, []byte(text), nil); err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", containerName, blobName, err)
	}
	slog.Info("uploaded blob", "container", containerName, "blob_name", blobName, "size_bytes", len(text))
	return nil
}

// DownloadText reads containerName/blobName in full.
func (s *BlobService) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download blob %s/%s: %w", containerName, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read blob %s/%s: %w", containerName, blobName, err)
	}
	slog.Info("downloaded blob", "container", containerName, "blob_name", blobName, "size_bytes", len(data))
	return string(data), nil
}

// DeleteBlob removes a processed import file.
func (s *BlobService) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	if _, err := s.client.DeleteBlob(ctx, containerName, blobName, nil); err != nil {
		return fmt.Errorf("failed to delete blob %s/%s: %w", containerName, blobName, err)
	}
	return nil
}
