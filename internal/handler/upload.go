package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
)

const maxUploadBytes = 10 << 20

// importJob is the queue message that hands an uploaded file to ProcessQueue.
type importJob struct {
	BlobName string `json:"blob_name"`
	Filename string `json:"filename"`
	OwnerID  string `json:"owner_id"`
}

// HandleUpload stages an uploaded CSV in blob storage and queues it for import.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	if d.Blob == nil || d.Queue == nil {
		WriteError(w, http.StatusServiceUnavailable, "Import is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxUploadBytes>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	slog.Info("received file upload", "filename", header.Filename, "size_bytes", len(content))

	timestamp := d.Clock.Now().UTC().Format("20060102-150405")
	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("uploads/%s/%s-%s", owner, timestamp, filename)

	if err := d.Blob.UploadText(r.Context(), d.Import.Container, blobName, string(content)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "container", d.Import.Container, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to stage file")
		return
	}
	slog.Info("successfully uploaded blob", "blob_name", blobName, "container", d.Import.Container)

	job := importJob{BlobName: blobName, Filename: filename, OwnerID: owner}
	if err := d.Queue.EnqueueMessage(r.Context(), d.Import.Queue, job); err != nil {
		slog.Error("failed to enqueue message", "queue", d.Import.Queue, "filename", filename, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to queue import")
		return
	}
	slog.Info("successfully enqueued message", "queue", d.Import.Queue, "filename", filename, "blob_name", blobName)

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":    "queued",
		"blob_name": blobName,
	})
}
