package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// invokeRequest is the payload the Functions host posts for a queue trigger.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue imports a staged CSV named by a queue message. Rows are
// booked one by one through the ledger; rejected rows are mailed to the
// user. A message that can never succeed is acknowledged so the host does
// not retry it.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	if d.Blob == nil || d.Importer == nil {
		WriteError(w, http.StatusServiceUnavailable, "CSV import is not configured")
		return
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	job, err := decodeJob(queueItemVal)
	if err != nil {
		slog.Error("invalid queue item", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if job.BlobName == "" || job.OwnerID == "" {
		slog.Warn("queue message missing blob_name or owner_id", "blob_name", job.BlobName, "owner_id", job.OwnerID)
		WriteError(w, http.StatusBadRequest, "Missing blob_name or owner_id")
		return
	}

	slog.Info("processing queue item", "blob_name", job.BlobName, "container", d.Import.Container, "owner_id", job.OwnerID)

	content, err := d.Blob.DownloadText(r.Context(), d.Import.Container, job.BlobName)
	if err != nil {
		slog.Error("failed to download CSV from blob", "blob_name", job.BlobName, "container", d.Import.Container, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to download CSV")
		return
	}

	res, err := d.Importer.Import(r.Context(), job.OwnerID, content)
	if err != nil {
		slog.Error("import failed", "blob_name", job.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	if len(res.Errors) > 0 && d.Email != nil && d.Notify.UserEmail != "" {
		if err := d.Email.SendImportErrors(r.Context(), []string{d.Notify.UserEmail}, job.Filename, res.Errors); err != nil {
			slog.Error("failed to send import error email", "filename", job.Filename, "error", err)
		}
	}

	if err := d.Blob.DeleteBlob(r.Context(), d.Import.Container, job.BlobName); err != nil {
		slog.Warn("failed to delete processed blob", "blob_name", job.BlobName, "error", err)
	}

	slog.Info("queue processing complete",
		"blob_name", job.BlobName,
		"created_count", len(res.Created),
		"errors_count", len(res.Errors),
	)
	WriteJSON(w, http.StatusOK, res)
}

// decodeJob accepts the queue item either as the JSON text of the message
// or as the object the host already decoded.
func decodeJob(v any) (importJob, error) {
	var raw []byte
	switch item := v.(type) {
	case string:
		raw = []byte(item)
	case map[string]any:
		b, err := json.Marshal(item)
		if err != nil {
			return importJob{}, err
		}
		raw = b
	default:
		return importJob{}, fmt.Errorf("queueItem has unexpected type %T", v)
	}

	var job importJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return importJob{}, fmt.Errorf("invalid queueItem JSON: %w", err)
	}
	return job, nil
}
