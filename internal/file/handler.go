package file

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/filedrive/service/internal/config"
	"github.com/filedrive/service/internal/response"
)

// Handler holds HTTP handlers for file endpoints. Size and extension limits
// are enforced here, at the transport edge; the Service below it only sees
// requests that already passed them.
type Handler struct {
	svc *Service
	cfg *config.Config
}

// NewHandler creates a new file Handler.
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Routes mounts all file endpoints on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetMetadata)
	r.Get("/{id}/download", h.Download)
	r.Get("/{id}/url", h.DownloadLink)
	r.Patch("/{id}", h.Rename)
	r.Delete("/{id}", h.Delete)
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Uploads a file as multipart form data under the "file" field.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		201		{object}	response.Envelope{data=File}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		415		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/files/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// 1 MiB of headroom over the file cap for multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+1<<20)

	f, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.PayloadTooLarge(w, "file too large")
			return
		}
		response.BadRequest(w, "no file provided")
		return
	}
	defer f.Close()

	if header.Filename == "" {
		response.BadRequest(w, "invalid filename")
		return
	}
	if header.Size > h.cfg.MaxFileSize {
		response.PayloadTooLarge(w, "file too large")
		return
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !h.cfg.ExtensionAllowed(ext) {
		response.UnsupportedMediaType(w, "file type not allowed")
		return
	}

	rec, err := h.svc.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, rec)
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns files ordered by upload time descending, with pagination and optional name search.
//	@Tags			files
//	@Produce		json
//	@Param			page	query		int		false	"Page number (default 1)"
//	@Param			limit	query		int		false	"Page size, 1-100 (default 20)"
//	@Param			search	query		string	false	"Case-insensitive name substring"
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		response.BadRequest(w, "page must be a positive integer")
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit < 1 || limit > 100 {
		response.BadRequest(w, "limit must be between 1 and 100")
		return
	}

	p, err := h.svc.List(r.Context(), r.URL.Query().Get("search"), page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// GetMetadata godoc
//
//	@Summary		Get file metadata
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"File ID"
//	@Success		200	{object}	response.Envelope{data=File}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [get]
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetMetadata(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, rec)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Streams the file content with its stored content type and an attachment disposition.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			id	path	string	true	"File ID"
//	@Success		200	{file}	binary
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	rec, stream, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Name+`"`)
	if _, err := io.Copy(w, stream); err != nil {
		// Headers are already out; nothing to send but a log line.
		log.Printf("file: streaming %s aborted: %v", rec.ID.Hex(), err)
	}
}

// DownloadLink godoc
//
//	@Summary		Get a presigned download URL
//	@Description	Returns a time-limited URL for downloading the file directly from the object store.
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"File ID"
//	@Success		200	{object}	response.Envelope{data=DownloadLink}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id}/url [get]
func (h *Handler) DownloadLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.DownloadLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, link)
}

// Rename godoc
//
//	@Summary		Rename a file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"File ID"
//	@Param			body	body		RenameRequest	true	"New name"
//	@Success		200		{object}	response.Envelope{data=File}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/files/{id} [patch]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	rec, err := h.svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, rec)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Removes the file content from the object store, then its metadata record.
//	@Tags			files
//	@Param			id	path	string	true	"File ID"
//	@Success		204
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// writeError maps service errors to HTTP responses. ErrContentMissing stays
// a 500 with its own message rather than collapsing into 404: the record
// exists, its content is gone, and clients must be able to tell those apart.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		response.BadRequest(w, "invalid file id")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "file not found")
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrNameTooLong):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrContentMissing):
		response.Error(w, http.StatusInternalServerError, ErrContentMissing.Error())
	default:
		log.Printf("file: %v", err)
		response.InternalError(w)
	}
}

func queryInt(r *http.Request, key string, fallback int64) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
