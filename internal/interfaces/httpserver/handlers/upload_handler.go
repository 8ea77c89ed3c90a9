package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/interfaces/httpserver/requests"
	"chapel-server/media-api/internal/interfaces/httpserver/responses"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// UploadHandler exposes the batch upload endpoint.
type UploadHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewUploadHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "upload-handler").Logger(),
	}
}

// Batch accepts N files plus optional {folder, public_id, kind} overrides.
// With Accept: text/event-stream the response is a live per-file progress
// stream closed by a single session-terminal "done" event; otherwise it is
// one JSON array of per-file outcomes after every job resolved. Per-file
// failures are data in the stream, not a request failure.
func (h *UploadHandler) Batch(c *gin.Context) {
	files, err := readMultipartFiles(c, "files")
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}
	if len(files) == 0 {
		platformerrors.WriteValidationError(c, "no file uploaded")
		return
	}

	form := requests.ParseBatchUploadForm(c)
	session, err := h.service.StartBatch(c.Request.Context(), files, domain.BatchOptions{
		Folder:   form.Folder,
		PublicID: form.PublicID,
		KindHint: domain.ParseKind(form.Kind),
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	if wantsEventStream(c) {
		h.stream(c, session)
		return
	}
	h.collect(c, session, len(files))
}

// stream writes each session event as an SSE message. A client disconnect
// retires the stream only: the remaining events are drained so the uploads
// in flight still run to completion.
func (h *UploadHandler) stream(c *gin.Context, session *domain.BatchSession) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientGone := c.Stream(func(w io.Writer) bool {
		ev, ok := <-session.Events()
		if !ok {
			return false
		}
		c.SSEvent("message", ev)
		return true
	})
	if clientGone {
		h.log.Warn().Str("session", session.ID).Msg("client disconnected during upload stream")
		go session.Drain()
	}
}

// collect blocks until the session resolves and answers with the per-file
// outcome array.
func (h *UploadHandler) collect(c *gin.Context, session *domain.BatchSession, total int) {
	terminal := make([]domain.ProgressEvent, 0, total)
	for ev := range session.Events() {
		if ev.Status == string(domain.JobSuccess) || ev.Status == string(domain.JobError) {
			terminal = append(terminal, ev)
		}
	}
	c.JSON(http.StatusOK, responses.BuildUploadOutcomes(terminal, total))
}

func wantsEventStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

// readMultipartFiles loads every file of the named field into memory. Jobs
// own their buffers for the duration of the upload.
func readMultipartFiles(c *gin.Context, field string) ([]domain.IncomingFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[field]

	files := make([]domain.IncomingFile, 0, len(headers))
	for _, header := range headers {
		data, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		files = append(files, domain.IncomingFile{
			Filename: header.Filename,
			Data:     data,
		})
	}
	return files, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
