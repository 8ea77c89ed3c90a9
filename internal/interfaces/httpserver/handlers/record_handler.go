package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/interfaces/httpserver/requests"
	"chapel-server/media-api/internal/interfaces/httpserver/responses"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// RecordHandler exposes the record lifecycle endpoints.
type RecordHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewRecordHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "record-handler").Logger(),
	}
}

// Create uploads the attached files and persists a record referencing the
// resulting assets.
func (h *RecordHandler) Create(c *gin.Context) {
	files, err := readMultipartFiles(c, "files")
	if err != nil {
		platformerrors.WriteValidationError(c, err.Error())
		return
	}

	form := requests.ParseRecordCreateForm(c)
	rec, err := h.service.CreateRecord(c.Request.Context(), domain.CreateRecordInput{
		Kind:        form.Kind,
		Title:       form.Title,
		Description: form.Description,
		Folder:      form.Folder,
		Files:       files,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusCreated, responses.BuildRecordResponse(rec))
}

// Update edits record metadata; attached files replace the current assets.
func (h *RecordHandler) Update(c *gin.Context) {
	var files []domain.IncomingFile
	if c.ContentType() == "multipart/form-data" {
		parsed, err := readMultipartFiles(c, "files")
		if err != nil {
			platformerrors.WriteValidationError(c, err.Error())
			return
		}
		files = parsed
	}

	form := requests.ParseRecordUpdateForm(c)
	rec, err := h.service.UpdateRecord(c.Request.Context(), domain.UpdateRecordInput{
		ID:           c.Param("id"),
		Title:        form.Title,
		Description:  form.Description,
		Folder:       form.Folder,
		ReplaceFiles: files,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.BuildRecordResponse(rec))
}

// Delete removes the record and best-effort deletes its remote assets.
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get returns a single record with its asset references.
func (h *RecordHandler) Get(c *gin.Context) {
	rec, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildRecordResponse(rec))
}

// List returns records filtered by kind, newest first unless order=asc.
func (h *RecordHandler) List(c *gin.Context) {
	records, err := h.service.ListRecords(c.Request.Context(), domain.RecordFilter{
		Kind:      c.Query("kind"),
		Ascending: c.Query("order") == "asc",
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildRecordListResponse(records))
}
