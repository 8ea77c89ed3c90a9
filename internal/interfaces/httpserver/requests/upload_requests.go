package requests

import (
	"github.com/gin-gonic/gin"
)

// BatchUploadForm carries the per-request overrides of a batch upload.
type BatchUploadForm struct {
	Folder   string
	PublicID string
	Kind     string
}

// ParseBatchUploadForm reads the multipart fields of an upload request.
func ParseBatchUploadForm(c *gin.Context) BatchUploadForm {
	return BatchUploadForm{
		Folder:   c.PostForm("folder"),
		PublicID: c.PostForm("public_id"),
		Kind:     c.PostForm("kind"),
	}
}

// RecordCreateForm carries the metadata fields of a record creation.
type RecordCreateForm struct {
	Kind        string
	Title       string
	Description string
	Folder      string
}

// ParseRecordCreateForm reads the multipart fields of a create request.
func ParseRecordCreateForm(c *gin.Context) RecordCreateForm {
	return RecordCreateForm{
		Kind:        c.PostForm("kind"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Folder:      c.PostForm("folder"),
	}
}

// RecordUpdateForm distinguishes absent fields from empty ones so an edit
// only touches what the caller sent.
type RecordUpdateForm struct {
	Title       *string
	Description *string
	Folder      string
}

// ParseRecordUpdateForm reads the multipart fields of an update request.
func ParseRecordUpdateForm(c *gin.Context) RecordUpdateForm {
	form := RecordUpdateForm{Folder: c.PostForm("folder")}
	if title, ok := c.GetPostForm("title"); ok {
		form.Title = &title
	}
	if description, ok := c.GetPostForm("description"); ok {
		form.Description = &description
	}
	return form
}
