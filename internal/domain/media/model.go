package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Kind classifies a resource for upload and transformation planning.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindUnknown  Kind = "unknown"
)

// ParseKind normalizes a caller-supplied kind string. Unrecognized values
// map to KindUnknown so the classifier fallback ladder applies.
func ParseKind(value string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindImage, KindVideo, KindAudio, KindDocument:
		return Kind(strings.ToLower(strings.TrimSpace(value)))
	default:
		return KindUnknown
	}
}

// Variant is a derived form of an uploaded asset (an encode, a thumbnail,
// a streaming manifest). URL is empty while the remote service has not yet
// produced the variant.
type Variant struct {
	Format string `json:"format"`
	URL    string `json:"url,omitempty"`
}

// MediaAsset references content held by the remote storage/transcoding
// service. It has no lifecycle of its own: it is created as a side effect of
// an upload and destroyed as a side effect of a record delete.
type MediaAsset struct {
	PublicID string    `json:"public_id"`
	Kind     Kind      `json:"kind"`
	URL      string    `json:"url"`
	Variants []Variant `json:"variants,omitempty"`
	Bytes    int64     `json:"bytes,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Format   string    `json:"format,omitempty"`
}

// Transformation describes one derived format requested at upload time.
type Transformation struct {
	Format           string  `json:"format"`
	Quality          string  `json:"quality,omitempty"`
	VideoCodec       string  `json:"video_codec,omitempty"`
	MaxHeight        int     `json:"max_height,omitempty"`
	Width            int     `json:"width,omitempty"`
	Height           int     `json:"height,omitempty"`
	Crop             string  `json:"crop,omitempty"`
	StartOffset      float64 `json:"start_offset,omitempty"`
	StreamingProfile string  `json:"streaming_profile,omitempty"`
}

// UploadOptions is the validated per-call configuration for one upload.
type UploadOptions struct {
	Folder   string
	Kind     Kind
	PublicID string
	Plan     []Transformation
	Mime     string
	Timeout  time.Duration
}

// Validate rejects options no store backend can act on.
func (o UploadOptions) Validate() error {
	if o.Folder == "" {
		return fmt.Errorf("upload options: folder is required")
	}
	switch o.Kind {
	case KindImage, KindVideo, KindAudio, KindDocument:
	default:
		return fmt.Errorf("upload options: unsupported kind %q", o.Kind)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("upload options: timeout must be positive")
	}
	return nil
}

// JobStatus is the lifecycle state of one upload job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobUploading JobStatus = "uploading"
	JobSuccess   JobStatus = "success"
	JobError     JobStatus = "error"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobSuccess || s == JobError
}

// UploadJob tracks one file of a batch. The source buffer is owned by the
// job for its duration.
type UploadJob struct {
	Index    int
	Filename string
	Data     []byte
	Options  UploadOptions

	Status   JobStatus
	Progress int
	Asset    *MediaAsset
	Err      error
}

// ProgressEvent is one entry of a batch session's event stream.
type ProgressEvent struct {
	Index    int    `json:"index"`
	Filename string `json:"filename,omitempty"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	URL      string `json:"url,omitempty"`
	PublicID string `json:"public_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SessionDone is the status of the single session-terminal event.
const SessionDone = "done"

// Record is a domain entity (sermon, post, memorial, e-book, ambient track)
// owning zero or more asset references. Only assets whose upload succeeded
// are ever attached.
type Record struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Assets      []MediaAsset `json:"assets"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// RecordKinds is the set of collections collapsed into the record resource.
var RecordKinds = map[string]bool{
	"sermon":   true,
	"post":     true,
	"memorial": true,
	"ebook":    true,
	"ambient":  true,
}

// RecordFilter narrows and orders record listings.
type RecordFilter struct {
	Kind      string
	Ascending bool
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	Insert(ctx context.Context, rec *Record) (*Record, error)
	Update(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter RecordFilter) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// Store defines the remote storage/transcoding operations. Upload streams
// the body and returns the canonical asset descriptor; Delete tolerates
// already-gone content.
type Store interface {
	Upload(ctx context.Context, body io.Reader, size int64, opts UploadOptions) (*MediaAsset, error)
	Delete(ctx context.Context, publicID string, kind Kind) error
}
