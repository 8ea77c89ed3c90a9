package media

import (
	"bytes"
	"context"
	"io"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/infrastructure/metrics"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// ProgressFunc receives fractional upload progress in [0,100]. Values are
// non-decreasing; 100 is reported only once the whole buffer has been read.
type ProgressFunc func(percent int)

// progressReader reports percent-of-buffer-read as the store consumes the
// stream. Progress reflects local read throughput, not remote receipt: the
// remote service exposes no server-side progress, so this is a documented
// approximation.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	onStep ProgressFunc
}

func newProgressReader(data []byte, onStep ProgressFunc) *progressReader {
	return &progressReader{
		r:      bytes.NewReader(data),
		total:  int64(len(data)),
		last:   -1,
		onStep: onStep,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		percent := 100
		if p.total > 0 {
			percent = int(p.read * 100 / p.total)
		}
		if percent > 100 {
			percent = 100
		}
		if p.onStep != nil && percent > p.last {
			p.last = percent
			p.onStep(percent)
		}
	}
	return n, err
}

// Uploader streams a job's buffer to the remote store while emitting
// progress notifications.
type Uploader struct {
	store Store
	log   zerolog.Logger
}

func NewUploader(store Store, log zerolog.Logger) *Uploader {
	return &Uploader{
		store: store,
		log:   log.With().Str("component", "uploader").Logger(),
	}
}

// Upload sends the job's buffer to the store. onProgress may be nil. The
// returned descriptor always carries a non-empty public id and primary URL;
// the store guarantees that contract.
func (u *Uploader) Upload(ctx context.Context, job *UploadJob, onProgress ProgressFunc) (*MediaAsset, error) {
	if len(job.Data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "file is empty", nil,
			"2f6a1c0d-8e4b-4f3a-9d21-5b7c0e8a1f44")
	}
	if err := job.Options.Validate(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "invalid upload options", err,
			"b91d4e72-3c5f-4a80-bd16-7e2a9c0f3d58")
	}

	uploadCtx, cancel := context.WithTimeout(ctx, job.Options.Timeout)
	defer cancel()

	reader := newProgressReader(job.Data, onProgress)
	asset, err := u.store.Upload(uploadCtx, reader, int64(len(job.Data)), job.Options)
	if err != nil {
		metrics.RecordUpload(string(job.Options.Kind), "error", 0)
		return nil, err
	}

	if onProgress != nil {
		onProgress(100)
	}
	metrics.RecordUpload(string(job.Options.Kind), "success", asset.Bytes)

	u.log.Debug().
		Str("public_id", asset.PublicID).
		Str("kind", string(asset.Kind)).
		Int64("bytes", asset.Bytes).
		Msg("upload complete")

	return asset, nil
}
