package media

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/utils/platformerrors"
)

// fakeStore is a Store double shared by the domain tests.
type fakeStore struct {
	mu         sync.Mutex
	uploadFunc func(ctx context.Context, body io.Reader, size int64, opts UploadOptions) (*MediaAsset, error)
	deleteFunc func(ctx context.Context, publicID string, kind Kind) error
	uploads    []UploadOptions
	deletes    []string
}

func (f *fakeStore) Upload(ctx context.Context, body io.Reader, size int64, opts UploadOptions) (*MediaAsset, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, opts)
	f.mu.Unlock()

	if f.uploadFunc != nil {
		return f.uploadFunc(ctx, body, size, opts)
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	publicID := opts.PublicID
	if publicID == "" {
		publicID = opts.Folder + "/generated"
	}
	return &MediaAsset{
		PublicID: publicID,
		Kind:     opts.Kind,
		URL:      "https://media.example.com/" + publicID,
		Bytes:    size,
	}, nil
}

func (f *fakeStore) Delete(ctx context.Context, publicID string, kind Kind) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, publicID)
	f.mu.Unlock()

	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, publicID, kind)
	}
	return nil
}

func (f *fakeStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func validOptions() UploadOptions {
	return UploadOptions{
		Folder:  "uploads",
		Kind:    KindVideo,
		Mime:    "video/mp4",
		Timeout: time.Minute,
	}
}

func TestUploader_Upload_ProgressMonotonic(t *testing.T) {
	store := &fakeStore{}
	uploader := NewUploader(store, zerolog.Nop())

	job := &UploadJob{
		Filename: "sermon.mp4",
		Data:     make([]byte, 64*1024),
		Options:  validOptions(),
	}

	var reported []int
	asset, err := uploader.Upload(context.Background(), job, func(percent int) {
		reported = append(reported, percent)
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if asset.Bytes != int64(len(job.Data)) {
		t.Errorf("asset bytes = %d, want %d", asset.Bytes, len(job.Data))
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Fatalf("progress regressed: %v", reported)
		}
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestUploader_Upload_StoreFailure(t *testing.T) {
	store := &fakeStore{
		uploadFunc: func(ctx context.Context, body io.Reader, size int64, opts UploadOptions) (*MediaAsset, error) {
			return nil, errors.New("remote unavailable")
		},
	}
	uploader := NewUploader(store, zerolog.Nop())

	job := &UploadJob{
		Filename: "sermon.mp4",
		Data:     []byte("payload"),
		Options:  validOptions(),
	}

	asset, err := uploader.Upload(context.Background(), job, nil)
	if err == nil {
		t.Fatal("Upload() expected error")
	}
	if asset != nil {
		t.Errorf("Upload() asset = %+v, want nil", asset)
	}
}

func TestUploader_Upload_Validation(t *testing.T) {
	noFolder := validOptions()
	noFolder.Folder = ""

	noTimeout := validOptions()
	noTimeout.Timeout = 0

	badKind := validOptions()
	badKind.Kind = KindUnknown

	tests := []struct {
		name string
		job  *UploadJob
	}{
		{
			name: "empty data",
			job:  &UploadJob{Filename: "empty.mp4", Options: validOptions()},
		},
		{
			name: "missing folder",
			job:  &UploadJob{Filename: "a.mp4", Data: []byte("x"), Options: noFolder},
		},
		{
			name: "missing timeout",
			job:  &UploadJob{Filename: "a.mp4", Data: []byte("x"), Options: noTimeout},
		},
		{
			name: "unresolved kind",
			job:  &UploadJob{Filename: "a.mp4", Data: []byte("x"), Options: badKind},
		},
	}

	store := &fakeStore{}
	uploader := NewUploader(store, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uploader.Upload(context.Background(), tt.job, nil)
			if !platformerrors.IsType(err, platformerrors.ErrorTypeValidation) {
				t.Errorf("Upload() error = %v, want validation error", err)
			}
		})
	}
	if len(store.uploads) != 0 {
		t.Errorf("store received %d uploads, want 0", len(store.uploads))
	}
}
