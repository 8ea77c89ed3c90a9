package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/infrastructure/metrics"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// TranscodeClient talks to the remote storage/transcoding service over its
// streaming upload protocol. The service stores the original, runs the
// requested eager transformations and returns one descriptor for all of it.
type TranscodeClient struct {
	baseURL    string
	apiKey     string
	chunkSize  int64
	httpClient *http.Client
	log        zerolog.Logger
}

func NewTranscodeClient(cfg *config.Config, log zerolog.Logger) *TranscodeClient {
	chunkSize := cfg.TranscodeChunkSize
	if chunkSize <= 0 {
		chunkSize = 6 << 20
	}
	return &TranscodeClient{
		baseURL:   strings.TrimSuffix(cfg.TranscodeBaseURL, "/"),
		apiKey:    cfg.TranscodeAPIKey,
		chunkSize: chunkSize,
		// Per-call deadlines come from the upload options context; a client
		// level timeout would cap every call at the same value.
		httpClient: &http.Client{},
		log:        log.With().Str("component", "transcode-client").Logger(),
	}
}

type eagerResult struct {
	Format    string `json:"format"`
	SecureURL string `json:"secure_url"`
}

type uploadResponse struct {
	PublicID  string        `json:"public_id"`
	SecureURL string        `json:"secure_url"`
	Bytes     int64         `json:"bytes"`
	Duration  float64       `json:"duration"`
	Format    string        `json:"format"`
	Eager     []eagerResult `json:"eager"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams body as a multipart request. The descriptor must carry a
// non-empty content id and primary URL; anything else is a hard failure,
// never silently accepted.
func (c *TranscodeClient) Upload(ctx context.Context, body io.Reader, size int64, opts domain.UploadOptions) (*domain.MediaAsset, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeForm(form, body, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "build upload request", err,
			"e0c52a8f-7d14-4b96-a3f0-68d1b5c2e749")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "upload call failed", err,
			"8b3d6f21-c490-4e75-ba08-12e7a5d9c063")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "read upload response", err,
			"47f0b9e3-a652-4d18-9c7b-e38d0f6a1c25")
	}

	var decoded uploadResponse
	if err := json.Unmarshal(payload, &decoded); err != nil && resp.StatusCode < 400 {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeMalformedUpstream, "undecodable upload response", err,
			"f81c47d0-29b6-4e53-a8f2-06c3d9b1e574")
	}

	if resp.StatusCode >= 400 {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		message := fmt.Sprintf("upload rejected with status %d", resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			message = decoded.Error.Message
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, message, nil,
			"0d94e7b2-5c38-4fa1-b60d-79e2c4f8a316")
	}

	if decoded.PublicID == "" || decoded.SecureURL == "" {
		metrics.RecordRemoteOperation("upload", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeMalformedUpstream,
			"upload response missing content id or primary URL", nil,
			"6a2f8c5d-e097-4316-bd4a-83c1f0d5e926")
	}

	metrics.RecordRemoteOperation("upload", "success", time.Since(start).Seconds())
	return c.toAsset(decoded, opts), nil
}

// Delete removes content by id. Already-gone content is not an error.
func (c *TranscodeClient) Delete(ctx context.Context, publicID string, kind domain.Kind) error {
	payload, err := json.Marshal(map[string]string{
		"public_id":     publicID,
		"resource_type": string(kind),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/destroy", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRemoteOperation("delete", "error", time.Since(start).Seconds())
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "delete call failed", err,
			"b57a03ec-914f-4d86-a2c5-0e68d1f7b342")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusNotFound {
		// Content already gone; the outcome we wanted.
		metrics.RecordRemoteOperation("delete", "success", time.Since(start).Seconds())
		return nil
	}
	if resp.StatusCode >= 400 {
		metrics.RecordRemoteOperation("delete", "error", time.Since(start).Seconds())
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream,
			fmt.Sprintf("delete rejected with status %d", resp.StatusCode), nil,
			"29c6e4d8-7f01-4ab3-95d2-c80b3f6e1a57")
	}

	metrics.RecordRemoteOperation("delete", "success", time.Since(start).Seconds())
	return nil
}

func (c *TranscodeClient) writeForm(form *multipart.Writer, body io.Reader, opts domain.UploadOptions) error {
	if err := form.WriteField("folder", opts.Folder); err != nil {
		return err
	}
	if err := form.WriteField("resource_type", string(opts.Kind)); err != nil {
		return err
	}
	if opts.PublicID != "" {
		if err := form.WriteField("public_id", opts.PublicID); err != nil {
			return err
		}
	}
	if len(opts.Plan) > 0 {
		plan, err := json.Marshal(opts.Plan)
		if err != nil {
			return err
		}
		if err := form.WriteField("eager", string(plan)); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("file", "blob")
	if err != nil {
		return err
	}
	// Chunked copy bounds per-write size on large media.
	if _, err := io.CopyBuffer(part, body, make([]byte, c.chunkSize)); err != nil {
		return err
	}
	return form.Close()
}

func (c *TranscodeClient) toAsset(decoded uploadResponse, opts domain.UploadOptions) *domain.MediaAsset {
	// One variant per requested transformation, in request order. A variant
	// the service has not produced yet keeps an empty URL; its predictable
	// URL appears on a later read once transcoding finished.
	variants := make([]domain.Variant, 0, len(opts.Plan))
	for _, t := range opts.Plan {
		variant := domain.Variant{Format: t.Format}
		for _, eager := range decoded.Eager {
			if eager.Format == t.Format {
				variant.URL = eager.SecureURL
				break
			}
		}
		variants = append(variants, variant)
	}

	return &domain.MediaAsset{
		PublicID: decoded.PublicID,
		Kind:     opts.Kind,
		URL:      decoded.SecureURL,
		Variants: variants,
		Bytes:    decoded.Bytes,
		Duration: decoded.Duration,
		Format:   decoded.Format,
	}
}
