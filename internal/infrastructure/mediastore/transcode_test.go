package mediastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/utils/platformerrors"
)

func transcodeTestClient(t *testing.T, handler http.HandlerFunc) *TranscodeClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTranscodeClient(&config.Config{
		TranscodeBaseURL: server.URL,
		TranscodeAPIKey:  "test-key",
	}, zerolog.Nop())
}

func videoOptions() domain.UploadOptions {
	return domain.UploadOptions{
		Folder:  "uploads",
		Kind:    domain.KindVideo,
		Mime:    "video/mp4",
		Timeout: time.Minute,
		Plan: []domain.Transformation{
			{Format: "mp4", Quality: "auto", VideoCodec: "auto", MaxHeight: 720},
			{Format: "m3u8", StreamingProfile: "auto"},
		},
	}
}

func TestTranscodeClient_Upload(t *testing.T) {
	var gotAuth, gotFolder, gotResourceType, gotEager string
	client := transcodeTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFolder = r.FormValue("folder")
		gotResourceType = r.FormValue("resource_type")
		gotEager = r.FormValue("eager")

		json.NewEncoder(w).Encode(map[string]any{
			"public_id":  "uploads/abc123",
			"secure_url": "https://media.example.com/uploads/abc123.mp4",
			"bytes":      2048,
			"duration":   12.5,
			"format":     "mp4",
			"eager": []map[string]string{
				{"format": "mp4", "secure_url": "https://media.example.com/uploads/abc123_720.mp4"},
			},
		})
	})

	asset, err := client.Upload(context.Background(), strings.NewReader("video-bytes"), 11, videoOptions())
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q, want bearer token", gotAuth)
	}
	if gotFolder != "uploads" || gotResourceType != "video" {
		t.Errorf("form fields = (%q, %q), want (uploads, video)", gotFolder, gotResourceType)
	}
	if !strings.Contains(gotEager, `"m3u8"`) {
		t.Errorf("eager field %q does not request the hls variant", gotEager)
	}

	if asset.PublicID != "uploads/abc123" {
		t.Errorf("public id = %q", asset.PublicID)
	}
	if asset.Bytes != 2048 || asset.Duration != 12.5 {
		t.Errorf("asset = %+v, want bytes/duration from descriptor", asset)
	}

	// One variant per requested transformation; the unproduced hls entry
	// keeps an empty URL.
	if len(asset.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(asset.Variants))
	}
	if asset.Variants[0].Format != "mp4" || asset.Variants[0].URL == "" {
		t.Errorf("variant[0] = %+v, want produced mp4", asset.Variants[0])
	}
	if asset.Variants[1].Format != "m3u8" || asset.Variants[1].URL != "" {
		t.Errorf("variant[1] = %+v, want pending m3u8", asset.Variants[1])
	}
}

func TestTranscodeClient_Upload_Rejected(t *testing.T) {
	client := transcodeTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "unsupported codec"},
		})
	})

	_, err := client.Upload(context.Background(), strings.NewReader("x"), 1, videoOptions())
	if !platformerrors.IsType(err, platformerrors.ErrorTypeUpstream) {
		t.Fatalf("error = %v, want upstream", err)
	}
	if pe := platformerrors.GetPlatformError(err); !strings.Contains(pe.Message, "unsupported codec") {
		t.Errorf("message = %q, want remote message propagated", pe.Message)
	}
}

func TestTranscodeClient_Upload_MissingDescriptorFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "no public id",
			body: map[string]any{"secure_url": "https://media.example.com/x"},
		},
		{
			name: "no primary url",
			body: map[string]any{"public_id": "uploads/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := transcodeTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			})

			_, err := client.Upload(context.Background(), strings.NewReader("x"), 1, videoOptions())
			if !platformerrors.IsType(err, platformerrors.ErrorTypeMalformedUpstream) {
				t.Errorf("error = %v, want malformed upstream", err)
			}
		})
	}
}

func TestTranscodeClient_Delete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"removed", http.StatusOK, false},
		{"already gone", http.StatusNotFound, false},
		{"remote failure", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := transcodeTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/destroy" {
					t.Errorf("path = %q, want /destroy", r.URL.Path)
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["public_id"] != "uploads/x" || body["resource_type"] != "video" {
					t.Errorf("body = %v", body)
				}
				w.WriteHeader(tt.status)
			})

			err := client.Delete(context.Background(), "uploads/x", domain.KindVideo)
			if (err != nil) != tt.wantErr {
				t.Errorf("Delete() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
