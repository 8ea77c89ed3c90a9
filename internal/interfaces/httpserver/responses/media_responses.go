package responses

import (
	domain "chapel-server/media-api/internal/domain/media"
)

// UploadOutcome is one entry of the non-streaming batch response.
type UploadOutcome struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	URL      string `json:"url,omitempty"`
	PublicID string `json:"public_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BuildUploadOutcomes converts terminal session events into the JSON array
// shape, ordered by file index.
func BuildUploadOutcomes(events []domain.ProgressEvent, total int) []UploadOutcome {
	outcomes := make([]UploadOutcome, total)
	for _, ev := range events {
		if ev.Status == domain.SessionDone || ev.Index >= total {
			continue
		}
		outcomes[ev.Index] = UploadOutcome{
			Index:    ev.Index,
			Filename: ev.Filename,
			Status:   ev.Status,
			Progress: ev.Progress,
			URL:      ev.URL,
			PublicID: ev.PublicID,
			Error:    ev.Error,
		}
	}
	return outcomes
}

// RecordResponse is the wire shape of a record and its asset references.
type RecordResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Assets      []AssetResponse `json:"assets"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// AssetResponse is the wire shape of one remote asset reference.
type AssetResponse struct {
	PublicID string            `json:"public_id"`
	Kind     string            `json:"kind"`
	URL      string            `json:"url"`
	Variants []VariantResponse `json:"variants,omitempty"`
	Bytes    int64             `json:"bytes,omitempty"`
	Duration float64           `json:"duration,omitempty"`
	Format   string            `json:"format,omitempty"`
}

// VariantResponse is one derived form of an asset.
type VariantResponse struct {
	Format string `json:"format"`
	URL    string `json:"url,omitempty"`
}

// BuildRecordResponse creates a response from the domain record.
func BuildRecordResponse(rec *domain.Record) *RecordResponse {
	assets := make([]AssetResponse, 0, len(rec.Assets))
	for _, asset := range rec.Assets {
		variants := make([]VariantResponse, 0, len(asset.Variants))
		for _, v := range asset.Variants {
			variants = append(variants, VariantResponse{Format: v.Format, URL: v.URL})
		}
		assets = append(assets, AssetResponse{
			PublicID: asset.PublicID,
			Kind:     string(asset.Kind),
			URL:      asset.URL,
			Variants: variants,
			Bytes:    asset.Bytes,
			Duration: asset.Duration,
			Format:   asset.Format,
		})
	}
	return &RecordResponse{
		ID:          rec.ID,
		Kind:        rec.Kind,
		Title:       rec.Title,
		Description: rec.Description,
		Assets:      assets,
		CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// BuildRecordListResponse creates a response for a record listing.
func BuildRecordListResponse(records []domain.Record) []*RecordResponse {
	out := make([]*RecordResponse, 0, len(records))
	for i := range records {
		out = append(out, BuildRecordResponse(&records[i]))
	}
	return out
}
