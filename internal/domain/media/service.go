package media

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"chapel-server/media-api/internal/config"
	"chapel-server/media-api/internal/infrastructure/metrics"
	"chapel-server/media-api/internal/utils/assetid"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// IncomingFile is one caller-supplied file awaiting classification and
// upload.
type IncomingFile struct {
	Filename string
	Data     []byte
	KindHint Kind
}

// BatchOptions carries the per-request overrides for a batch upload.
type BatchOptions struct {
	Folder   string
	PublicID string
	KindHint Kind
}

// CreateRecordInput describes a record creation including its uploads.
type CreateRecordInput struct {
	Kind        string
	Title       string
	Description string
	Folder      string
	Files       []IncomingFile
}

// UpdateRecordInput describes a record edit. When ReplaceFiles is non-empty
// the new assets are uploaded first and the previous assets are removed
// best-effort after the metadata update succeeds.
type UpdateRecordInput struct {
	ID           string
	Title        *string
	Description  *string
	Folder       string
	ReplaceFiles []IncomingFile
}

// Service coordinates uploads, the remote store and the metadata record
// lifecycle. Upload-then-persist is an intentional two-step, non-atomic
// sequence; the compensating action on a failed persist is a best-effort
// remote delete, and an asset that survives it is counted as an orphan.
type Service struct {
	cfg        *config.Config
	repo       Repository
	store      Store
	classifier *Classifier
	planner    *Planner
	uploader   *Uploader
	orch       *Orchestrator
	log        zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, store Store, log zerolog.Logger) *Service {
	uploader := NewUploader(store, log)
	return &Service{
		cfg:        cfg,
		repo:       repo,
		store:      store,
		classifier: NewClassifier(ParseKind(cfg.DefaultKind)),
		planner: NewPlanner(PlannerConfig{
			EnableHLS:        cfg.EnableHLS,
			EnableThumbnails: cfg.EnableThumbnails,
		}),
		uploader: uploader,
		orch:     NewOrchestrator(uploader, cfg.UploadConcurrency, log),
		log:      log.With().Str("component", "media-service").Logger(),
	}
}

// StartBatch validates the request, builds the session and runs the
// orchestrator in the background. The caller consumes session.Events until
// it closes; it must Drain if it stops early.
func (s *Service) StartBatch(ctx context.Context, files []IncomingFile, opts BatchOptions) (*BatchSession, error) {
	if len(files) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "no file uploaded", nil,
			"6d3b9f2a-1e57-4c08-a4d2-8f0b5c7e9a13")
	}

	jobs := make([]*UploadJob, 0, len(files))
	for i, file := range files {
		job := &UploadJob{
			Index:    i,
			Filename: file.Filename,
			Data:     file.Data,
			Status:   JobPending,
		}
		if int64(len(file.Data)) > s.cfg.MaxMediaBytes {
			job.Err = platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "file exceeds size limit", nil,
				"f2c81b4d-96e0-4da3-b57a-30c6e1f8d294")
		} else {
			job.Options = s.uploadOptions(file, opts.Folder, opts.KindHint)
			if opts.PublicID != "" && len(files) == 1 {
				job.Options.PublicID = opts.PublicID
			}
		}
		jobs = append(jobs, job)
	}

	session := NewBatchSession(jobs)

	// The session detaches from the request context deliberately: a caller
	// disconnect retires the event stream, not the uploads in flight.
	go s.orch.Run(context.WithoutCancel(ctx), session)

	return session, nil
}

// CreateRecord uploads every file, then persists the record referencing the
// resulting assets. No record ever references a failed or in-flight upload.
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (*Record, error) {
	if err := s.validateRecordInput(ctx, in.Kind, in.Title); err != nil {
		return nil, err
	}
	if len(in.Files) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "at least one file is required", nil,
			"0a7e5d19-42cb-4f68-9130-6b8d2c4f7e05")
	}

	assets, err := s.uploadAll(ctx, in.Files, in.Folder, KindUnknown)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:          assetid.NewRecord(),
		Kind:        strings.ToLower(in.Kind),
		Title:       in.Title,
		Description: in.Description,
		Assets:      assets,
	}

	created, err := s.repo.Insert(ctx, rec)
	if err != nil {
		s.compensate(ctx, assets)
		return nil, err
	}
	return created, nil
}

// UpdateRecord edits metadata and optionally replaces the referenced assets.
// New assets are uploaded first; the old ones are removed best-effort after
// the metadata update, so a remote-delete failure never blocks the edit.
func (s *Service) UpdateRecord(ctx context.Context, in UpdateRecordInput) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	var replaced []MediaAsset
	if len(in.ReplaceFiles) > 0 {
		assets, err := s.uploadAll(ctx, in.ReplaceFiles, in.Folder, KindUnknown)
		if err != nil {
			return nil, err
		}
		replaced = rec.Assets
		rec.Assets = assets
	}
	if in.Title != nil {
		rec.Title = *in.Title
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}

	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		if len(in.ReplaceFiles) > 0 {
			s.compensate(ctx, rec.Assets)
		}
		return nil, err
	}

	s.removeRemote(ctx, replaced)
	return updated, nil
}

// DeleteRecord attempts one remote delete per referenced asset, then removes
// the metadata row unconditionally. Remote-delete failures are soft: logged
// and counted, never surfaced to the caller.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.removeRemote(ctx, rec.Assets)

	return s.repo.Delete(ctx, id)
}

func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error) {
	if filter.Kind != "" && !RecordKinds[strings.ToLower(filter.Kind)] {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "unknown record kind", nil,
			"83d1f6b9-0c24-4e7a-ad58-92f4b0c6e317")
	}
	filter.Kind = strings.ToLower(filter.Kind)
	return s.repo.List(ctx, filter)
}

func (s *Service) uploadOptions(file IncomingFile, folder string, requestHint Kind) UploadOptions {
	hint := file.KindHint
	if hint == KindUnknown || hint == "" {
		hint = requestHint
	}
	cls := s.classifier.Classify(file.Data, hint)

	if folder == "" {
		folder = s.cfg.DefaultFolder
	}
	return UploadOptions{
		Folder:  folder,
		Kind:    cls.Kind,
		Plan:    s.planner.PlanFor(cls.Kind),
		Mime:    cls.Mime,
		Timeout: s.cfg.UploadTimeout,
	}
}

// uploadAll uploads files one by one for a record mutation; a failure rolls
// back the uploads that already landed.
func (s *Service) uploadAll(ctx context.Context, files []IncomingFile, folder string, requestHint Kind) ([]MediaAsset, error) {
	assets := make([]MediaAsset, 0, len(files))
	for i, file := range files {
		if int64(len(file.Data)) > s.cfg.MaxMediaBytes {
			s.compensate(ctx, assets)
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeValidation, "file exceeds size limit", nil,
				"5e9c2a70-d183-4b6f-8c45-1f0a7d3e6b92")
		}
		job := &UploadJob{
			Index:    i,
			Filename: file.Filename,
			Data:     file.Data,
			Options:  s.uploadOptions(file, folder, requestHint),
		}
		asset, err := s.uploader.Upload(ctx, job, nil)
		if err != nil {
			s.compensate(ctx, assets)
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, nil
}

// compensate undoes uploads after a failed persist. Best effort: an asset
// that also fails to delete is an orphan on the remote service.
func (s *Service) compensate(ctx context.Context, assets []MediaAsset) {
	for _, asset := range assets {
		if err := s.store.Delete(ctx, asset.PublicID, asset.Kind); err != nil {
			metrics.OrphanAssetsTotal.Inc()
			s.log.Warn().
				Str("public_id", asset.PublicID).
				Err(err).
				Msg("compensating remote delete failed; asset orphaned")
		}
	}
}

// removeRemote deletes assets that are no longer referenced. Soft-fail.
func (s *Service) removeRemote(ctx context.Context, assets []MediaAsset) {
	for _, asset := range assets {
		if err := s.store.Delete(ctx, asset.PublicID, asset.Kind); err != nil {
			metrics.OrphanAssetsTotal.Inc()
			s.log.Warn().
				Str("public_id", asset.PublicID).
				Err(err).
				Msg("remote delete failed; asset orphaned")
		}
	}
}

func (s *Service) validateRecordInput(ctx context.Context, kind, title string) error {
	if !RecordKinds[strings.ToLower(kind)] {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "unknown record kind", nil,
			"c4b82e17-5a9d-4f30-b6c1-d08e3f7a2591")
	}
	if strings.TrimSpace(title) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "title is required", nil,
			"7a1f0d58-3e6b-49c2-8d74-b5e90c2a6f18")
	}
	return nil
}
