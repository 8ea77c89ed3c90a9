package record

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/infrastructure/database/entities"
	"chapel-server/media-api/internal/utils/platformerrors"
)

// Repository handles record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	entity := mapDomain(rec)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert record",
			err,
			"4e8a2c91-7b5d-4f06-a3e8-d19c0b6f5a27",
		)
	}
	out := mapEntity(entity)
	return &out, nil
}

func (r *Repository) Update(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	entity := mapDomain(rec)
	result := r.db.WithContext(ctx).Model(&entities.Record{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"title":       entity.Title,
			"description": entity.Description,
			"assets":      entity.Assets,
		})
	if result.Error != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update record",
			result.Error,
			"9c3f7e50-1a8b-4d62-b74f-e05a2d8c1b69",
		)
	}
	if result.RowsAffected == 0 {
		return nil, r.notFound(ctx, nil)
	}
	return r.GetByID(ctx, rec.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	var entity entities.Record
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound(ctx, err)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get record by id",
			err,
			"d27b4f83-6e90-4c15-8a3d-50f1c7e2b946",
		)
	}
	out := mapEntity(entity)
	return &out, nil
}

func (r *Repository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	query := r.db.WithContext(ctx).Model(&entities.Record{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	order := "created_at DESC"
	if filter.Ascending {
		order = "created_at ASC"
	}

	var rows []entities.Record
	if err := query.Order(order).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list records",
			err,
			"15a9d6c2-8f47-4b03-9e61-c28b5d0a7f34",
		)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapEntity(row))
	}
	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Record{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete record",
			result.Error,
			"a60e3b58-2d91-4f7c-b145-98c0f6d3e272",
		)
	}
	if result.RowsAffected == 0 {
		return r.notFound(ctx, nil)
	}
	return nil
}

func (r *Repository) notFound(ctx context.Context, err error) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound,
		"record not found",
		err,
		"31c5e8a4-9d07-4b6f-82e3-f47a1c9d0b58",
	)
}

func mapDomain(rec *domain.Record) entities.Record {
	assets := make(entities.AssetRefs, 0, len(rec.Assets))
	for _, asset := range rec.Assets {
		variants := make([]entities.VariantRef, 0, len(asset.Variants))
		for _, v := range asset.Variants {
			variants = append(variants, entities.VariantRef{Format: v.Format, URL: v.URL})
		}
		assets = append(assets, entities.AssetRef{
			PublicID: asset.PublicID,
			Kind:     string(asset.Kind),
			URL:      asset.URL,
			Variants: variants,
			Bytes:    asset.Bytes,
			Duration: asset.Duration,
			Format:   asset.Format,
		})
	}
	return entities.Record{
		ID:          rec.ID,
		Kind:        rec.Kind,
		Title:       rec.Title,
		Description: rec.Description,
		Assets:      assets,
	}
}

func mapEntity(entity entities.Record) domain.Record {
	assets := make([]domain.MediaAsset, 0, len(entity.Assets))
	for _, ref := range entity.Assets {
		variants := make([]domain.Variant, 0, len(ref.Variants))
		for _, v := range ref.Variants {
			variants = append(variants, domain.Variant{Format: v.Format, URL: v.URL})
		}
		assets = append(assets, domain.MediaAsset{
			PublicID: ref.PublicID,
			Kind:     domain.Kind(ref.Kind),
			URL:      ref.URL,
			Variants: variants,
			Bytes:    ref.Bytes,
			Duration: ref.Duration,
			Format:   ref.Format,
		})
	}
	return domain.Record{
		ID:          entity.ID,
		Kind:        entity.Kind,
		Title:       entity.Title,
		Description: entity.Description,
		Assets:      assets,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}
