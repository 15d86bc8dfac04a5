// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"
	"fmt"

	"github.com/skku-artclub/artclub/internal/model"
	"github.com/skku-artclub/artclub/pkg/database"
	"gorm.io/gorm"
)

type IArtworkRepository interface {
	GetArtwork(ctx context.Context, artworkId string) (*model.Artwork, error)
	DeleteArtworks(ctx context.Context, artworkIds []string) (map[string]error, error)
	SetFeatured(ctx context.Context, artworkIds []string, featured *bool) (map[string]error, error)
}

type ArtworkRepo struct {
	db           database.IDatabase
	artworkModel *model.Artwork
}

func NewArtworkRepo(db database.IDatabase) IArtworkRepository {
	return &ArtworkRepo{
		db:           db,
		artworkModel: &model.Artwork{},
	}
}

// GetArtwork returns gorm.ErrRecordNotFound (wrapped) for unknown ids.
func (ar *ArtworkRepo) GetArtwork(ctx context.Context, artworkId string) (*model.Artwork, error) {
	a := &model.Artwork{}
	err := ar.db.Database().WithContext(ctx).Where("artwork_id = ?", artworkId).First(a).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get artwork %s: %w", artworkId, err)
	}
	return a, nil
}

func (ar *ArtworkRepo) DeleteArtworks(ctx context.Context, artworkIds []string) (map[string]error, error) {
	return deleteByIDs(ctx, ar.db.Database(), ar.artworkModel, "artwork_id", artworkIds)
}

// SetFeatured sets is_featured on the artworks, or flips it when featured
// is nil.
func (ar *ArtworkRepo) SetFeatured(ctx context.Context, artworkIds []string, featured *bool) (map[string]error, error) {
	db := ar.db.Database()
	found, missing, err := partition(ctx, db, ar.artworkModel, "artwork_id", artworkIds)
	if err != nil || len(found) == 0 {
		return missing, err
	}
	var value any = gorm.Expr("NOT is_featured")
	if featured != nil {
		value = *featured
	}
	if err := db.WithContext(ctx).Model(ar.artworkModel).Where("artwork_id IN ?", found).Update("is_featured", value).Error; err != nil {
		return nil, fmt.Errorf("failed to update featured flag: %w", err)
	}
	return missing, nil
}
