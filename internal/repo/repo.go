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
	"errors"
	"fmt"

	"github.com/skku-artclub/artclub/internal/model"
	"github.com/skku-artclub/artclub/pkg/database"
	"gorm.io/gorm"
)

// ErrNotFound marks a bulk target that does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories groups the domain repositories.
type Repositories struct {
	User       IUserRepository
	Artwork    IArtworkRepository
	Exhibition IExhibitionRepository
	Notice     INoticeRepository
}

func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		User:       NewUserRepo(db),
		Artwork:    NewArtworkRepo(db),
		Exhibition: NewExhibitionRepo(db),
		Notice:     NewNoticeRepo(db),
	}
}

// AutoMigrate creates the domain tables.
func AutoMigrate(db database.IDatabase) error {
	return db.Database().AutoMigrate(&model.User{}, &model.Artwork{}, &model.Exhibition{}, &model.Notice{})
}

// partition splits ids into those present in column and a not-found error
// for each missing one.
func partition(ctx context.Context, db *gorm.DB, m any, column string, ids []string) ([]string, map[string]error, error) {
	var found []string
	if err := db.WithContext(ctx).Model(m).Where(column+" IN ?", ids).Pluck(column, &found).Error; err != nil {
		return nil, nil, fmt.Errorf("lookup %s: %w", column, err)
	}
	present := make(map[string]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	missing := make(map[string]error)
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing[id] = fmt.Errorf("%s %s: %w", column, id, ErrNotFound)
		}
	}
	return found, missing, nil
}

// deleteByIDs deletes the existing ids and reports the missing ones.
func deleteByIDs(ctx context.Context, db *gorm.DB, m any, column string, ids []string) (map[string]error, error) {
	found, missing, err := partition(ctx, db, m, column, ids)
	if err != nil || len(found) == 0 {
		return missing, err
	}
	if err := db.WithContext(ctx).Where(column+" IN ?", found).Delete(m).Error; err != nil {
		return nil, fmt.Errorf("delete by %s: %w", column, err)
	}
	return missing, nil
}
