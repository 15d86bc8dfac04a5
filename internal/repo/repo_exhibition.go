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

	"github.com/skku-artclub/artclub/internal/model"
	"github.com/skku-artclub/artclub/pkg/database"
)

type IExhibitionRepository interface {
	DeleteExhibitions(ctx context.Context, exhibitionIds []string) (map[string]error, error)
}

type ExhibitionRepo struct {
	db database.IDatabase
}

func NewExhibitionRepo(db database.IDatabase) IExhibitionRepository {
	return &ExhibitionRepo{db: db}
}

func (er *ExhibitionRepo) DeleteExhibitions(ctx context.Context, exhibitionIds []string) (map[string]error, error) {
	return deleteByIDs(ctx, er.db.Database(), &model.Exhibition{}, "exhibition_id", exhibitionIds)
}
