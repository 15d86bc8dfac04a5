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

type INoticeRepository interface {
	DeleteNotices(ctx context.Context, noticeIds []string) (map[string]error, error)
}

type NoticeRepo struct {
	db database.IDatabase
}

func NewNoticeRepo(db database.IDatabase) INoticeRepository {
	return &NoticeRepo{db: db}
}

func (nr *NoticeRepo) DeleteNotices(ctx context.Context, noticeIds []string) (map[string]error, error) {
	return deleteByIDs(ctx, nr.db.Database(), &model.Notice{}, "notice_id", noticeIds)
}
