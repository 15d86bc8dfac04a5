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
)

type IUserRepository interface {
	GetUser(ctx context.Context, userId string) (*model.User, error)
	DeleteUsers(ctx context.Context, userIds []string) (map[string]error, error)
	UpdateUserRoles(ctx context.Context, userIds []string, role string) (map[string]error, error)
}

type UserRepo struct {
	db        database.IDatabase
	userModel *model.User
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{
		db:        db,
		userModel: &model.User{},
	}
}

func (ur *UserRepo) GetUser(ctx context.Context, userId string) (*model.User, error) {
	u := &model.User{}
	err := ur.db.Database().WithContext(ctx).Where("user_id = ?", userId).First(u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userId, err)
	}
	return u, nil
}

// DeleteUsers deletes the given users. The returned map holds the ids that
// do not exist.
func (ur *UserRepo) DeleteUsers(ctx context.Context, userIds []string) (map[string]error, error) {
	return deleteByIDs(ctx, ur.db.Database(), ur.userModel, "user_id", userIds)
}

func (ur *UserRepo) UpdateUserRoles(ctx context.Context, userIds []string, role string) (map[string]error, error) {
	db := ur.db.Database()
	found, missing, err := partition(ctx, db, ur.userModel, "user_id", userIds)
	if err != nil || len(found) == 0 {
		return missing, err
	}
	if err := db.WithContext(ctx).Model(ur.userModel).Where("user_id IN ?", found).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update user roles: %w", err)
	}
	return missing, nil
}
