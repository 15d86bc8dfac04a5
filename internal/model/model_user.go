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

package model

import "time"

type User struct {
	BaseModel
	UserId      string     `gorm:"column:user_id;size:64;uniqueIndex" json:"userId"`
	Username    string     `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	Email       string     `gorm:"column:email;size:128" json:"email"`
	Role        string     `gorm:"column:role;size:32" json:"role"`
	IsActive    bool       `gorm:"column:is_active;default:true" json:"isActive"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
}

func (User) TableName() string {
	return "t_user"
}
