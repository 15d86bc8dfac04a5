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

type Artwork struct {
	BaseModel
	ArtworkId  string `gorm:"column:artwork_id;size:64;uniqueIndex" json:"artworkId"`
	UserId     string `gorm:"column:user_id;size:64;index" json:"userId"`
	Title      string `gorm:"column:title;size:255" json:"title"`
	IsFeatured bool   `gorm:"column:is_featured" json:"isFeatured"`
}

func (Artwork) TableName() string {
	return "t_artwork"
}

type Exhibition struct {
	BaseModel
	ExhibitionId string    `gorm:"column:exhibition_id;size:64;uniqueIndex" json:"exhibitionId"`
	CreatedBy    string    `gorm:"column:created_by;size:64" json:"createdBy"`
	Title        string    `gorm:"column:title;size:255" json:"title"`
	StartAt      time.Time `gorm:"column:start_at" json:"startAt"`
	EndAt        time.Time `gorm:"column:end_at" json:"endAt"`
}

func (Exhibition) TableName() string {
	return "t_exhibition"
}

type Notice struct {
	BaseModel
	NoticeId  string `gorm:"column:notice_id;size:64;uniqueIndex" json:"noticeId"`
	CreatedBy string `gorm:"column:created_by;size:64" json:"createdBy"`
	Title     string `gorm:"column:title;size:255" json:"title"`
}

func (Notice) TableName() string {
	return "t_notice"
}
