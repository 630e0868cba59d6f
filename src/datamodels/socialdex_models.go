package datamodels

import (
	"time"
)

type BaseModel struct {
	Id        int64 `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Platform string

const (
	PlatformBilibili Platform = "bilibili"
)

var SupportedPlatforms = []Platform{PlatformBilibili}

// Author is a tracked social-media account. Identity is (platform, uid).
type Author struct {
	BaseModel
	Platform Platform    `gorm:"not null;uniqueIndex:idx_authors_platform_uid"`
	Uid      string      `gorm:"not null;uniqueIndex:idx_authors_platform_uid"`
	Name     string      `gorm:"not null"`
	Avatar   string
	BlueChip bool        `gorm:"not null;default:false"`
	Tags     []AuthorTag `gorm:"foreignKey:AuthorId"`
}

type AuthorTag struct {
	AuthorId int64  `gorm:"primaryKey;autoIncrement:false"`
	Tag      string `gorm:"primaryKey;not null;index"`
}

// Observation is one successful follower-count poll. Rows are never updated.
type Observation struct {
	Id             int64     `gorm:"primarykey"`
	AuthorId       int64     `gorm:"not null;index"`
	FollowersCount int64     `gorm:"not null"`
	RecordedAt     time.Time `gorm:"not null;index"`
}

func (Observation) TableName() string {
	return "follower_history"
}

// IndexRun stores the published output of one index build
type IndexRun struct {
	BaseModel
	RunId      string    `gorm:"not null;uniqueIndex"`
	BuiltAt    time.Time `gorm:"not null;index"`
	IndexCount int       `gorm:"not null"`
	PointCount int       `gorm:"not null"`
	Payload    []byte    `gorm:"not null;type:json"`
}

// AuthorWithTags is the read shape of an author plus its current tag memberships.
type AuthorWithTags struct {
	Id       int64
	Platform Platform
	Uid      string
	Name     string
	BlueChip bool
	Tags     []string
}

func (a *AuthorWithTags) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
