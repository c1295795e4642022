package models

import (
	"time"

	"gorm.io/gorm"
)

// Pet species (cosmetic only — mechanics are identical across species)
const (
	SpeciesCat    = "cat"
	SpeciesDog    = "dog"
	SpeciesDragon = "dragon"
	SpeciesBird   = "bird"
)

var ValidSpecies = map[string]bool{
	SpeciesCat:    true,
	SpeciesDog:    true,
	SpeciesDragon: true,
	SpeciesBird:   true,
}

// Pet is the per-user virtual pet (one row per owner, denormalized for performance)
type Pet struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	Species string `gorm:"type:varchar(16);default:'cat'" json:"species"`

	// Growth
	Level        int `json:"level" gorm:"default:1"`
	GrowthPoints int `json:"growth_points" gorm:"default:0"`

	// Daily check-ins
	StreakCount   int        `json:"streak_count" gorm:"default:0"`
	LastCheckinAt *time.Time `json:"last_checkin_at,omitempty"`

	// Care stats, both clamped to [0,100]
	Hunger    int `json:"hunger" gorm:"default:0"` // 0 = full, 100 = starving
	Happiness int `json:"happiness" gorm:"default:80"`

	LastPlayedAt *time.Time `json:"last_played_at,omitempty"` // play cooldown anchor

	// Economy
	Coins     int                `json:"coins" gorm:"default:0"`
	Inventory []PetInventoryItem `json:"inventory" gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`

	Timestamps
}

// PetInventoryItem holds a quantity of one food item. Rows that reach
// qty 0 are deleted rather than kept around.
type PetInventoryItem struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"-"`
	PetID    string `gorm:"uniqueIndex:idx_pet_item;not null" json:"-"`
	ItemCode string `gorm:"uniqueIndex:idx_pet_item;not null" json:"item_code"`
	Qty      int    `gorm:"not null" json:"qty"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
