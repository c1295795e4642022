package models

import (
	"time"
)

// FoodItem: static shop catalog entry. Code is a slug of the display name
// and is what pets hold in their inventory.
type FoodItem struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // e.g., "basic-kibble"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int       `gorm:"not null;default:2" json:"price"` // coins
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DefaultFoodItems is seeded at boot; codes are generated from the names.
var DefaultFoodItems = []FoodItem{
	{
		Name:        "Basic Kibble",
		Description: "Plain but filling. Same price as feeding directly with coins.",
		Price:       2,
	},
	{
		Name:        "Tuna Treat",
		Description: "A favorite of cats, tolerated by everyone else.",
		Price:       5,
	},
	{
		Name:        "Honey Biscuit",
		Description: "Crunchy and sweet.",
		Price:       4,
	},
	{
		Name:        "Dragon Chili",
		Description: "Not actually spicy. Dragons insist it is.",
		Price:       8,
	},
}
