package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductType string

const (
	TypeBottle ProductType = "bottle"
	TypePouch  ProductType = "pouch"
	TypePacket ProductType = "packet"
	TypeTablet ProductType = "tablet"
	TypeBox    ProductType = "box"
	TypeJar    ProductType = "jar"
	TypeTube   ProductType = "tube"
	TypeOther  ProductType = "other"
)

type Category string

const (
	CategoryFood      Category = "food"
	CategoryMedicine  Category = "medicine"
	CategoryCosmetics Category = "cosmetics"
	CategoryCleaning  Category = "cleaning"
	CategoryOther     Category = "other"
)

// ProductTypes lists every accepted product type, in form-select order.
var ProductTypes = []ProductType{
	TypeBottle, TypePouch, TypePacket, TypeTablet, TypeBox, TypeJar, TypeTube, TypeOther,
}

// Categories lists every accepted category, in form-select order.
var Categories = []Category{
	CategoryFood, CategoryMedicine, CategoryCosmetics, CategoryCleaning, CategoryOther,
}

// ValidProductType reports whether t is one of the enumerated product types.
func ValidProductType(t ProductType) bool {
	for _, pt := range ProductTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is one of the enumerated categories.
func ValidCategory(c Category) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductName       string      `gorm:"type:varchar(100);not null" json:"product_name"`
	ProductType       ProductType `gorm:"type:varchar(50);not null" json:"product_type"`
	Location          string      `gorm:"type:varchar(200);not null" json:"location"`
	Quantity          int         `gorm:"not null;default:1" json:"quantity"`
	Category          Category    `gorm:"type:varchar(50);not null" json:"category"`
	ManufacturingDate time.Time   `gorm:"type:date;not null" json:"manufacturing_date"`
	ExpiryDate        time.Time   `gorm:"type:date;not null" json:"expiry_date"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
