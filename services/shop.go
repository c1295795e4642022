package services

import (
	"errors"
	"log"

	"pet-service/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopService struct {
	DB *gorm.DB
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{DB: db}
}

// SeedFoodItems inserts the default catalog (idempotent; existing codes are
// left untouched so price edits in the DB survive restarts).
func (s *ShopService) SeedFoodItems() error {
	items := make([]models.FoodItem, len(models.DefaultFoodItems))
	copy(items, models.DefaultFoodItems)
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].Code = slug.Make(items[i].Name)
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&items).Error
}

func (s *ShopService) ListItems() ([]models.FoodItem, error) {
	var items []models.FoodItem
	err := s.DB.Order("price ASC").Find(&items).Error
	return items, err
}

// BuyItem spends coins to stock the pet's inventory. qty is coerced into
// [1, MaxItemQty].
func (s *ShopService) BuyItem(externalUserID, itemCode string, qty int) (*models.Pet, error) {
	qty = clampQty(qty)
	var updated *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.FoodItem
		if err := tx.Where("code = ?", itemCode).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownItem
			}
			return err
		}

		pet, err := petForUpdate(tx, externalUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		if err != nil {
			return err
		}

		if err := spendCoins(pet, item.Price*qty); err != nil {
			return err
		}
		if err := addInventory(tx, pet, item.Code, qty); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(pet).Error
	})
	if err != nil {
		return nil, err
	}
	updated, err = s.petByOwner(externalUserID)
	if err != nil {
		return nil, err
	}
	log.Printf("🛒 Shop: %s bought %dx %s", externalUserID, qty, itemCode)
	return updated, nil
}

// Grant credits coins and/or items to a user's pet, creating it if needed.
// Admin-only; exposed through the gateway's admin prefix.
func (s *ShopService) Grant(externalUserID, itemCode string, qty, coins int) (*models.Pet, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := petForUpdate(tx, externalUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pet, err = createPet(tx, externalUserID)
		}
		if err != nil {
			return err
		}

		if coins > 0 {
			pet.Coins += coins
		}
		if qty > MaxItemQty {
			qty = MaxItemQty
		}
		if itemCode != "" && qty > 0 {
			var item models.FoodItem
			if err := tx.Where("code = ?", itemCode).First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUnknownItem
				}
				return err
			}
			if err := addInventory(tx, pet, item.Code, qty); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(pet).Error
	})
	if err != nil {
		return nil, err
	}
	updated, err := s.petByOwner(externalUserID)
	if err != nil {
		return nil, err
	}
	log.Printf("🎁 Grant: %s → +%d coins, %dx %s", externalUserID, coins, qty, itemCode)
	return updated, nil
}

func (s *ShopService) petByOwner(externalUserID string) (*models.Pet, error) {
	var pet models.Pet
	err := s.DB.Preload("Inventory").
		Where("external_user_id = ?", externalUserID).First(&pet).Error
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

// addInventory upserts a single inventory row, accumulating quantity.
func addInventory(tx *gorm.DB, pet *models.Pet, itemCode string, qty int) error {
	row := models.PetInventoryItem{
		ID:       uuid.NewString(),
		PetID:    pet.ID,
		ItemCode: itemCode,
		Qty:      qty,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pet_id"}, {Name: "item_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty": gorm.Expr("pet_inventory_items.qty + excluded.qty"),
		}),
	}).Create(&row).Error
}
