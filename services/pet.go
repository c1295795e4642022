package services

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"pet-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reward tuning (kept in lockstep with the mobile client's copy)
const (
	LevelThresholdBase = 100 // growth points needed per level: 100 * level

	CheckinBasePoints   = 10
	CheckinCoins        = 5
	CheckinHappiness    = 5
	CheckinHungerRelief = 5
	MaxStreakBonus      = 50

	FeedHungerRelief  = 20
	FeedHappinessGain = 5
	FoodUnitCost      = 2 // coins per unit when feeding without an item

	// MaxItemQty bounds any caller-supplied quantity so cost arithmetic
	// can never overflow an int.
	MaxItemQty = 1000

	PlayHappinessGain = 15
	PlayHungerCost    = 5
	PlayGrowthPoints  = 2
	PlayCoins         = 1

	DefaultPlayCooldown = 10 * time.Minute
)

// LevelUpBonus is the extra reward granted when an action levels the pet up.
// Check-ins pay out more than play sessions.
type LevelUpBonus struct {
	Coins     int
	Happiness int
}

var (
	CheckinLevelUpBonus = LevelUpBonus{Coins: 20, Happiness: 10}
	PlayLevelUpBonus    = LevelUpBonus{Coins: 10, Happiness: 5}
)

type PetService struct {
	DB           *gorm.DB
	PlayCooldown time.Duration
}

func NewPetService(db *gorm.DB) *PetService {
	cooldown := DefaultPlayCooldown
	if v := os.Getenv("PET_PLAY_COOLDOWN_MIN"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			cooldown = time.Duration(mins) * time.Minute
		} else {
			log.Printf("⚠️  Invalid PET_PLAY_COOLDOWN_MIN=%q, using default %s", v, cooldown)
		}
	}
	return &PetService{DB: db, PlayCooldown: cooldown}
}

// GetOrCreate returns the user's pet, creating it with defaults on first call.
func (s *PetService) GetOrCreate(externalUserID string) (*models.Pet, error) {
	var pet models.Pet
	err := s.DB.Preload("Inventory").Where("external_user_id = ?", externalUserID).First(&pet).Error
	if err == nil {
		return &pet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	log.Printf("🐣 Creating pet for user %s", externalUserID)
	return createPet(s.DB, externalUserID)
}

// CheckIn records a daily check-in: streak bookkeeping, rewards, level-up.
// The pet is created on the fly for first-time users.
func (s *PetService) CheckIn(externalUserID string, now time.Time) (*models.Pet, error) {
	var updated *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := petForUpdate(tx, externalUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pet, err = createPet(tx, externalUserID)
		}
		if err != nil {
			return err
		}
		if err := applyCheckIn(pet, now); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(pet).Error; err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🐾 Check-in: %s → streak=%d, lvl=%d, coins=%d",
		externalUserID, updated.StreakCount, updated.Level, updated.Coins)
	return updated, nil
}

// Feed consumes qty of an inventory item, or buys food with coins when no
// item is given. qty is coerced into [1, MaxItemQty].
func (s *PetService) Feed(externalUserID, itemCode string, qty int) (*models.Pet, error) {
	qty = clampQty(qty)
	var updated *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := petForUpdate(tx, externalUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		if err != nil {
			return err
		}

		if itemCode != "" {
			remaining, err := takeInventory(pet, itemCode, qty)
			if err != nil {
				return err
			}
			if remaining == 0 {
				err = tx.Where("pet_id = ? AND item_code = ?", pet.ID, itemCode).
					Delete(&models.PetInventoryItem{}).Error
			} else {
				err = tx.Model(&models.PetInventoryItem{}).
					Where("pet_id = ? AND item_code = ?", pet.ID, itemCode).
					Update("qty", remaining).Error
			}
			if err != nil {
				return err
			}
		} else if err := spendCoins(pet, FoodUnitCost*qty); err != nil {
			return err
		}

		applyFeedEffects(pet, qty)

		if err := tx.Omit(clause.Associations).Save(pet).Error; err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Play runs a play session, enforcing the cooldown window.
func (s *PetService) Play(externalUserID string, now time.Time) (*models.Pet, error) {
	var updated *models.Pet
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pet, err := petForUpdate(tx, externalUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		if err != nil {
			return err
		}
		if err := applyPlay(pet, now, s.PlayCooldown); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(pet).Error; err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetSpecies switches the cosmetic species, creating the pet if needed.
func (s *PetService) SetSpecies(externalUserID, species string) (*models.Pet, error) {
	if !models.ValidSpecies[species] {
		return nil, ErrUnknownSpecies
	}
	pet, err := s.GetOrCreate(externalUserID)
	if err != nil {
		return nil, err
	}
	if pet.Species != species {
		if err := s.DB.Model(&models.Pet{}).Where("id = ?", pet.ID).
			Update("species", species).Error; err != nil {
			return nil, err
		}
		pet.Species = species
	}
	return pet, nil
}

// petForUpdate loads and row-locks the pet so concurrent feed/play/check-in
// calls against the same owner serialize instead of racing.
func petForUpdate(tx *gorm.DB, externalUserID string) (*models.Pet, error) {
	var pet models.Pet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_user_id = ?", externalUserID).
		First(&pet).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("pet_id = ?", pet.ID).Order("item_code").
		Find(&pet.Inventory).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func createPet(tx *gorm.DB, externalUserID string) (*models.Pet, error) {
	pet := &models.Pet{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Species:        models.SpeciesCat,
		Level:          1,
		Hunger:         0,
		Happiness:      80,
		Inventory:      []models.PetInventoryItem{},
	}
	if err := tx.Create(pet).Error; err != nil {
		return nil, err
	}
	return pet, nil
}

// --- state transitions (pure; all persistence above) ---

func applyCheckIn(pet *models.Pet, now time.Time) error {
	if pet.LastCheckinAt != nil && sameUTCDay(*pet.LastCheckinAt, now) {
		return ErrAlreadyCheckedIn
	}

	// Streak continues only when the last check-in was exactly yesterday (UTC)
	streak := 1
	if pet.LastCheckinAt != nil &&
		utcMidnight(*pet.LastCheckinAt).Equal(utcMidnight(now).AddDate(0, 0, -1)) {
		streak = pet.StreakCount + 1
	}
	pet.StreakCount = streak

	bonus := streak / 2
	if bonus > MaxStreakBonus {
		bonus = MaxStreakBonus
	}
	pet.GrowthPoints += CheckinBasePoints + bonus
	pet.Happiness = clamp(pet.Happiness+CheckinHappiness+bonus/5, 0, 100)
	pet.Hunger = clamp(pet.Hunger-CheckinHungerRelief, 0, 100)
	pet.Coins += CheckinCoins

	applyLevelUp(pet, CheckinLevelUpBonus)

	checkin := now
	pet.LastCheckinAt = &checkin
	return nil
}

func applyPlay(pet *models.Pet, now time.Time, cooldown time.Duration) error {
	if pet.LastPlayedAt != nil {
		if since := now.Sub(*pet.LastPlayedAt); since < cooldown {
			return &CooldownError{RetryAfter: cooldown - since}
		}
	}

	played := now
	pet.LastPlayedAt = &played
	pet.Happiness = clamp(pet.Happiness+PlayHappinessGain, 0, 100)
	pet.Hunger = clamp(pet.Hunger+PlayHungerCost, 0, 100) // playing makes the pet hungrier
	pet.GrowthPoints += PlayGrowthPoints
	pet.Coins += PlayCoins

	applyLevelUp(pet, PlayLevelUpBonus)
	return nil
}

// applyLevelUp advances at most one level per action, even when the reward
// crossed several thresholds at once.
func applyLevelUp(pet *models.Pet, bonus LevelUpBonus) {
	threshold := LevelThresholdBase * pet.Level
	if pet.GrowthPoints >= threshold {
		pet.GrowthPoints -= threshold
		pet.Level++
		pet.Coins += bonus.Coins
		pet.Happiness = clamp(pet.Happiness+bonus.Happiness, 0, 100)
	}
}

func applyFeedEffects(pet *models.Pet, qty int) {
	pet.Hunger = clamp(pet.Hunger-FeedHungerRelief*qty, 0, 100)
	pet.Happiness = clamp(pet.Happiness+FeedHappinessGain*qty, 0, 100)
}

// takeInventory consumes qty of itemCode from the loaded inventory slice and
// reports the remaining quantity (0 means the entry was removed).
func takeInventory(pet *models.Pet, itemCode string, qty int) (int, error) {
	for i := range pet.Inventory {
		entry := &pet.Inventory[i]
		if entry.ItemCode != itemCode {
			continue
		}
		if entry.Qty < qty {
			return 0, ErrInsufficientInventory
		}
		entry.Qty -= qty
		remaining := entry.Qty
		if remaining == 0 {
			pet.Inventory = append(pet.Inventory[:i], pet.Inventory[i+1:]...)
		}
		return remaining, nil
	}
	return 0, ErrInsufficientInventory
}

func spendCoins(pet *models.Pet, cost int) error {
	if pet.Coins < cost {
		return ErrInsufficientFunds
	}
	pet.Coins -= cost
	return nil
}

// clampQty coerces a requested item quantity into [1, MaxItemQty].
func clampQty(qty int) int {
	return clamp(qty, 1, MaxItemQty)
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameUTCDay(a, b time.Time) bool {
	return utcMidnight(a).Equal(utcMidnight(b))
}
