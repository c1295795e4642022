package services

import (
	"log"

	"pet-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Daily decay tuning. Hunger rises every day; happiness falls, faster when
// the pet is hungry; a starving pet loses a coin.
const (
	DecayHungerStep      = 8
	DecayHappinessBase   = 3
	DecayStarvingAt      = 80
	DecayStarvingPenalty = 10
	DecayPeckishAt       = 50
	DecayPeckishPenalty  = 4
	DecayCoinPenaltyAt   = 90

	decayBatchSize = 200
)

// RunDecayOnce applies the daily decay to every pet. Each pet is updated in
// its own transaction under the same row lock the interactive operations
// take, so a check-in or feed committing mid-pass is never overwritten.
// One failed update is logged and the pass continues.
func (s *PetService) RunDecayOnce() (updated, failed int) {
	var pets []models.Pet
	result := s.DB.FindInBatches(&pets, decayBatchSize, func(_ *gorm.DB, _ int) error {
		for i := range pets {
			if err := s.decayPet(pets[i].ID); err != nil {
				log.Printf("❌ [petDecay] Failed to update pet %s: %v", pets[i].ID, err)
				failed++
				continue
			}
			updated++
		}
		return nil
	})
	if result.Error != nil {
		log.Printf("❌ [petDecay] DB error while iterating pets: %v", result.Error)
	}
	return updated, failed
}

func (s *PetService) decayPet(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var pet models.Pet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pet, "id = ?", id).Error; err != nil {
			return err
		}
		applyDailyDecay(&pet)
		return tx.Omit(clause.Associations).Save(&pet).Error
	})
}

func applyDailyDecay(pet *models.Pet) {
	pet.Hunger = clamp(pet.Hunger+DecayHungerStep, 0, 100)

	drop := DecayHappinessBase
	switch {
	case pet.Hunger >= DecayStarvingAt:
		drop += DecayStarvingPenalty
	case pet.Hunger >= DecayPeckishAt:
		drop += DecayPeckishPenalty
	}
	pet.Happiness = clamp(pet.Happiness-drop, 0, 100)

	if pet.Hunger >= DecayCoinPenaltyAt && pet.Coins > 0 {
		pet.Coins--
	}
}
