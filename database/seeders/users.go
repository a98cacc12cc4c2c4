package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/pkg/auth"
)

func init() {
	Register("users", seedUsers)
}

type seedUser struct {
	user     models.User
	password string
}

func demoUsers() []seedUser {
	return []seedUser{
		{
			password: "customer123",
			user: models.User{
				Email:              "customer@diamant-rouge.com",
				Name:               "Sophie Dupont",
				Role:               models.RoleCustomer,
				MemberStatus:       models.MemberGold,
				Address:            "23 Avenue des Champs-Élysées",
				City:               "Paris",
				PostalCode:         "75008",
				Country:            "France",
				PhoneNumber:        "+33612345678",
				PreferredMetals:    []string{"Or Jaune", "Or Rose"},
				PreferredGemstones: []string{"Diamant", "Rubis", "Perle"},
				RingSize:           "52",
				BraceletSize:       "16cm",
				NecklaceLength:     "42cm",
			},
		},
		{
			password: "vip123",
			user: models.User{
				Email:              "vip@diamant-rouge.com",
				Name:               "Isabelle Laurent",
				Role:               models.RoleCustomer,
				MemberStatus:       models.MemberVIP,
				Address:            "128 Boulevard Saint-Germain",
				City:               "Paris",
				PostalCode:         "75006",
				Country:            "France",
				PhoneNumber:        "+33687654321",
				PreferredMetals:    []string{"Platine", "Or Blanc"},
				PreferredGemstones: []string{"Diamant", "Saphir", "Émeraude"},
				RingSize:           "54",
				BraceletSize:       "17cm",
				NecklaceLength:     "45cm",
			},
		},
		{
			password: "admin123",
			user: models.User{
				Email:        "admin@diamant-rouge.com",
				Name:         "Diamant Rouge Admin",
				Role:         models.RoleAdmin,
				MemberStatus: models.MemberVIP,
			},
		},
	}
}

func seedUsers(ctx context.Context, db *gorm.DB) error {
	for _, su := range demoUsers() {
		var n int64
		if err := db.Model(&models.User{}).Where("email = ?", su.user.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			return err
		}
		u := su.user
		u.Password = hash
		if err := db.Create(&u).Error; err != nil {
			return err
		}
	}
	return nil
}
