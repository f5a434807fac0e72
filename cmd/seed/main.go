package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"markethub/internal/config"
	"markethub/internal/database"
	"markethub/internal/domain"
	"markethub/internal/feed"
	"markethub/internal/repository"
)

// Seeds a demo dataset: one user per role, a few listings, reviews to give
// the listings ratings. Safe to run only against an empty database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	bus := feed.NewBus()

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db, bus)
	services := repository.NewServiceRepository(db, bus)
	reviews := repository.NewReviewRepository(db, bus)

	customer := seedUser(ctx, users, "alice@example.com", "Alice Carter", domain.RoleCustomer,
		domain.Location{City: "Almaty", Area: "Medeu"})
	retailer := seedUser(ctx, users, "bob@example.com", "Bob's Electronics", domain.RoleRetailer,
		domain.Location{City: "Almaty", Area: "Bostandyk", Address: "12 Abay Ave"})
	provider := seedUser(ctx, users, "carol@example.com", "Carol's Studio", domain.RoleServiceProvider,
		domain.Location{City: "Astana", Area: "Esil", Address: "3 Turan St"})

	headphones := &domain.Product{
		Name:           "Wireless Headphones",
		Description:    "Over-ear, noise cancelling, 30h battery",
		Price:          129.99,
		Images:         []string{"/static/demo/headphones.jpg"},
		Category:       "Electronics",
		Colors:         []string{"black", "silver"},
		Stock:          25,
		SellerID:       retailer.ID,
		DeliveryTime:   "2-3 days",
		PaymentOptions: []string{"card", "cash-on-delivery"},
		Location:       retailer.Location,
	}
	tshirt := &domain.Product{
		Name:           "Cotton T-Shirt",
		Description:    "Plain heavyweight cotton tee",
		Price:          19.5,
		Category:       "Clothing",
		Colors:         []string{"white", "navy"},
		Sizes:          []string{"S", "M", "L", "XL"},
		Stock:          120,
		SellerID:       retailer.ID,
		DeliveryTime:   "1-2 days",
		PaymentOptions: []string{"card"},
		Location:       retailer.Location,
	}
	for _, p := range []*domain.Product{headphones, tshirt} {
		if err := products.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product", p.Name).Msg("seed product")
		}
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	shoot := &domain.Service{
		Name:        "Portrait Photo Session",
		Description: "One hour studio session, ten edited photos",
		Price:       80,
		Duration:    60,
		Category:    "Photography",
		ProviderID:  provider.ID,
		Location:    provider.Location,
		Availability: []domain.ServiceAvailability{
			{Date: tomorrow, TimeSlots: []string{"10:00", "12:00", "15:00"}},
			{Date: tomorrow.AddDate(0, 0, 1), TimeSlots: []string{"11:00", "14:00"}},
		},
	}
	if err := services.Create(ctx, shoot); err != nil {
		log.Fatal().Err(err).Msg("seed service")
	}

	for _, rv := range []*domain.Review{
		{UserID: customer.ID, ProductID: &headphones.ID, Rating: 5, Comment: "Great sound, fast delivery."},
		{UserID: customer.ID, ServiceID: &shoot.ID, Rating: 4, Comment: "Lovely photos, slightly late start."},
	} {
		if err := reviews.Create(ctx, rv); err != nil {
			log.Fatal().Err(err).Msg("seed review")
		}
	}

	log.Info().
		Int64("customer", customer.ID).
		Int64("retailer", retailer.ID).
		Int64("provider", provider.ID).
		Msg("seed complete, password for all users is 'password123'")
}

func seedUser(ctx context.Context, users *repository.UserRepository, email, name string, role domain.UserRole, loc domain.Location) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Location:     loc,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("seed user")
	}
	return u
}
