package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/database"
	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/migrations"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

type seedClinic struct {
	clinic   entities.Clinic
	services []entities.Service
	reviews  []entities.Review
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("vet-clinic-seed", cfg.Log.Environment, cfg.Log.Level)

	client, err := sqldb.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer client.Close()

	if err := migrations.Up(client, &cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing tables before seeding")
		for _, table := range []string{"reviews", "working_hours", "services", "clinics"} {
			if _, err := client.DB().ExecContext(ctx, "DELETE FROM "+table); err != nil {
				log.Fatal().Err(err).Str("table", table).Msg("failed to clear table")
			}
		}
	}

	clinicRepo := database.NewClinicAdapter(client)
	serviceRepo := database.NewServiceAdapter(client)
	clinicService := services.NewClinicService(clinicRepo, serviceRepo, database.NewWorkingHoursAdapter(client))
	reviewService := services.NewReviewService(database.NewReviewAdapter(client), clinicRepo, nil)

	created := 0
	for _, seed := range seedData() {
		clinic := seed.clinic
		if err := clinicService.Register(ctx, &clinic); err != nil {
			if apperrors.IsConflict(err) {
				log.Info().Str("email", clinic.Email).Msg("clinic already seeded, skipping")
				continue
			}
			log.Fatal().Err(err).Str("clinic", clinic.Name).Msg("failed to register clinic")
		}

		for i := range seed.services {
			if err := clinicService.AddService(ctx, clinic.ID, &seed.services[i]); err != nil {
				log.Fatal().Err(err).Str("clinic", clinic.Name).Msg("failed to add service")
			}
		}
		for i := range seed.reviews {
			if _, err := reviewService.Submit(ctx, clinic.ID, &seed.reviews[i]); err != nil {
				log.Fatal().Err(err).Str("clinic", clinic.Name).Msg("failed to submit review")
			}
		}
		created++
	}

	log.Info().Int("clinics", created).Msg("seeding complete")
}

func seedData() []seedClinic {
	return []seedClinic{
		{
			clinic: entities.Clinic{
				Name:             "Vitosha Veterinary Hospital",
				Email:            "contact@vitoshavet.bg",
				Phone:            "+359888100200",
				Address:          "bul. Cherni vrah 47, Sofia",
				Location:         &geo.Point{Latitude: 42.6695, Longitude: 23.3140},
				PriceRange:       "high",
				EmergencyService: true,
				InpatientCare:    true,
			},
			services: []entities.Service{
				{Condition: "fracture", Equipment: "x-ray", Surgery: true},
				{Condition: "dental disease", Equipment: "dental unit", DentalCare: true},
				{Vaccination: true, HotelDogs: true},
			},
			reviews: []entities.Review{
				{Rating: 5, Text: "Saved our dog at 3am, excellent surgeons.", ReviewerName: "Maria"},
				{Rating: 4, Text: "Expensive but thorough.", ReviewerName: "Georgi"},
			},
		},
		{
			clinic: entities.Clinic{
				Name:       "Lozenets Pet Care",
				Email:      "hello@lozenetspet.bg",
				Phone:      "+359887300400",
				Address:    "ul. Krichim 12, Sofia",
				Location:   &geo.Point{Latitude: 42.6800, Longitude: 23.3250},
				PriceRange: "medium",
			},
			services: []entities.Service{
				{Condition: "skin allergy", Vaccination: true, Grooming: true},
				{HotelCats: true, SpecialFood: "renal diet"},
			},
			reviews: []entities.Review{
				{Rating: 4, Text: "Friendly staff and quick vaccination appointments.", ReviewerName: "Ivana"},
			},
		},
		{
			clinic: entities.Clinic{
				Name:        "Wild Paws Rescue Clinic",
				Email:       "rescue@wildpaws.bg",
				Phone:       "+359886500600",
				Address:     "Pancharevo, Sofia",
				Location:    &geo.Point{Latitude: 42.6000, Longitude: 23.4100},
				PriceRange:  "low",
				WildAnimals: true,
			},
			services: []entities.Service{
				{Condition: "wing injury", WildAnimals: true, Surgery: true},
			},
		},
		{
			clinic: entities.Clinic{
				Name:             "Plovdiv Animal Clinic",
				Email:            "info@plovdivvet.bg",
				Phone:            "+359885700800",
				Address:          "bul. Ruski 61, Plovdiv",
				Location:         &geo.Point{Latitude: 42.1420, Longitude: 24.7410},
				PriceRange:       "medium",
				EmergencyService: true,
			},
			services: []entities.Service{
				{Condition: "fracture", Equipment: "ultrasound", Surgery: true},
				{Vaccination: true, DentalCare: true},
			},
			reviews: []entities.Review{
				{Rating: 3, Text: "Long wait but good result.", ReviewerName: "Petar"},
			},
		},
	}
}
