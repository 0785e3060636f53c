package main

import (
	"context"
	"flag"
	"log"

	"github.com/onurcolak/digest-scheduler/environments"
	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

type seedSchedule struct {
	TimeOfDay  string `json:"time" validate:"required,hhmm"`
	TargetType string `json:"target-type" validate:"required,oneof=self chat external_number"`
	TargetID   string `json:"target-id" validate:"required_unless=TargetType self"`
}

func main() {
	var seed seedSchedule
	flag.StringVar(&seed.TimeOfDay, "time", "21:00", "time of day (HH:MM) the digest fires")
	flag.StringVar(&seed.TargetType, "target-type", string(domain.TargetSelf), "self | chat | external_number")
	flag.StringVar(&seed.TargetID, "target-id", "", "chat id or phone number for non-self targets")
	force := flag.Bool("force", false, "create the schedule even if active schedules exist")
	flag.Parse()

	if err := validator.New().Validate(&seed); err != nil {
		log.Fatalf("Invalid schedule: %v", err)
	}

	cfg, err := environments.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	schedules := repository.NewScheduleRepository(db)

	active, err := schedules.CountActive(ctx)
	if err != nil {
		log.Fatalf("Failed to count schedules: %v", err)
	}
	if active > 0 && !*force {
		log.Printf("Found %d active schedule(s), skipping seed", active)
		return
	}

	schedule := seed.toSchedule(cfg.Scheduler.OwnerID)
	if err := schedules.Create(ctx, schedule); err != nil {
		log.Fatalf("Failed to seed schedule: %v", err)
	}

	log.Printf("Seed completed successfully: schedule %s at %s", schedule.ID, schedule.TimeOfDay)
}

func (s seedSchedule) toSchedule(ownerID string) *domain.Schedule {
	return &domain.Schedule{
		TimeOfDay:  s.TimeOfDay,
		TargetType: domain.TargetType(s.TargetType),
		TargetID:   s.TargetID,
		IsActive:   true,
		OwnerID:    ownerID,
	}
}
