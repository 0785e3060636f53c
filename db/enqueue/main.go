package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/onurcolak/digest-scheduler/environments"
	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

func main() {
	var (
		sync      = flag.Bool("sync", false, "enqueue SYNC_CHATS")
		report    = flag.String("report", "", "enqueue TRIGGER_REPORT for one schedule id")
		reportAll = flag.Bool("report-all", false, "enqueue TRIGGER_REPORT for every active schedule")
		sendTo    = flag.String("to", "", "SEND_MESSAGE recipient (chat id or \"self\")")
		sendText  = flag.String("text", "", "SEND_MESSAGE body")
	)
	flag.Parse()

	cmdType, payload, err := buildCommand(*sync, *report, *reportAll, *sendTo, *sendText)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := environments.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Only Enqueue is used, so the executing dependencies stay nil.
	commands := service.NewCommandService(
		repository.NewCommandRepository(db),
		nil, nil, nil, nil, nil,
		validator.New(),
		service.CommandConfig{},
	)

	cmd, err := commands.Enqueue(context.Background(), cmdType, payload)
	if err != nil {
		log.Fatalf("Failed to enqueue command: %v", err)
	}

	log.Printf("Enqueued %s command %s", cmd.Type, cmd.ID)
}

func buildCommand(sync bool, scheduleID string, all bool, to, text string) (domain.CommandType, json.RawMessage, error) {
	chosen := 0
	for _, set := range []bool{sync, scheduleID != "", all, to != "" || text != ""} {
		if set {
			chosen++
		}
	}
	if chosen != 1 {
		return "", nil, fmt.Errorf("exactly one of -sync, -report, -report-all or -to/-text is required")
	}

	var (
		cmdType domain.CommandType
		body    any
	)
	switch {
	case sync:
		cmdType, body = domain.CommandSyncChats, domain.SyncChats{}
	case scheduleID != "":
		cmdType, body = domain.CommandTriggerReport, domain.TriggerReport{ScheduleID: scheduleID}
	case all:
		cmdType, body = domain.CommandTriggerReport, domain.TriggerReport{All: true}
	default:
		cmdType, body = domain.CommandSendMessage, domain.SendMessage{To: to, Text: text}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, err
	}
	return cmdType, payload, nil
}
