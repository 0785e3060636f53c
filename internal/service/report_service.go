package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/gemini"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

var (
	ErrNoCredentials        = errors.New("no generation credentials configured")
	ErrAllCredentialsFailed = errors.New("all generation credentials failed")
	ErrInvalidSummaryRange  = errors.New("summary start date is after end date")
)

// summaryMessageLimit caps how many messages an on-demand summary reads.
const summaryMessageLimit = 1000

type messageReader interface {
	ListWindow(ctx context.Context, start, end time.Time) ([]domain.Message, error)
	ListFiltered(ctx context.Context, f domain.MessageFilter) ([]domain.Message, error)
}

// SummaryQuery selects messages for an on-demand summary. From and To are
// calendar days in the service timezone, both inclusive; nil leaves that side
// open.
type SummaryQuery struct {
	ChatID string
	Sender string
	From   *time.Time
	To     *time.Time
}

// Summary is an on-demand digest. It is neither delivered nor recorded.
type Summary struct {
	Text  string `json:"summary"`
	Count int    `json:"count"`
}

type chatNameReader interface {
	NameMap(ctx context.Context) (map[string]string, error)
}

type reportStore interface {
	Create(ctx context.Context, rec *domain.ReportRecord) error
	List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error)
}

// ReportService turns a window of messages into a delivered digest.
type ReportService struct {
	messages    messageReader
	chats       chatNameReader
	reports     reportStore
	generator   Generator
	transport   Transport
	credentials []string
	loc         *time.Location
}

func NewReportService(
	messages messageReader,
	chats chatNameReader,
	reports reportStore,
	generator Generator,
	transport Transport,
	credentials []string,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.Local
	}

	return &ReportService{
		messages:    messages,
		chats:       chats,
		reports:     reports,
		generator:   generator,
		transport:   transport,
		credentials: credentials,
		loc:         loc,
	}
}

// GenerateAndDeliver summarizes the window and sends the digest to target.
// An empty window is not an error and returns domain.ReportNoMessages.
func (s *ReportService) GenerateAndDeliver(
	ctx context.Context,
	target domain.Target,
	window domain.Window,
) (domain.ReportOutcome, error) {
	messages, err := s.messages.ListWindow(ctx, window.Start, window.End)
	if err != nil {
		return "", fmt.Errorf("failed to load messages: %w", err)
	}

	if len(messages) == 0 {
		logger.Infof("No messages to summarize between %s and %s", window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
		return domain.ReportNoMessages, nil
	}

	digest, err := s.summarize(ctx, messages)
	if err != nil {
		return "", err
	}

	record := &domain.ReportRecord{
		OwnerID:     target.OwnerID,
		Text:        digest,
		Date:        window.Start.In(s.loc).Format("2006-01-02"),
		WindowStart: window.Start,
		WindowEnd:   window.End,
	}
	if target.Type == domain.TargetChat {
		chatID := target.ID
		record.ChatID = &chatID
	}

	if err := s.reports.Create(ctx, record); err != nil {
		if !database.IsMissingTable(err) {
			return "", fmt.Errorf("failed to save report: %w", err)
		}
		logger.Debugf("Report history table missing, skipping history write")
	}

	to, err := s.resolveAddress(ctx, target)
	if err != nil {
		return "", err
	}

	if err := s.transport.SendMessage(ctx, to, FormatDelivery(digest, len(messages))); err != nil {
		return "", fmt.Errorf("failed to deliver report to %s: %w", to, err)
	}

	logger.Infof("Daily summary sent to %s", to)
	return domain.ReportSent, nil
}

// Summarize generates a digest for the messages matching q and returns it
// without delivering it or writing history.
func (s *ReportService) Summarize(ctx context.Context, q SummaryQuery) (Summary, error) {
	filter := domain.MessageFilter{
		ChatID: q.ChatID,
		Sender: q.Sender,
		Limit:  summaryMessageLimit,
	}
	if q.From != nil {
		filter.Start = s.startOfDay(*q.From)
	}
	if q.To != nil {
		filter.End = s.startOfDay(*q.To).AddDate(0, 0, 1)
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && !filter.Start.Before(filter.End) {
		return Summary{}, ErrInvalidSummaryRange
	}

	messages, err := s.messages.ListFiltered(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load messages: %w", err)
	}
	if len(messages) == 0 {
		return Summary{}, nil
	}

	text, err := s.summarize(ctx, messages)
	if err != nil {
		return Summary{}, err
	}

	return Summary{Text: text, Count: len(messages)}, nil
}

// startOfDay is local midnight of day's calendar date in the service timezone.
func (s *ReportService) startOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *ReportService) summarize(ctx context.Context, messages []domain.Message) (string, error) {
	logger.Infof("Summarizing %d messages...", len(messages))

	names, err := s.chats.NameMap(ctx)
	if err != nil {
		// Names are cosmetic; chat ids still identify each transcript.
		logger.Warnf("Chat names unavailable, using chat ids: %v", err)
		names = nil
	}

	groups, direct := Partition(messages, names)
	return s.generate(ctx, BuildPrompt(groups, direct, s.loc))
}

// generate tries each credential in order and returns the first success.
func (s *ReportService) generate(ctx context.Context, prompt string) (string, error) {
	if len(s.credentials) == 0 {
		return "", ErrNoCredentials
	}

	var lastErr error
	for _, key := range s.credentials {
		logger.Debugf("Attempting generation with key ending in %s", gemini.MaskKey(key))

		text, err := s.generator.Generate(ctx, prompt, key)
		if err == nil {
			return text, nil
		}

		logger.Warnf("Key %s failed: %v", gemini.MaskKey(key), err)
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", ErrAllCredentialsFailed, lastErr)
}

func (s *ReportService) resolveAddress(ctx context.Context, target domain.Target) (string, error) {
	var self string
	if target.Type != domain.TargetChat && target.Type != domain.TargetExternalNumber {
		id, err := s.transport.SelfID(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to resolve own address: %w", err)
		}
		self = id
	}
	return target.Address(self), nil
}

// History lists previously generated digests, newest first.
func (s *ReportService) History(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error) {
	return s.reports.List(ctx, ownerID, page, pageSize)
}
