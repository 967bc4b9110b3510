package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/qrpass"
	"ms-reservations/internal/utils"
)

// DBLayer is the attendance service's view of the document store.
// ApplyCheckIn is transactional: the guarded counter bump and the audit
// append commit together or not at all.
type DBLayer interface {
	CreateRsvp(ctx context.Context, r models.RsvpRecord) error
	GetRsvpByDocumentNumber(ctx context.Context, doc string) (*models.RsvpRecord, error)
	GetRsvpsByEvent(ctx context.Context, eventID string) ([]models.RsvpRecord, error)
	ApplyCheckIn(ctx context.Context, ev models.CheckInEvent) error
	GetCheckInEvents(ctx context.Context, doc string) ([]models.CheckInEvent, error)
}

type EventPublisher interface {
	PublishGuestCheckedIn(ev models.CheckInEvent) error
}

type Service struct {
	DB        DBLayer
	Publisher EventPublisher
	Passes    *qrpass.Generator
	logger    *logger.Logger
}

func NewService(db DBLayer, publisher EventPublisher, passes *qrpass.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, Publisher: publisher, Passes: passes, logger: log}
}

// CreateRsvp registers a guest's attendance commitment. The promised
// headcount is fixed at creation; only checked_in_count moves after this.
func (s *Service) CreateRsvp(ctx context.Context, req models.RsvpRequest) (*models.RsvpRecord, error) {
	if strings.TrimSpace(req.EventID) == "" {
		return nil, errs.Validationf("event_id is required")
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.EmailAddress) == "" {
		return nil, errs.Validationf("full_name and email_address are required")
	}
	if req.NumberOfAttendees < 1 {
		return nil, errs.Validationf("number_of_attendees must be at least 1")
	}

	rsvp := models.RsvpRecord{
		DocumentNumber:    utils.GenerateDocumentNumber(),
		EventID:           req.EventID,
		FullName:          req.FullName,
		EmailAddress:      req.EmailAddress,
		NumberOfAttendees: req.NumberOfAttendees,
		CheckedInCount:    0,
		CreatedAt:         time.Now(),
	}

	if s.Passes != nil {
		pass, err := s.Passes.GeneratePass(qrpass.PassPayload{
			Kind:    qrpass.KindRsvp,
			ID:      rsvp.DocumentNumber,
			EventID: req.EventID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR pass: %w", err)
		}
		rsvp.QRPass = pass
	}

	if err := s.DB.CreateRsvp(ctx, rsvp); err != nil {
		return nil, err
	}
	s.logger.LogDatabase("INSERT", "rsvps", fmt.Sprintf("created %s for %d attendee(s)", rsvp.DocumentNumber, rsvp.NumberOfAttendees))
	return &rsvp, nil
}

func (s *Service) GetRsvp(ctx context.Context, documentNumber string) (*models.RsvpRecord, error) {
	return s.DB.GetRsvpByDocumentNumber(ctx, documentNumber)
}

func (s *Service) GetRsvpsByEvent(ctx context.Context, eventID string) ([]models.RsvpRecord, error) {
	return s.DB.GetRsvpsByEvent(ctx, eventID)
}

func (s *Service) GetCheckInEvents(ctx context.Context, documentNumber string) ([]models.CheckInEvent, error) {
	return s.DB.GetCheckInEvents(ctx, documentNumber)
}

// CheckIn admits count guests against an RSVP. The remaining-balance check is
// enforced by the store's guarded update against the current row, not the
// value read here; the read only supplies the denormalized audit fields.
func (s *Service) CheckIn(ctx context.Context, documentNumber string, count int) (*models.CheckInEvent, error) {
	if strings.TrimSpace(documentNumber) == "" {
		return nil, errs.Validationf("document_number is required")
	}
	if count < 1 {
		return nil, errs.Validationf("checked_in_count must be at least 1")
	}

	rsvp, err := s.DB.GetRsvpByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return nil, err
	}

	ev := models.CheckInEvent{
		CheckInID:      uuid.NewString(),
		DocumentNumber: documentNumber,
		CheckedInCount: count,
		GuestName:      rsvp.FullName,
		EmailAddress:   rsvp.EmailAddress,
		CheckedInAt:    time.Now(),
	}

	if err := s.DB.ApplyCheckIn(ctx, ev); err != nil {
		s.logger.LogCheckin(documentNumber, fmt.Sprintf("check-in of %d refused: %v", count, err))
		return nil, err
	}

	s.logger.LogCheckin(documentNumber, fmt.Sprintf("admitted %d guest(s)", count))

	if s.Publisher != nil {
		if err := s.Publisher.PublishGuestCheckedIn(ev); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (guest checked in): %v", err))
		}
	}

	return &ev, nil
}

// CheckInFromPass decodes a scanned QR pass and runs the normal check-in
// path for it. Count defaults to 1 when the scanner does not send one.
func (s *Service) CheckInFromPass(ctx context.Context, encryptedPass string, count int) (*models.CheckInEvent, error) {
	if s.Passes == nil {
		return nil, errs.Validationf("pass scanning is not configured")
	}
	if strings.TrimSpace(encryptedPass) == "" {
		return nil, errs.Validationf("encrypted_pass is required")
	}
	if count == 0 {
		count = 1
	}

	payload, err := s.Passes.DecryptPayload(encryptedPass)
	if err != nil {
		return nil, errs.Validationf("invalid QR pass: %v", err)
	}
	if payload.Kind != qrpass.KindRsvp {
		return nil, errs.Validationf("pass is not an RSVP pass")
	}

	return s.CheckIn(ctx, payload.ID, count)
}
