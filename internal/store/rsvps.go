package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/models"
)

func (d *DB) CreateRsvp(ctx context.Context, r models.RsvpRecord) error {
	_, err := d.Bun.NewInsert().Model(&r).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create rsvp: %w", wrapErr(err))
	}
	return nil
}

func (d *DB) GetRsvpByDocumentNumber(ctx context.Context, doc string) (*models.RsvpRecord, error) {
	var r models.RsvpRecord
	err := d.Bun.NewSelect().
		Model(&r).
		Where("document_number = ?", doc).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("rsvp", doc)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &r, nil
}

func (d *DB) GetRsvpsByEvent(ctx context.Context, eventID string) ([]models.RsvpRecord, error) {
	var rsvps []models.RsvpRecord
	err := d.Bun.NewSelect().
		Model(&rsvps).
		Where("event_id = ?", eventID).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return rsvps, nil
}

// ApplyCheckIn admits ev.CheckedInCount guests against an RSVP. The counter
// bump is guarded against number_of_attendees and committed together with the
// audit append, so the sum-of-events invariant cannot be broken by a failure
// between the two writes. A refused guard is re-read inside the transaction
// to report the actual remaining balance.
func (d *DB) ApplyCheckIn(ctx context.Context, ev models.CheckInEvent) error {
	return withRetry(ctx, func() error {
		return d.RunInTx(ctx, func(tx *DB) error {
			res, err := tx.Bun.NewUpdate().
				Model((*models.RsvpRecord)(nil)).
				Set("checked_in_count = checked_in_count + ?", ev.CheckedInCount).
				Set("last_checked_in_at = ?", ev.CheckedInAt).
				Where("document_number = ?", ev.DocumentNumber).
				Where("checked_in_count + ? <= number_of_attendees", ev.CheckedInCount).
				Exec(ctx)
			if err != nil {
				return wrapErr(err)
			}
			rows, _ := res.RowsAffected()
			if rows == 0 {
				rsvp, err := tx.GetRsvpByDocumentNumber(ctx, ev.DocumentNumber)
				if err != nil {
					return err
				}
				return &errs.ExceedsRemainingCapacityError{Remaining: rsvp.Remaining()}
			}

			if _, err := tx.Bun.NewInsert().Model(&ev).Exec(ctx); err != nil {
				return fmt.Errorf("failed to append check-in event: %w", wrapErr(err))
			}
			return nil
		})
	})
}

func (d *DB) GetCheckInEvents(ctx context.Context, doc string) ([]models.CheckInEvent, error) {
	var events []models.CheckInEvent
	err := d.Bun.NewSelect().
		Model(&events).
		Where("document_number = ?", doc).
		Order("checked_in_at").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}
