package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/models"
)

func (d *DB) CreateTicketType(ctx context.Context, tt models.TicketType) error {
	_, err := d.Bun.NewInsert().Model(&tt).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create ticket type: %w", wrapErr(err))
	}
	return nil
}

func (d *DB) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	var tt models.TicketType
	err := d.Bun.NewSelect().
		Model(&tt).
		Where("ticket_type_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("ticket type", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &tt, nil
}

func (d *DB) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	err := d.Bun.NewSelect().
		Model(&types).
		Where("event_id = ?", eventID).
		Order("label").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return types, nil
}

// SetLifecycleStatus moves a ticket type between draft/onSale/closed. The
// transition rules live in the service; this is a plain column write.
func (d *DB) SetLifecycleStatus(ctx context.Context, id, status string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("lifecycle_status = ?", status).
		Where("ticket_type_id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errs.NotFound("ticket type", id)
	}
	return nil
}

// DecrementAvailability takes qty units off remaining_availability, but only
// for a type that is on sale and has enough units left. Closing a type
// therefore stops sales at the committing write, not just at the service
// precheck. Zero rows affected means the guard refused; the re-read tells
// apart a missing type, a type off sale, and plain insufficiency.
func (d *DB) DecrementAvailability(ctx context.Context, id string, qty int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("remaining_availability = remaining_availability - ?", qty).
		Where("ticket_type_id = ?", id).
		Where("lifecycle_status = ?", models.TicketTypeOnSale).
		Where("remaining_availability >= ?", qty).
		Exec(ctx)
	if err != nil {
		return wrapErr(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		tt, err := d.GetTicketType(ctx, id)
		if err != nil {
			return err
		}
		if tt.LifecycleStatus != models.TicketTypeOnSale {
			return errs.Validationf("ticket type %s is not on sale", id)
		}
		return &errs.InsufficientAvailabilityError{TicketTypeID: id}
	}
	return nil
}

// IncrementAvailability returns qty units to the pool, capped at
// total_capacity. The guarded add covers the normal case; if the guard
// refuses, the counter is clamped to capacity instead of overflowing it.
func (d *DB) IncrementAvailability(ctx context.Context, id string, qty int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("remaining_availability = remaining_availability + ?", qty).
		Where("ticket_type_id = ?", id).
		Where("remaining_availability + ? <= total_capacity", qty).
		Exec(ctx)
	if err != nil {
		return wrapErr(err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	res, err = d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("remaining_availability = total_capacity").
		Where("ticket_type_id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errs.NotFound("ticket type", id)
	}
	return nil
}
