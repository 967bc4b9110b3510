package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/models"
)

func (d *DB) GetPurchaseByID(ctx context.Context, id string) (*models.Purchase, error) {
	var p models.Purchase
	err := d.Bun.NewSelect().
		Model(&p).
		Where("purchase_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("purchase", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

func (d *DB) GetPurchasesByEvent(ctx context.Context, eventID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := d.Bun.NewSelect().
		Model(&purchases).
		Where("event_id = ?", eventID).
		Order("created_at").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return purchases, nil
}

// ReservePurchase commits a reservation: one guarded decrement per line item
// plus the purchase insert, all in a single transaction. If any decrement
// loses the race for the last units the whole transaction rolls back and the
// earlier decrements leave no trace.
func (d *DB) ReservePurchase(ctx context.Context, p models.Purchase) error {
	return withRetry(ctx, func() error {
		return d.RunInTx(ctx, func(tx *DB) error {
			for _, li := range p.LineItems {
				if err := tx.DecrementAvailability(ctx, li.TicketTypeID, li.Quantity); err != nil {
					return err
				}
			}
			if _, err := tx.Bun.NewInsert().Model(&p).Exec(ctx); err != nil {
				return fmt.Errorf("failed to write purchase %s: %w", p.PurchaseID, wrapErr(err))
			}
			return nil
		})
	})
}

// RefundPurchase reverses qty units of one line item. The purchase is locked
// and re-read inside the transaction, validated there, and rewritten together
// with the inventory restock. Concurrent refunds of the same purchase
// serialize on the row lock, so each one validates against the other's
// committed write and a stale read can never apply the same refund twice.
// Returns the rewritten purchase and the refunded amount in minor units.
func (d *DB) RefundPurchase(ctx context.Context, purchaseID, ticketTypeID string, qty int) (*models.Purchase, int64, error) {
	var (
		updated models.Purchase
		amount  int64
	)
	err := withRetry(ctx, func() error {
		return d.RunInTx(ctx, func(tx *DB) error {
			// Take the write lock before reading, so the read below sees the
			// latest committed line items rather than a pre-lock snapshot.
			res, err := tx.Bun.NewUpdate().
				Model((*models.Purchase)(nil)).
				Set("status = status").
				Where("purchase_id = ?", purchaseID).
				Exec(ctx)
			if err != nil {
				return wrapErr(err)
			}
			if rows, _ := res.RowsAffected(); rows == 0 {
				return errs.NotFound("purchase", purchaseID)
			}

			p, err := tx.GetPurchaseByID(ctx, purchaseID)
			if err != nil {
				return err
			}
			if p.Status == models.PurchaseRefunded {
				return errs.ErrAlreadyRefunded
			}

			idx := -1
			for i, li := range p.LineItems {
				if li.TicketTypeID == ticketTypeID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return errs.Validationf("purchase %s has no line item for ticket type %s", purchaseID, ticketTypeID)
			}
			if p.LineItems[idx].Quantity < qty {
				return errs.Validationf("cannot refund %d units, only %d remain on the line item", qty, p.LineItems[idx].Quantity)
			}
			amount = p.LineItems[idx].UnitPriceAtSale * int64(qty)

			updated = *p
			updated.LineItems = make([]models.LineItem, 0, len(p.LineItems))
			for i, li := range p.LineItems {
				if i == idx {
					li.Quantity -= qty
					if li.Quantity == 0 {
						continue
					}
				}
				updated.LineItems = append(updated.LineItems, li)
			}
			if len(updated.LineItems) == 0 {
				updated.Status = models.PurchaseRefunded
			} else {
				updated.Status = models.PurchasePartiallyRefunded
			}

			if err := tx.IncrementAvailability(ctx, ticketTypeID, qty); err != nil {
				return err
			}

			if _, err := tx.Bun.NewUpdate().
				Model(&updated).
				Column("line_items", "status").
				Where("purchase_id = ?", updated.PurchaseID).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to update purchase %s: %w", updated.PurchaseID, wrapErr(err))
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return &updated, amount, nil
}
