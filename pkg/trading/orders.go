// Package trading owns trade order records and their status transitions.
//
// An order starts pending and moves exactly once to filled or cancelled. Both
// transitions and partial updates run as conditional writes guarded on the
// pending status inside a transaction, so two racing callers cannot both
// observe pending and both commit.
package trading

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vwa-api/pkg/models"
)

var (
	// ErrOrderNotFound maps to 404.
	ErrOrderNotFound = errors.New("trade order not found")
	// ErrAssetNotFound maps to 404.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAssetInactive maps to 400.
	ErrAssetInactive = errors.New("asset is not active")
	// ErrNotOwner maps to 403. Absence is always checked before ownership.
	ErrNotOwner = errors.New("caller does not own this order")
	// ErrNotPending maps to 400; pending is the only non-terminal status.
	ErrNotPending = errors.New("order is not pending")
	// ErrOwnOrder maps to 400; an owner cannot execute their own order.
	ErrOwnOrder = errors.New("cannot execute your own order")
)

// Manager performs order lifecycle operations against an explicitly supplied
// database handle.
type Manager struct {
	db *gorm.DB
}

// NewManager creates an order lifecycle manager.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// CreateInput holds the validated fields for a new order.
type CreateInput struct {
	AssetID      string
	OrderType    models.OrderType
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	ExpiresAt    *time.Time
}

// Create persists a pending order owned by ownerID. The referenced asset must
// exist and be active.
func (m *Manager) Create(ownerID string, in CreateInput) (*models.TradeOrder, error) {
	var order models.TradeOrder

	err := m.db.Transaction(func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ?", in.AssetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssetNotFound
			}
			return fmt.Errorf("failed to fetch asset: %w", err)
		}

		if !asset.IsActive {
			return ErrAssetInactive
		}

		order = models.TradeOrder{
			AssetID:      in.AssetID,
			OwnerID:      ownerID,
			OrderType:    in.OrderType,
			Quantity:     in.Quantity,
			PricePerUnit: in.PricePerUnit,
			Status:       models.OrderStatusPending,
			ExpiresAt:    in.ExpiresAt,
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// ListFilter narrows and paginates order listings.
type ListFilter struct {
	AssetID   string
	OrderType *models.OrderType
	Status    *models.OrderStatus
	OwnerID   string
	Offset    int
	Limit     int
}

// List returns matching orders. Reads are unrestricted.
func (m *Manager) List(f ListFilter) ([]models.TradeOrder, error) {
	query := m.db.Model(&models.TradeOrder{})

	if f.AssetID != "" {
		query = query.Where("asset_id = ?", f.AssetID)
	}
	if f.OrderType != nil {
		query = query.Where("order_type = ?", *f.OrderType)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.OwnerID != "" {
		query = query.Where("owner_id = ?", f.OwnerID)
	}

	var orders []models.TradeOrder
	if err := query.Offset(f.Offset).Limit(f.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Get returns the order or ErrOrderNotFound.
func (m *Manager) Get(id string) (*models.TradeOrder, error) {
	var order models.TradeOrder
	if err := m.db.Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// UpdateInput holds partial-update fields; nil fields are left untouched.
// Status is deliberately absent: all status changes go through Cancel and
// Execute so their invariant checks cannot be bypassed.
type UpdateInput struct {
	Quantity     *decimal.Decimal
	PricePerUnit *decimal.Decimal
}

// Update applies a partial update on behalf of callerID. Only pending orders
// may change.
func (m *Manager) Update(id, callerID string, in UpdateInput) (*models.TradeOrder, error) {
	var order models.TradeOrder

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to fetch order: %w", err)
		}

		if order.OwnerID != callerID {
			return ErrNotOwner
		}
		if order.Status != models.OrderStatusPending {
			return ErrNotPending
		}

		updates := map[string]interface{}{}
		if in.Quantity != nil {
			updates["quantity"] = *in.Quantity
		}
		if in.PricePerUnit != nil {
			updates["price_per_unit"] = *in.PricePerUnit
		}
		if len(updates) == 0 {
			return nil
		}

		// Guard on pending again inside the write: a concurrent transition
		// between the read and this update must not be overwritten.
		res := tx.Model(&models.TradeOrder{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		return tx.Where("id = ?", id).First(&order).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Cancel transitions a pending order to cancelled on behalf of its owner.
func (m *Manager) Cancel(id, callerID string) (*models.TradeOrder, error) {
	return m.transition(id, models.OrderStatusCancelled, func(order *models.TradeOrder) error {
		if order.OwnerID != callerID {
			return ErrNotOwner
		}
		if order.Status != models.OrderStatusPending {
			return ErrNotPending
		}
		return nil
	})
}

// Execute transitions a pending order to filled on behalf of a counterparty.
// The owner cannot execute their own order. No counter-order matching, price
// validation, or token transfer happens here; settlement is performed
// off-process.
func (m *Manager) Execute(id, callerID string) (*models.TradeOrder, error) {
	return m.transition(id, models.OrderStatusFilled, func(order *models.TradeOrder) error {
		if order.Status != models.OrderStatusPending {
			return ErrNotPending
		}
		if order.OwnerID == callerID {
			return ErrOwnOrder
		}
		return nil
	})
}

// transition loads the order, runs the per-operation checks, then performs a
// conditional pending-guarded status write. RowsAffected == 0 means another
// caller won the race and the transition is rejected.
func (m *Manager) transition(id string, to models.OrderStatus, check func(*models.TradeOrder) error) (*models.TradeOrder, error) {
	var order models.TradeOrder

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to fetch order: %w", err)
		}

		if err := check(&order); err != nil {
			return err
		}

		res := tx.Model(&models.TradeOrder{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to transition order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		return tx.Where("id = ?", id).First(&order).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}
