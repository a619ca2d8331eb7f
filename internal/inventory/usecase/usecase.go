package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizfleet/inventory-service/internal/inventory"
	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/pkg/cache"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL          = 5 * time.Second
	lockAttempts     = 3
	lockBackoff      = 100 * time.Millisecond
	maxCommitRetries = 3
	commitBackoff    = 50 * time.Millisecond
)

type inventoryUseCase struct {
	repo       inventory.Repository
	warehouses inventory.WarehouseResolver
	cache      *cache.RedisClient
	events     inventory.EventPublisher
	logger     logger.ZapLogger
}

func NewInventoryUseCase(
	repo inventory.Repository,
	warehouses inventory.WarehouseResolver,
	cacheClient *cache.RedisClient,
	events inventory.EventPublisher,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:       repo,
		warehouses: warehouses,
		cache:      cacheClient,
		events:     events,
		logger:     log,
	}
}

// batch is one planned slice of a movement: the lot row it touches (nil for
// untracked products) and its signed net effect on on-hand.
type batch struct {
	write *inventory.LotWrite
	delta int
}

func (uc *inventoryUseCase) Apply(ctx context.Context, input *dto.ApplyInput) ([]model.StockMovement, error) {
	if err := validateApply(input); err != nil {
		return nil, err
	}

	product, err := uc.loadProduct(ctx, input.TenantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	wh, err := uc.warehouses.Resolve(ctx, input.TenantID, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.lock(ctx, input.TenantID, product.ID, wh.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var movements []model.StockMovement
	var newStock int
	err = uc.withRetry(func() error {
		var err error
		movements, newStock, err = uc.applyOnce(ctx, product, wh, input, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notifyLowStock(ctx, product, newStock)
	return movements, nil
}

// applyOnce plans and commits a single movement. reservedDelta lets a
// fulfillment release fold its reserved decrement into the same commit.
func (uc *inventoryUseCase) applyOnce(
	ctx context.Context,
	product *model.Product,
	wh *model.Warehouse,
	input *dto.ApplyInput,
	reservedDelta int,
) ([]model.StockMovement, int, error) {
	invWrite, err := uc.loadInventoryWrite(ctx, product, wh.ID)
	if err != nil {
		return nil, 0, err
	}
	inv := invWrite.Inventory

	batches, err := uc.planTracking(ctx, product, wh.ID, input, inv)
	if err != nil {
		return nil, 0, err
	}

	movements := make([]*model.StockMovement, 0, len(batches))
	now := time.Now()
	running := invWrite.PrevOnHand
	consumed := 0

	for _, b := range batches {
		after := running + b.delta
		if after < 0 {
			return nil, 0, inventory.ErrInsufficientStock
		}
		if b.delta < 0 {
			consumed += -b.delta
		}

		m := &model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      product.ID,
			WarehouseID:    wh.ID,
			ActorID:        optional(input.ActorID),
			Type:           input.Type,
			Quantity:       b.delta,
			BeforeQuantity: running,
			AfterQuantity:  after,
			Reason:         input.Reason,
			Note:           input.Note,
			UnitCost:       input.UnitCost,
			CreatedAt:      now,
		}
		if b.write != nil {
			lotID := b.write.Lot.ID
			m.LotID = &lotID
		}
		if input.Reference != nil {
			m.SetReference(*input.Reference)
		}

		movements = append(movements, m)
		running = after
	}

	inv.OnHand = running
	if input.Type.Damaging() {
		inv.Damaged = invWrite.PrevDamaged + consumed
	}
	if reservedDelta != 0 {
		next := invWrite.PrevReserved + reservedDelta
		if next < 0 {
			next = 0
		}
		inv.Reserved = next
	}
	inv.UpdatedAt = now

	commit := &inventory.MovementCommit{
		ProductID:   product.ID,
		Inventories: []inventory.InventoryWrite{*invWrite},
		Movements:   movements,
	}
	for _, b := range batches {
		if b.write != nil {
			commit.Lots = append(commit.Lots, *b.write)
		}
	}

	newStock, err := uc.repo.CommitMovement(ctx, commit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]model.StockMovement, len(movements))
	for i, m := range movements {
		result[i] = *m
	}
	return result, newStock, nil
}

// planTracking enforces the product's tracking rules and decides which
// lot/serial rows the movement touches.
func (uc *inventoryUseCase) planTracking(
	ctx context.Context,
	product *model.Product,
	warehouseID string,
	input *dto.ApplyInput,
	inv *model.WarehouseInventory,
) ([]batch, error) {
	delta := signedDelta(input)
	magnitude := abs(delta)

	switch product.TrackingType {
	case model.TrackingLot:
		if input.SerialNumber != nil && *input.SerialNumber != "" {
			return nil, fmt.Errorf("%w: serial number supplied for a lot-tracked product", inventory.ErrTrackingMismatch)
		}
		if delta > 0 {
			return uc.planLotIn(ctx, product, warehouseID, input, magnitude)
		}
		return uc.planLotOut(ctx, product, warehouseID, input, magnitude)

	case model.TrackingSerial:
		if magnitude != 1 {
			return nil, fmt.Errorf("%w: serial operations move exactly one unit", inventory.ErrTrackingMismatch)
		}
		if input.LotNumber != nil && *input.LotNumber != "" {
			return nil, fmt.Errorf("%w: lot number supplied for a serial-tracked product", inventory.ErrTrackingMismatch)
		}
		if delta > 0 {
			return uc.planSerialIn(ctx, product, warehouseID, input)
		}
		return uc.planSerialOut(ctx, product, warehouseID, input)

	default:
		if (input.LotNumber != nil && *input.LotNumber != "") ||
			(input.SerialNumber != nil && *input.SerialNumber != "") {
			return nil, fmt.Errorf("%w: lot/serial metadata supplied for an untracked product", inventory.ErrTrackingMismatch)
		}
		return []batch{{delta: delta}}, nil
	}
}

func (uc *inventoryUseCase) planLotIn(
	ctx context.Context,
	product *model.Product,
	warehouseID string,
	input *dto.ApplyInput,
	magnitude int,
) ([]batch, error) {
	lotNumber := ""
	if input.LotNumber != nil {
		lotNumber = *input.LotNumber
	}
	if lotNumber == "" {
		// Synthesize a lot so untagged receipts still get batch identity.
		lotNumber = "LOT-" + strings.ToUpper(uuid.New().String()[:8])
	}

	existing, err := uc.repo.FindLotByNumber(ctx, product.ID, warehouseID, lotNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		prev := existing.Quantity
		existing.Quantity += magnitude
		return []batch{{
			write: &inventory.LotWrite{Lot: existing, PrevQuantity: prev},
			delta: magnitude,
		}}, nil
	}

	lot := &model.Lot{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		WarehouseID: warehouseID,
		LotNumber:   &lotNumber,
		Quantity:    magnitude,
		ExpiresAt:   input.ExpiresAt,
		ReceivedAt:  input.ReceivedAt,
		UnitCost:    input.UnitCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return []batch{{
		write: &inventory.LotWrite{Lot: lot, Created: true},
		delta: magnitude,
	}}, nil
}

func (uc *inventoryUseCase) planLotOut(
	ctx context.Context,
	product *model.Product,
	warehouseID string,
	input *dto.ApplyInput,
	magnitude int,
) ([]batch, error) {
	// Explicit lot choice draws from that one lot only.
	if input.LotNumber != nil && *input.LotNumber != "" {
		lot, err := uc.repo.FindLotByNumber(ctx, product.ID, warehouseID, *input.LotNumber)
		if err != nil {
			return nil, err
		}
		if lot == nil || lot.Quantity < magnitude {
			return nil, inventory.ErrInsufficientStock
		}
		prev := lot.Quantity
		lot.Quantity -= magnitude
		return []batch{{
			write: &inventory.LotWrite{Lot: lot, PrevQuantity: prev},
			delta: -magnitude,
		}}, nil
	}

	// Oldest expiry first, null expiries last. Fail the whole operation if
	// the lots at this warehouse cannot cover the quantity.
	lots, err := uc.repo.ListConsumableLots(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}

	remaining := magnitude
	batches := []batch{}
	for i := range lots {
		if remaining <= 0 {
			break
		}
		lot := lots[i]
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}
		prev := lot.Quantity
		lot.Quantity -= take
		batches = append(batches, batch{
			write: &inventory.LotWrite{Lot: &lot, PrevQuantity: prev},
			delta: -take,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, inventory.ErrInsufficientStock
	}
	return batches, nil
}

func (uc *inventoryUseCase) planSerialIn(
	ctx context.Context,
	product *model.Product,
	warehouseID string,
	input *dto.ApplyInput,
) ([]batch, error) {
	if input.SerialNumber == nil || *input.SerialNumber == "" {
		return nil, fmt.Errorf("%w: serial number required for a serial-tracked product", inventory.ErrTrackingMismatch)
	}

	existing, err := uc.repo.FindSerial(ctx, product.ID, *input.SerialNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Quantity > 0 {
			return nil, fmt.Errorf("%w: serial number already in stock", inventory.ErrTrackingMismatch)
		}
		// Re-entry of a previously consumed unit, e.g. a return.
		prev := existing.Quantity
		existing.Quantity = 1
		existing.WarehouseID = warehouseID
		return []batch{{
			write: &inventory.LotWrite{Lot: existing, PrevQuantity: prev},
			delta: 1,
		}}, nil
	}

	now := time.Now()
	lot := &model.Lot{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		WarehouseID:  warehouseID,
		SerialNumber: input.SerialNumber,
		Quantity:     1,
		ExpiresAt:    input.ExpiresAt,
		ReceivedAt:   input.ReceivedAt,
		UnitCost:     input.UnitCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return []batch{{
		write: &inventory.LotWrite{Lot: lot, Created: true},
		delta: 1,
	}}, nil
}

func (uc *inventoryUseCase) planSerialOut(
	ctx context.Context,
	product *model.Product,
	warehouseID string,
	input *dto.ApplyInput,
) ([]batch, error) {
	var unit *model.Lot

	if input.SerialNumber != nil && *input.SerialNumber != "" {
		found, err := uc.repo.FindSerial(ctx, product.ID, *input.SerialNumber)
		if err != nil {
			return nil, err
		}
		if found == nil || found.Quantity <= 0 || found.WarehouseID != warehouseID {
			return nil, inventory.ErrInsufficientStock
		}
		unit = found
	} else {
		// Serials are interchangeable except for identity; any available
		// unit will do.
		available, err := uc.repo.ListAvailableSerials(ctx, product.ID, warehouseID, 1)
		if err != nil {
			return nil, err
		}
		if len(available) == 0 {
			return nil, inventory.ErrInsufficientStock
		}
		unit = &available[0]
	}

	prev := unit.Quantity
	unit.Quantity = 0
	return []batch{{
		write: &inventory.LotWrite{Lot: unit, PrevQuantity: prev},
		delta: -1,
	}}, nil
}

func (uc *inventoryUseCase) Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("transfer quantity must be positive")
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, fmt.Errorf("transfer requires two distinct warehouses")
	}

	product, err := uc.loadProduct(ctx, input.TenantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	from, err := uc.warehouses.Resolve(ctx, input.TenantID, &input.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	to, err := uc.warehouses.Resolve(ctx, input.TenantID, &input.ToWarehouseID)
	if err != nil {
		return nil, err
	}

	// Lock both sides in a stable order so two opposite transfers cannot
	// deadlock on each other.
	first, second := from.ID, to.ID
	if second < first {
		first, second = second, first
	}
	unlockFirst, err := uc.lock(ctx, input.TenantID, product.ID, first)
	if err != nil {
		return nil, err
	}
	defer unlockFirst()
	unlockSecond, err := uc.lock(ctx, input.TenantID, product.ID, second)
	if err != nil {
		return nil, err
	}
	defer unlockSecond()

	var movements []model.StockMovement
	err = uc.withRetry(func() error {
		var err error
		movements, err = uc.transferOnce(ctx, product, from, to, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (uc *inventoryUseCase) transferOnce(
	ctx context.Context,
	product *model.Product,
	from, to *model.Warehouse,
	input *dto.TransferInput,
) ([]model.StockMovement, error) {
	fromWrite, err := uc.loadInventoryWrite(ctx, product, from.ID)
	if err != nil {
		return nil, err
	}
	toWrite, err := uc.loadInventoryWrite(ctx, product, to.ID)
	if err != nil {
		return nil, err
	}

	reason := input.Reason
	if reason == "" {
		reason = "transfer"
	}

	outInput := &dto.ApplyInput{
		TenantID:     input.TenantID,
		ProductID:    input.ProductID,
		Type:         model.MovementTransferOut,
		Quantity:     input.Quantity,
		ActorID:      input.ActorID,
		Reason:       reason,
		Note:         input.Note,
		LotNumber:    input.LotNumber,
		SerialNumber: input.SerialNumber,
		Reference:    &model.Reference{Kind: model.ReferenceTransfer, ID: to.ID},
	}

	outBatches, err := uc.planTracking(ctx, product, from.ID, outInput, fromWrite.Inventory)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	commit := &inventory.MovementCommit{
		ProductID:   product.ID,
		Inventories: []inventory.InventoryWrite{},
	}
	movements := []*model.StockMovement{}

	fromRunning := fromWrite.PrevOnHand
	toRunning := toWrite.PrevOnHand

	for _, b := range outBatches {
		outAfter := fromRunning + b.delta
		if outAfter < 0 {
			return nil, inventory.ErrInsufficientStock
		}
		qty := -b.delta

		out := &model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      product.ID,
			WarehouseID:    from.ID,
			ActorID:        optional(input.ActorID),
			Type:           model.MovementTransferOut,
			Quantity:       b.delta,
			BeforeQuantity: fromRunning,
			AfterQuantity:  outAfter,
			Reason:         reason,
			Note:           input.Note,
			CreatedAt:      now,
		}
		out.SetReference(model.Reference{Kind: model.ReferenceTransfer, ID: to.ID})

		in := &model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      product.ID,
			WarehouseID:    to.ID,
			ActorID:        optional(input.ActorID),
			Type:           model.MovementTransferIn,
			Quantity:       qty,
			BeforeQuantity: toRunning,
			AfterQuantity:  toRunning + qty,
			Reason:         reason,
			Note:           input.Note,
			CreatedAt:      now,
		}
		in.SetReference(model.Reference{Kind: model.ReferenceTransfer, ID: from.ID})

		if b.write != nil {
			if b.write.Lot.IsSerial() {
				// A serial unit moves wholesale: its single row changes
				// warehouse, so the serial keeps exactly one lot entry.
				moved := b.write.Lot
				moved.Quantity = 1
				moved.WarehouseID = to.ID
				moved.UpdatedAt = now
				lotID := moved.ID
				out.LotID = &lotID
				in.LotID = &lotID
				commit.Lots = append(commit.Lots, inventory.LotWrite{
					Lot:          moved,
					PrevQuantity: b.write.PrevQuantity,
				})
			} else {
				outLotID := b.write.Lot.ID
				out.LotID = &outLotID
				commit.Lots = append(commit.Lots, *b.write)

				// Mirror the consumed slice into a matching lot at the
				// destination, keeping batch identity across the move.
				inLot, err := uc.mirrorLot(ctx, b.write.Lot, to.ID, qty)
				if err != nil {
					return nil, err
				}
				inLotID := inLot.Lot.ID
				in.LotID = &inLotID
				commit.Lots = append(commit.Lots, *inLot)
			}
		}

		movements = append(movements, out, in)
		fromRunning = outAfter
		toRunning += qty
	}

	fromWrite.Inventory.OnHand = fromRunning
	fromWrite.Inventory.UpdatedAt = now
	toWrite.Inventory.OnHand = toRunning
	toWrite.Inventory.UpdatedAt = now

	commit.Inventories = append(commit.Inventories, *fromWrite, *toWrite)
	commit.Movements = movements

	if _, err := uc.repo.CommitMovement(ctx, commit); err != nil {
		return nil, err
	}

	result := make([]model.StockMovement, len(movements))
	for i, m := range movements {
		result[i] = *m
	}
	return result, nil
}

// mirrorLot finds or creates the destination-side lot row for a transfer.
// Serial units never reach here: their single row is re-homed in place.
func (uc *inventoryUseCase) mirrorLot(ctx context.Context, src *model.Lot, toWarehouseID string, qty int) (*inventory.LotWrite, error) {
	now := time.Now()

	var lotNumber string
	if src.LotNumber != nil {
		lotNumber = *src.LotNumber
	}

	existing, err := uc.repo.FindLotByNumber(ctx, src.ProductID, toWarehouseID, lotNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		prev := existing.Quantity
		existing.Quantity += qty
		return &inventory.LotWrite{Lot: existing, PrevQuantity: prev}, nil
	}

	dst := &model.Lot{
		ID:          uuid.New().String(),
		ProductID:   src.ProductID,
		WarehouseID: toWarehouseID,
		LotNumber:   src.LotNumber,
		Quantity:    qty,
		ExpiresAt:   src.ExpiresAt,
		ReceivedAt:  src.ReceivedAt,
		UnitCost:    src.UnitCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return &inventory.LotWrite{Lot: dst, Created: true}, nil
}

func (uc *inventoryUseCase) EnsureInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error) {
	product, err := uc.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	wh, err := uc.warehouses.Resolve(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.repo.EnsureInventory(ctx, newZeroInventory(product, wh.ID))
}

func (uc *inventoryUseCase) Reserve(ctx context.Context, input *dto.ReserveInput) error {
	if input.Quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive")
	}

	product, err := uc.loadProduct(ctx, input.TenantID, input.ProductID)
	if err != nil {
		return err
	}
	wh, err := uc.warehouses.Resolve(ctx, input.TenantID, input.WarehouseID)
	if err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, input.TenantID, product.ID, wh.ID)
	if err != nil {
		return err
	}
	defer unlock()

	return uc.withRetry(func() error {
		write, err := uc.loadInventoryWrite(ctx, product, wh.ID)
		if err != nil {
			return err
		}
		inv := write.Inventory

		if input.Quantity > inv.OnHand-inv.Reserved {
			return inventory.ErrInsufficientAvailable
		}

		inv.Reserved = write.PrevReserved + input.Quantity
		inv.UpdatedAt = time.Now()

		_, err = uc.repo.CommitReservation(ctx, &inventory.ReservationCommit{
			ProductID: product.ID,
			Inventory: *write,
		})
		return err
	})
}

func (uc *inventoryUseCase) Release(ctx context.Context, input *dto.ReleaseInput) error {
	if input.Quantity <= 0 {
		return fmt.Errorf("release quantity must be positive")
	}

	product, err := uc.loadProduct(ctx, input.TenantID, input.ProductID)
	if err != nil {
		return err
	}
	wh, err := uc.warehouses.Resolve(ctx, input.TenantID, input.WarehouseID)
	if err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, input.TenantID, product.ID, wh.ID)
	if err != nil {
		return err
	}
	defer unlock()

	switch input.Kind {
	case dto.ReleaseFulfill:
		applyInput := &dto.ApplyInput{
			TenantID:  input.TenantID,
			ProductID: input.ProductID,
			Type:      model.MovementOut,
			Quantity:  input.Quantity,
			ActorID:   input.ActorID,
			Reason:    "sale",
			Note:      input.Note,
			Reference: &input.Reference,
		}
		var newStock int
		err := uc.withRetry(func() error {
			var err error
			_, newStock, err = uc.applyOnce(ctx, product, wh, applyInput, -input.Quantity)
			return err
		})
		if err != nil {
			return err
		}
		uc.notifyLowStock(ctx, product, newStock)
		return nil

	case dto.ReleaseCancel:
		return uc.withRetry(func() error {
			write, err := uc.loadInventoryWrite(ctx, product, wh.ID)
			if err != nil {
				return err
			}
			inv := write.Inventory

			next := write.PrevReserved - input.Quantity
			if next < 0 {
				next = 0
			}
			if next == write.PrevReserved {
				return nil
			}
			inv.Reserved = next
			inv.UpdatedAt = time.Now()

			_, err = uc.repo.CommitReservation(ctx, &inventory.ReservationCommit{
				ProductID: product.ID,
				Inventory: *write,
			})
			return err
		})

	default:
		return fmt.Errorf("unknown release kind %q", input.Kind)
	}
}

func (uc *inventoryUseCase) GetInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error) {
	product, err := uc.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	wh, err := uc.warehouses.Resolve(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	inv, err := uc.repo.GetInventory(ctx, product.ID, wh.ID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// Zero object; the row is created lazily on first movement.
		return &model.WarehouseInventory{
			ProductID:    product.ID,
			WarehouseID:  wh.ID,
			MinimumStock: product.MinimumStock,
			ReorderPoint: product.MinimumStock,
		}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListInventories(ctx context.Context, filters *dto.InventoryFilters) ([]model.WarehouseInventory, int, error) {
	return uc.repo.ListInventories(ctx, filters)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) ListLots(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, int, error) {
	return uc.repo.ListLots(ctx, filters)
}

func (uc *inventoryUseCase) loadProduct(ctx context.Context, tenantID, productID string) (*model.Product, error) {
	product, err := uc.repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, inventory.ErrProductNotFound
	}
	return product, nil
}

// loadInventoryWrite reads the aggregate row and snapshots the balances the
// eventual commit will be conditioned on. Missing rows become zero inserts.
func (uc *inventoryUseCase) loadInventoryWrite(ctx context.Context, product *model.Product, warehouseID string) (*inventory.InventoryWrite, error) {
	inv, err := uc.repo.GetInventory(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &inventory.InventoryWrite{
			Inventory: newZeroInventory(product, warehouseID),
			Created:   true,
		}, nil
	}
	return &inventory.InventoryWrite{
		Inventory:    inv,
		PrevOnHand:   inv.OnHand,
		PrevReserved: inv.Reserved,
		PrevDamaged:  inv.Damaged,
	}, nil
}

func (uc *inventoryUseCase) lock(ctx context.Context, parts ...string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	key := "lock:inventory:" + strings.Join(parts, ":")
	value := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire inventory lock", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.cache.ReleaseLock(context.Background(), key, value); err != nil {
					uc.logger.Error("failed to release inventory lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(lockBackoff)
	}

	return nil, inventory.ErrContention
}

// withRetry re-runs fn while it loses optimistic commits; each attempt
// replans from freshly read state.
func (uc *inventoryUseCase) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		err = fn()
		if !errors.Is(err, inventory.ErrContention) {
			return err
		}
		time.Sleep(commitBackoff)
	}
	return err
}

func (uc *inventoryUseCase) notifyLowStock(ctx context.Context, product *model.Product, newStock int) {
	if uc.events == nil || product.MinimumStock <= 0 {
		return
	}
	// Only the downward crossing publishes, so a product sitting below its
	// minimum does not alert on every movement.
	if product.Stock <= product.MinimumStock || newStock > product.MinimumStock {
		product.Stock = newStock
		return
	}
	product.Stock = newStock

	event := &dto.LowStockEvent{
		TenantID:     product.TenantID,
		ProductID:    product.ID,
		SKU:          product.SKU,
		Name:         product.Name,
		Stock:        newStock,
		MinimumStock: product.MinimumStock,
		OccurredAt:   time.Now(),
	}
	if err := uc.events.PublishLowStock(ctx, event); err != nil {
		uc.logger.Error("failed to publish low stock event",
			zap.String("product_id", product.ID), zap.Error(err))
	}
}

func validateApply(input *dto.ApplyInput) error {
	if !input.Type.Valid() {
		return fmt.Errorf("unknown movement type %q", input.Type)
	}
	if input.Type == model.MovementAdjust {
		if input.Quantity == 0 {
			return fmt.Errorf("adjust delta must be nonzero")
		}
		return nil
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive for %q movements", input.Type)
	}
	return nil
}

// signedDelta maps the input quantity onto a net on-hand effect: adjust
// passes its sign through, every other type implies direction.
func signedDelta(input *dto.ApplyInput) int {
	if input.Type == model.MovementAdjust {
		return input.Quantity
	}
	if input.Type.Consuming() {
		return -input.Quantity
	}
	return input.Quantity
}

func newZeroInventory(product *model.Product, warehouseID string) *model.WarehouseInventory {
	now := time.Now()
	return &model.WarehouseInventory{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		WarehouseID:  warehouseID,
		MinimumStock: product.MinimumStock,
		ReorderPoint: product.MinimumStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
