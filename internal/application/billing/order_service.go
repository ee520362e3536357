package billing

import (
	"context"
	"fmt"

	appinv "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService orchestrates the order lifecycle. Confirmation issues the
// ordered stock, cancellation of a confirmed order books the compensating
// receipt, both in the same transaction as the status change.
type OrderService struct {
	txScope TransactionScope
	orders  billing.OrderRepository
	rates   RateProvider
	logger  *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope TransactionScope, orders billing.OrderRepository, rates RateProvider, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{txScope: txScope, orders: orders, rates: rates, logger: logger}
}

// CreateOrder creates a pending order. No stock moves yet.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "CreateOrder")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPartnerID, req.PartnerID.String(),
	)

	currency := valueobject.Currency(req.CurrencyCode)
	rate, err := s.rates.LatestRate(ctx, req.TenantID, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var order *billing.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Partners().FindByIDForTenant(ctx, req.TenantID, req.PartnerID); err != nil {
			return err
		}
		warehouse, err := repos.Warehouses().FindByIDForTenant(ctx, req.TenantID, req.WarehouseID)
		if err != nil {
			return err
		}
		if !warehouse.BelongsToBranch(req.BranchID) {
			return shared.ErrCrossBranchViolation
		}

		seq, err := repos.Orders().NextSequence(ctx, req.TenantID)
		if err != nil {
			return err
		}
		number := fmt.Sprintf("ORD-%08d", seq)

		order, err = billing.NewOrder(req.TenantID, number, req.PartnerID, req.BranchID, req.WarehouseID, currency, rate)
		if err != nil {
			return err
		}
		if req.ActorID != nil {
			order.SetCreatedBy(*req.ActorID)
		}

		for _, line := range req.Lines {
			product, err := repos.Products().FindByIDForTenant(ctx, req.TenantID, line.ProductID)
			if err != nil {
				return err
			}
			price := line.UnitPrice
			if price == nil {
				price = &product.SellingPrice
			}
			if err := order.AddLine(product.ID, product.Name, line.Quantity, *price); err != nil {
				return err
			}
		}

		return repos.Orders().Create(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("total", order.Total.String()))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ConfirmOrder confirms a pending order and issues the ordered quantities
// out of the order's warehouse. Insufficient stock aborts the confirmation.
func (s *OrderService) ConfirmOrder(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "ConfirmOrder")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderID, orderID.String(),
	)

	var order *billing.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.Confirm(); err != nil {
			return err
		}

		lines := make([]appinv.MoveLineRequest, 0, len(order.Lines))
		for _, line := range order.Lines {
			lines = append(lines, appinv.MoveLineRequest{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
		applier := appinv.NewMoveApplier(repos)
		if _, err := applier.Apply(ctx, appinv.CreateMoveRequest{
			TenantID:          tenantID,
			BranchID:          &order.BranchID,
			ActorID:           actorID,
			Type:              inventory.MoveTypeOut,
			SourceWarehouseID: &order.WarehouseID,
			SourceType:        inventory.SourceDocOrder,
			SourceID:          order.ID.String(),
			Lines:             lines,
		}); err != nil {
			return err
		}

		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelOrder cancels an order. If the order had been confirmed, the issued
// stock comes back in with a receipt that does not disturb the average cost.
func (s *OrderService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID, actorID *uuid.UUID, reason string) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "CancelOrder")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderID, orderID.String(),
	)

	var order *billing.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		wasConfirmed, err := order.Cancel(reason)
		if err != nil {
			return err
		}

		if wasConfirmed {
			lines := make([]appinv.MoveLineRequest, 0, len(order.Lines))
			for _, line := range order.Lines {
				lines = append(lines, appinv.MoveLineRequest{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
				})
			}
			applier := appinv.NewMoveApplier(repos)
			if _, err := applier.Apply(ctx, appinv.CreateMoveRequest{
				TenantID:        tenantID,
				BranchID:        &order.BranchID,
				ActorID:         actorID,
				Type:            inventory.MoveTypeIn,
				DestWarehouseID: &order.WarehouseID,
				SourceType:      inventory.SourceDocVoid,
				SourceID:        order.ID.String(),
				Lines:           lines,
			}); err != nil {
				return err
			}
		}

		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("reason", reason))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order by ID
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns a page of the tenant's orders
func (s *OrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.orders.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, ToOrderResponse(&o))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}
