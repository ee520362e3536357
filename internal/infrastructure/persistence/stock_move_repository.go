package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMoveRepository implements StockMoveRepository using GORM. The
// move journal is append-only: there is no update or delete.
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// Create inserts a move header with its lines
func (r *GormStockMoveRepository) Create(ctx context.Context, move *inventory.StockMove) error {
	return r.db.WithContext(ctx).Create(move).Error
}

// FindByID returns a move with lines preloaded
func (r *GormStockMoveRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMove, error) {
	var move inventory.StockMove
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&move, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &move, nil
}

// FindBySource returns the moves recorded for an originating document
func (r *GormStockMoveRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceDocType, sourceID string) ([]inventory.StockMove, error) {
	var moves []inventory.StockMove
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("moved_at ASC").
		Find(&moves).Error
	if err != nil {
		return nil, err
	}
	return moves, nil
}

// FindAllForTenant lists moves with pagination, newest first
func (r *GormStockMoveRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockMove], error) {
	base := r.db.WithContext(ctx).
		Model(&inventory.StockMove{}).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var moves []inventory.StockMove
	if err := paginate(base.Preload("Lines"), filter, "moved_at DESC").Find(&moves).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(moves, total, filter.Page, filter.PageSize)
	return &page, nil
}

var _ inventory.StockMoveRepository = (*GormStockMoveRepository)(nil)
