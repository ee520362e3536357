package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	var account treasury.BankAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDForTenant finds a bank account by ID within a tenant
func (r *GormBankAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*treasury.BankAccount, error) {
	var account treasury.BankAccount
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAllForTenant lists bank accounts with pagination
func (r *GormBankAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[treasury.BankAccount], error) {
	base := r.db.WithContext(ctx).
		Model(&treasury.BankAccount{}).
		Where("tenant_id = ?", tenantID)

	if active, ok := filter.Filters["active"]; ok {
		base = base.Where("active = ?", active)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var accounts []treasury.BankAccount
	if err := paginate(base, filter, "code ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(accounts, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create inserts a bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, account *treasury.BankAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Save updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *treasury.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

var _ treasury.BankAccountRepository = (*GormBankAccountRepository)(nil)
