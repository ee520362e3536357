package treasury

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/backoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BankAccountService manages bank/cash/wallet accounts. Balances are never
// written here; they mutate only inside payment registration.
type BankAccountService struct {
	accounts treasury.BankAccountRepository
	logger   *zap.Logger
}

// NewBankAccountService creates a new BankAccountService
func NewBankAccountService(accounts treasury.BankAccountRepository, logger *zap.Logger) *BankAccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankAccountService{accounts: accounts, logger: logger}
}

// CreateBankAccount registers a new balance holder starting at zero
func (s *BankAccountService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	account, err := treasury.NewBankAccount(req.TenantID, req.Code, req.Name, req.Kind, valueobject.Currency(req.CurrencyCode))
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("bank account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
		zap.String("currency", string(account.CurrencyCode)))

	resp := ToBankAccountResponse(account)
	return &resp, nil
}

// GetBankAccount returns a bank account by ID
func (s *BankAccountService) GetBankAccount(ctx context.Context, tenantID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accounts.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBankAccountResponse(account)
	return &resp, nil
}

// ListBankAccounts returns a page of the tenant's bank accounts
func (s *BankAccountService) ListBankAccounts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[BankAccountResponse], error) {
	page, err := s.accounts.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]BankAccountResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToBankAccountResponse(&page.Items[idx]))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// DeactivateBankAccount disables the account for new payments
func (s *BankAccountService) DeactivateBankAccount(ctx context.Context, tenantID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accounts.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	account.Deactivate()
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("bank account deactivated", zap.String("account_id", account.ID.String()))

	resp := ToBankAccountResponse(account)
	return &resp, nil
}
