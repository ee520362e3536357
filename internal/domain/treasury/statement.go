package treasury

import (
	"sort"
	"time"

	"github.com/backoffice/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementEntryKind identifies the document behind a statement entry
type StatementEntryKind string

const (
	StatementEntryInvoice    StatementEntryKind = "INVOICE"
	StatementEntryPayment    StatementEntryKind = "PAYMENT"
	StatementEntryCreditNote StatementEntryKind = "CREDIT_NOTE"
)

// StatementEntry is one row of a partner's chronological ledger
type StatementEntry struct {
	Kind       StatementEntryKind
	DocumentID uuid.UUID
	Document   string
	Date       time.Time
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Balance    decimal.Decimal
}

// AccountStatement is the merged ledger of a partner's invoices, payments
// and credit notes with a running balance.
//
// Balance is what the partner still owes; UnusedBalance is the credit the
// partner holds against future invoices: credit note totals plus payment
// remainders never allocated, minus the credit already consumed through
// BALANCE pseudo-method payments.
type AccountStatement struct {
	PartnerID     uuid.UUID
	Entries       []StatementEntry
	Balance       decimal.Decimal
	UnusedBalance decimal.Decimal
}

// BuildStatement merges a partner's documents into one chronological ledger.
// Draft and void invoices never reach the statement; BALANCE payments appear
// but net to zero since they move partner credit, not cash.
func BuildStatement(partnerID uuid.UUID, invoices []billing.Invoice, payments []Payment, notes []billing.CreditNote) *AccountStatement {
	entries := make([]StatementEntry, 0, len(invoices)+len(payments)+len(notes))

	for _, inv := range invoices {
		if inv.Status == billing.InvoiceStatusDraft || inv.Status == billing.InvoiceStatusVoid {
			continue
		}
		entries = append(entries, StatementEntry{
			Kind:       StatementEntryInvoice,
			DocumentID: inv.ID,
			Document:   inv.DocumentCode,
			Date:       inv.IssuedAt,
			Debit:      inv.Total,
			Credit:     decimal.Zero,
		})
	}

	unused := decimal.Zero

	for idx := range payments {
		p := &payments[idx]
		credit := p.Amount
		if !p.Method.MovesCash() {
			credit = decimal.Zero
			unused = unused.Sub(p.Amount)
		} else {
			unused = unused.Add(p.UnallocatedAmount())
		}
		entries = append(entries, StatementEntry{
			Kind:       StatementEntryPayment,
			DocumentID: p.ID,
			Document:   p.Reference,
			Date:       p.PaidAt,
			Debit:      decimal.Zero,
			Credit:     credit,
		})
	}

	for _, note := range notes {
		entries = append(entries, StatementEntry{
			Kind:       StatementEntryCreditNote,
			DocumentID: note.ID,
			Document:   note.DocumentCode,
			Date:       note.IssuedAt,
			Debit:      decimal.Zero,
			Credit:     note.Total,
		})
		unused = unused.Add(note.Total)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	balance := decimal.Zero
	for idx := range entries {
		balance = balance.Add(entries[idx].Debit).Sub(entries[idx].Credit)
		entries[idx].Balance = balance
	}

	return &AccountStatement{
		PartnerID:     partnerID,
		Entries:       entries,
		Balance:       balance,
		UnusedBalance: unused,
	}
}
