package mapping

import (
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its model form.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		CompanyID:        d.CompanyID,
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		CurrencyCode:     d.CurrencyCode,
		Status:           models.JournalStatus(d.Status),
		IdempotencyKey:   d.IdempotencyKey,
		SourceType:       string(d.SourceType),
		SourceID:         d.SourceID,
		OriginalEntryID:  d.OriginalEntryID,
		ReversingEntryID: d.ReversingEntryID,
		ExchangeRateID:   d.ExchangeRateID,
		Amount:           d.Amount,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		CompanyID:        m.CompanyID,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		CurrencyCode:     m.CurrencyCode,
		Status:           domain.JournalStatus(m.Status),
		IdempotencyKey:   m.IdempotencyKey,
		SourceType:       domain.EntrySource(m.SourceType),
		SourceID:         m.SourceID,
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		ExchangeRateID:   m.ExchangeRateID,
		Amount:           m.Amount,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to its model form.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		CompanyID:    d.CompanyID,
		AccountID:    d.AccountID,
		Side:         models.LineSide(d.Side),
		Amount:       d.Amount,
		BaseAmount:   d.BaseAmount,
		CurrencyCode: d.CurrencyCode,
		Notes:        d.Notes,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to its domain form.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		CompanyID:    m.CompanyID,
		AccountID:    m.AccountID,
		Side:         domain.LineSide(m.Side),
		Amount:       m.Amount,
		BaseAmount:   m.BaseAmount,
		CurrencyCode: m.CurrencyCode,
		Notes:        m.Notes,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model lines to domain lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
