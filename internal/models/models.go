package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

type TransactionStatus string

const (
	TransactionPaid    TransactionStatus = "PAID"
	TransactionPending TransactionStatus = "PENDING"
)

type RecurringType string

const (
	RecurringFixed       RecurringType = "FIXED"
	RecurringInstallment RecurringType = "INSTALLMENT"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

type AssetType string

const (
	AssetStock       AssetType = "STOCK"
	AssetREIT        AssetType = "REIT"
	AssetFixedIncome AssetType = "FIXED_INCOME"
	AssetCrypto      AssetType = "CRYPTO"
	AssetOther       AssetType = "OTHER"
)

type InvestmentType string

const (
	InvestmentBuy      InvestmentType = "BUY"
	InvestmentSell     InvestmentType = "SELL"
	InvestmentDividend InvestmentType = "DIVIDEND"
	InvestmentJCP      InvestmentType = "JCP"
)

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "PAID"
	PaymentOverdue   PaymentStatus = "OVERDUE"
	PaymentSuspended PaymentStatus = "SUSPENDED"
)

type BillingInterval string

const (
	IntervalMonthly   BillingInterval = "MONTHLY"
	IntervalQuarterly BillingInterval = "QUARTERLY"
	IntervalSemester  BillingInterval = "SEMESTER"
	IntervalAnnual    BillingInterval = "ANNUAL"
)

type DocumentKind string

const (
	DocumentPersonal DocumentKind = "PERSONAL"
	DocumentBusiness DocumentKind = "BUSINESS"
)

type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "PAID"
	InvoicePending InvoiceStatus = "PENDING"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
)

type User struct {
	ID              string          `db:"id" json:"id"`
	Username        string          `db:"username" json:"username"`
	Email           string          `db:"email" json:"email"`
	PasswordHash    string          `db:"password_hash" json:"-"`
	AccountType     DocumentKind    `db:"account_type" json:"account_type"`
	Document        string          `db:"document" json:"document"`
	ExpirationDate  time.Time       `db:"expiration_date" json:"expiration_date"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"payment_status"`
	BillingAttempts int             `db:"billing_attempts" json:"billing_attempts"`
	BillingInterval BillingInterval `db:"billing_interval" json:"billing_interval"`
	PriceMinor      int64           `db:"price_minor" json:"price_minor"`
	LastInvoiceID   *string         `db:"last_invoice_id" json:"last_invoice_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type Account struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Category struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"user_id"`
	Name        string       `db:"name" json:"name"`
	Type        CategoryType `db:"type" json:"type"`
	Color       string       `db:"color" json:"color"`
	ParentID    *string      `db:"parent_id" json:"parent_id,omitempty"`
	DRECategory *string      `db:"dre_category" json:"dre_category,omitempty"`
	BudgetMinor *int64       `db:"budget_minor" json:"budget_minor,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID                 string            `db:"id" json:"id"`
	UserID             string            `db:"user_id" json:"user_id"`
	Description        string            `db:"description" json:"description"`
	AmountMinor        int64             `db:"amount_minor" json:"amount_minor"`
	Date               time.Time         `db:"date" json:"date"`
	PaymentDate        *time.Time        `db:"payment_date" json:"payment_date,omitempty"`
	Type               TransactionType   `db:"type" json:"type"`
	CategoryID         *string           `db:"category_id" json:"category_id,omitempty"`
	AccountID          string            `db:"account_id" json:"account_id"`
	ToAccountID        *string           `db:"to_account_id" json:"to_account_id,omitempty"`
	Status             TransactionStatus `db:"status" json:"status"`
	IsRecurring        bool              `db:"is_recurring" json:"is_recurring"`
	RecurringType      *RecurringType    `db:"recurring_type" json:"recurring_type,omitempty"`
	InstallmentCurrent *int              `db:"installment_current" json:"installment_current,omitempty"`
	InstallmentTotal   *int              `db:"installment_total" json:"installment_total,omitempty"`
	GroupID            *string           `db:"group_id" json:"group_id,omitempty"`
	ParentID           *string           `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
}

type InvestmentAsset struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	Ticker            string          `db:"ticker" json:"ticker"`
	Name              string          `db:"name" json:"name"`
	Type              AssetType       `db:"type" json:"type"`
	Quantity          decimal.Decimal `db:"quantity" json:"quantity"`
	AveragePriceMinor int64           `db:"average_price_minor" json:"average_price_minor"`
	CurrentPriceMinor int64           `db:"current_price_minor" json:"current_price_minor"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

type InvestmentTransaction struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"user_id"`
	AssetID    string          `db:"asset_id" json:"asset_id"`
	Type       InvestmentType  `db:"type" json:"type"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	PriceMinor int64           `db:"price_minor" json:"price_minor"`
	FeesMinor  int64           `db:"fees_minor" json:"fees_minor"`
	TotalMinor int64           `db:"total_minor" json:"total_minor"`
	Date       time.Time       `db:"date" json:"date"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type Invoice struct {
	ID             string        `db:"id" json:"id"`
	UserID         string        `db:"user_id" json:"user_id"`
	AmountMinor    int64         `db:"amount_minor" json:"amount_minor"`
	Status         InvoiceStatus `db:"status" json:"status"`
	DueDate        time.Time     `db:"due_date" json:"due_date"`
	PaidAt         *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	ReferenceMonth string        `db:"reference_month" json:"reference_month"`
	PDFURL         string        `db:"pdf_url" json:"pdf_url"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}
