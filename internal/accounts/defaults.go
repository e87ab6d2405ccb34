package accounts

import "github.com/cleared-dev/books/internal/model"

// Account IDs the posting rules depend on. These are seeded as system accounts
// and can never be deleted.
const (
	Cash               = "cash"
	Bank               = "bank"
	AccountsReceivable = "accounts_receivable"
	Inventory          = "inventory"
	AccountsPayable    = "accounts_payable"
	TaxPayable         = "tax_payable"
	WalletCredits      = "customer_wallet_credits"
	OwnerEquity        = "owner_equity"
	RetainedEarnings   = "retained_earnings"
	SalesRevenue       = "sales_revenue"
	DeliveryIncome     = "delivery_fee_income"
	OtherIncome        = "other_income"
	COGS               = "cogs"
	GeneralExpense     = "general_expense"
)

// DefaultChart returns the seed chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "sole_trader":
		return smallBusinessChart()
	default:
		return smallBusinessChart()
	}
}

func smallBusinessChart() []model.Account {
	return []model.Account{
		{ID: Cash, Code: 1000, Name: "Cash on Hand", Type: model.AccountTypeAsset, Subtype: "cash", IsSystem: true},
		{ID: Bank, Code: 1010, Name: "Bank", Type: model.AccountTypeAsset, Subtype: "bank", IsSystem: true, Description: "Primary business bank account"},
		{ID: AccountsReceivable, Code: 1100, Name: "Accounts Receivable", Type: model.AccountTypeAsset, Subtype: "receivable", IsSystem: true, Description: "Control account for customer invoices"},
		{ID: Inventory, Code: 1200, Name: "Inventory Asset", Type: model.AccountTypeAsset, Subtype: "inventory", IsSystem: true},
		{ID: AccountsPayable, Code: 2000, Name: "Accounts Payable", Type: model.AccountTypeLiability, Subtype: "payable", IsSystem: true, Description: "Control account for vendor bills"},
		{ID: TaxPayable, Code: 2100, Name: "Tax Payable", Type: model.AccountTypeLiability, Subtype: "tax", IsSystem: true, Description: "Output tax collected on sales"},
		{ID: WalletCredits, Code: 2200, Name: "Customer Wallet Credits", Type: model.AccountTypeLiability, Subtype: "deferred", IsSystem: true},
		{ID: OwnerEquity, Code: 3000, Name: "Owner's Equity", Type: model.AccountTypeEquity, Subtype: "capital", IsSystem: true},
		{ID: RetainedEarnings, Code: 3100, Name: "Retained Earnings", Type: model.AccountTypeEquity, Subtype: "retained", IsSystem: true},
		{ID: SalesRevenue, Code: 4000, Name: "Sales Revenue", Type: model.AccountTypeIncome, Subtype: "sales", IsSystem: true},
		{ID: DeliveryIncome, Code: 4100, Name: "Delivery Fee Income", Type: model.AccountTypeIncome, Subtype: "sales", IsSystem: true},
		{ID: OtherIncome, Code: 4900, Name: "Other Income", Type: model.AccountTypeIncome, Subtype: "other", IsSystem: true, Description: "Also absorbs rounding residuals"},
		{ID: COGS, Code: 5000, Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Subtype: "cogs", IsSystem: true},
		{ID: GeneralExpense, Code: 6000, Name: "General Expense", Type: model.AccountTypeExpense, Subtype: "operating", IsSystem: true, Description: "Fallback for unmapped expense categories"},
		{ID: "rent_expense", Code: 6100, Name: "Rent Expense", Type: model.AccountTypeExpense, Subtype: "operating"},
		{ID: "utilities_expense", Code: 6200, Name: "Utilities Expense", Type: model.AccountTypeExpense, Subtype: "operating"},
		{ID: "salaries_expense", Code: 6300, Name: "Salaries Expense", Type: model.AccountTypeExpense, Subtype: "payroll"},
		{ID: "marketing_expense", Code: 6400, Name: "Marketing Expense", Type: model.AccountTypeExpense, Subtype: "operating"},
		{ID: "office_supplies_expense", Code: 6500, Name: "Office Supplies Expense", Type: model.AccountTypeExpense, Subtype: "operating"},
		{ID: "bank_charges_expense", Code: 6600, Name: "Bank Charges Expense", Type: model.AccountTypeExpense, Subtype: "operating"},
	}
}
