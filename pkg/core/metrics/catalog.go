package metrics

// catalog is the static metric catalog. Aliases must be disjoint across
// metrics after normalization; concept lists are in priority order.
var catalog = []MetricMapping{
	// --- Income statement ---
	{
		CanonicalName: "revenue",
		Aliases: []string{
			"revenue", "total revenue", "net revenue", "net sales",
			"total net revenue", "sales", "total net sales", "net revenues",
		},
		Concepts: []string{
			"RevenueFromContractWithCustomerExcludingAssessedTax",
			"Revenues",
			"RevenueFromContractWithCustomerIncludingAssessedTax",
			"SalesRevenueNet",
			"TotalRevenuesAndOtherIncome",
		},
		Unit:      UnitCurrency,
		Statement: StatementIncome,
	},
	{
		CanonicalName: "cost_of_revenue",
		Aliases:       []string{"cost of revenue", "cost of sales", "cost of goods sold", "cogs"},
		Concepts:      []string{"CostOfGoodsAndServicesSold", "CostOfRevenue", "CostOfGoodsSold"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "gross_profit",
		Aliases:       []string{"gross profit", "gross margin dollars"},
		Concepts:      []string{"GrossProfit"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "operating_income",
		Aliases:       []string{"operating income", "income from operations", "operating profit", "EBIT"},
		Concepts: []string{
			"OperatingIncomeLoss",
			"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		},
		Unit:      UnitCurrency,
		Statement: StatementIncome,
	},
	{
		CanonicalName: "net_income",
		Aliases: []string{
			"net income", "net earnings", "net profit", "bottom line",
			"net income attributable to common stockholders",
		},
		Concepts: []string{
			"NetIncomeLoss",
			"ProfitLoss",
			"NetIncomeLossAvailableToCommonStockholdersBasic",
		},
		Unit:      UnitCurrency,
		Statement: StatementIncome,
	},
	{
		CanonicalName: "eps_basic",
		Aliases:       []string{"earnings per share", "EPS", "basic EPS", "basic earnings per share"},
		Concepts:      []string{"EarningsPerShareBasic"},
		Unit:          UnitCurrencyPerShare,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "eps_diluted",
		Aliases:       []string{"diluted EPS", "diluted earnings per share", "eps diluted"},
		Concepts:      []string{"EarningsPerShareDiluted"},
		Unit:          UnitCurrencyPerShare,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "research_and_development",
		Aliases: []string{
			"R&D", "research and development", "R&D expense",
			"research and development expense",
		},
		Concepts:  []string{"ResearchAndDevelopmentExpense"},
		Unit:      UnitCurrency,
		Statement: StatementIncome,
	},
	{
		CanonicalName: "selling_general_admin",
		Aliases:       []string{"SG&A", "selling general and administrative", "selling and marketing"},
		Concepts:      []string{"SellingGeneralAndAdministrativeExpense"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "operating_expenses",
		Aliases:       []string{"operating expenses", "total operating expenses", "opex"},
		Concepts:      []string{"OperatingExpenses", "CostsAndExpenses"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "interest_expense",
		Aliases:       []string{"interest expense", "interest cost"},
		Concepts:      []string{"InterestExpense", "InterestExpenseDebt"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},
	{
		CanonicalName: "income_tax_expense",
		Aliases:       []string{"income tax", "tax expense", "provision for income taxes"},
		Concepts:      []string{"IncomeTaxExpenseBenefit"},
		Unit:          UnitCurrency,
		Statement:     StatementIncome,
	},

	// --- Margins (computed) ---
	{
		CanonicalName: "gross_margin",
		Aliases:       []string{"gross margin", "gross profit margin"},
		Unit:          UnitPercentage,
		Statement:     StatementComputed,
		Formula:       &Formula{Op: OpRatioPct, A: "gross_profit", B: "revenue"},
	},
	{
		CanonicalName: "operating_margin",
		Aliases:       []string{"operating margin", "op margin"},
		Unit:          UnitPercentage,
		Statement:     StatementComputed,
		Formula:       &Formula{Op: OpRatioPct, A: "operating_income", B: "revenue"},
	},
	{
		CanonicalName: "net_margin",
		Aliases:       []string{"net margin", "profit margin", "net income margin"},
		Unit:          UnitPercentage,
		Statement:     StatementComputed,
		Formula:       &Formula{Op: OpRatioPct, A: "net_income", B: "revenue"},
	},

	// --- Balance sheet (point-in-time snapshots) ---
	{
		CanonicalName: "total_assets",
		Aliases:       []string{"total assets"},
		Concepts:      []string{"Assets"},
		Unit:          UnitCurrency,
		Statement:     StatementBalanceSheet,
		IsPointInTime: true,
	},
	{
		CanonicalName: "total_liabilities",
		Aliases:       []string{"total liabilities"},
		Concepts:      []string{"Liabilities"},
		Unit:          UnitCurrency,
		Statement:     StatementBalanceSheet,
		IsPointInTime: true,
	},
	{
		CanonicalName: "total_equity",
		Aliases: []string{
			"total equity", "stockholders equity", "shareholders equity",
			"total stockholders equity",
		},
		Concepts: []string{
			"StockholdersEquity",
			"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
		},
		Unit:          UnitCurrency,
		Statement:     StatementBalanceSheet,
		IsPointInTime: true,
	},
	{
		CanonicalName: "cash_and_equivalents",
		Aliases: []string{
			"cash", "cash and equivalents", "cash and cash equivalents",
			"cash and short-term investments",
		},
		Concepts: []string{
			"CashAndCashEquivalentsAtCarryingValue",
			"CashCashEquivalentsAndShortTermInvestments",
		},
		Unit:          UnitCurrency,
		Statement:     StatementBalanceSheet,
		IsPointInTime: true,
	},
	{
		CanonicalName: "total_debt",
		Aliases:       []string{"total debt", "long-term debt", "debt", "long term debt", "term debt"},
		Concepts:      []string{"LongTermDebt", "LongTermDebtNoncurrent", "DebtCurrent"},
		Unit:          UnitCurrency,
		Statement:     StatementBalanceSheet,
		IsPointInTime: true,
	},

	// --- Cash flow ---
	{
		CanonicalName: "operating_cash_flow",
		Aliases: []string{
			"operating cash flow", "cash from operations", "cash flow from operations",
			"CFO", "cash provided by operating activities", "net cash from operations",
		},
		Concepts:  []string{"NetCashProvidedByUsedInOperatingActivities"},
		Unit:      UnitCurrency,
		Statement: StatementCashFlow,
	},
	{
		CanonicalName: "capital_expenditures",
		Aliases: []string{
			"capex", "capital expenditures", "capital spending",
			"purchases of property and equipment",
		},
		Concepts: []string{
			"PaymentsToAcquirePropertyPlantAndEquipment",
			"PaymentsToAcquireProductiveAssets",
		},
		Unit:      UnitCurrency,
		Statement: StatementCashFlow,
	},
	{
		CanonicalName: "free_cash_flow",
		Aliases:       []string{"free cash flow", "FCF"},
		Unit:          UnitCurrency,
		Statement:     StatementComputed,
		IsNonGaap:     true,
		Formula:       &Formula{Op: OpDifferenceAbs, A: "operating_cash_flow", B: "capital_expenditures"},
	},
	{
		CanonicalName: "share_repurchases",
		Aliases: []string{
			"share repurchases", "stock buyback", "buybacks",
			"repurchase of common stock",
		},
		Concepts:  []string{"PaymentsForRepurchaseOfCommonStock"},
		Unit:      UnitCurrency,
		Statement: StatementCashFlow,
	},
	{
		CanonicalName: "dividends_paid",
		Aliases: []string{
			"dividends", "dividends paid", "cash dividends", "dividend payments",
			"cash dividends paid",
		},
		Concepts:  []string{"PaymentsOfDividendsCommonStock", "PaymentsOfDividends"},
		Unit:      UnitCurrency,
		Statement: StatementCashFlow,
	},

	// --- Share counts ---
	{
		CanonicalName: "shares_outstanding",
		Aliases:       []string{"shares outstanding", "weighted average shares", "diluted shares"},
		Concepts: []string{
			"WeightedAverageNumberOfDilutedSharesOutstanding",
			"WeightedAverageNumberOfShareOutstandingBasicAndDiluted",
			"CommonStockSharesOutstanding",
		},
		Unit:      UnitShares,
		Statement: StatementIncome,
	},
}
