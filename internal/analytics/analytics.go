// Package analytics computes dashboard aggregates over a transaction
// collection: category breakdowns, monthly trends and period comparisons.
// Everything here is a pure function of its inputs.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/rocjay1/rm-finance/internal/money"
	"github.com/shopspring/decimal"
)

const (
	// TopCategories is how many categories per type the summary reports.
	TopCategories = 5
	// SummaryTrendMonths is the length of the trend series in the summary.
	SummaryTrendMonths = 6
)

// CategoryStat is one category's share of a total.
type CategoryStat struct {
	CategoryID       string          `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	CategoryIcon     string          `json:"category_icon,omitempty"`
	CategoryColor    string          `json:"category_color,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// MonthlyTrend is one calendar month of a trend series. Balance is the
// cumulative net savings since the first month of the series, not an
// account balance.
type MonthlyTrend struct {
	Year       int             `json:"year"`
	Month      string          `json:"month"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	NetSavings decimal.Decimal `json:"net_savings"`
	Balance    decimal.Decimal `json:"balance"`
}

// Comparison contrasts a period with the equal-length period before it.
type Comparison struct {
	CurrentPeriodIncome     decimal.Decimal `json:"current_period_income"`
	PreviousPeriodIncome    decimal.Decimal `json:"previous_period_income"`
	IncomeChange            decimal.Decimal `json:"income_change"`
	IncomeChangePercentage  decimal.Decimal `json:"income_change_percentage"`
	CurrentPeriodExpense    decimal.Decimal `json:"current_period_expense"`
	PreviousPeriodExpense   decimal.Decimal `json:"previous_period_expense"`
	ExpenseChange           decimal.Decimal `json:"expense_change"`
	ExpenseChangePercentage decimal.Decimal `json:"expense_change_percentage"`
	CurrentPeriodSavings    decimal.Decimal `json:"current_period_savings"`
	PreviousPeriodSavings   decimal.Decimal `json:"previous_period_savings"`
	SavingsChange           decimal.Decimal `json:"savings_change"`
	SavingsChangePercentage decimal.Decimal `json:"savings_change_percentage"`
}

// Totals are the income and expense sums of a transaction set. Transfers
// count towards neither.
type Totals struct {
	Income     decimal.Decimal `json:"total_income"`
	Expense    decimal.Decimal `json:"total_expense"`
	NetSavings decimal.Decimal `json:"net_savings"`
	Count      int             `json:"transaction_count"`
}

// Summary is the full dashboard.
type Summary struct {
	Period               Period          `json:"period"`
	TotalBalance         decimal.Decimal `json:"total_balance"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	TotalExpense         decimal.Decimal `json:"total_expense"`
	NetSavings           decimal.Decimal `json:"net_savings"`
	TransactionCount     int             `json:"transaction_count"`
	TopExpenseCategories []CategoryStat  `json:"top_expense_categories"`
	TopIncomeCategories  []CategoryStat  `json:"top_income_categories"`
	MonthlyTrends        []MonthlyTrend  `json:"monthly_trends"`
	PeriodComparison     Comparison      `json:"period_comparison"`
}

// ComputeTotals sums income and expense over transactions.
func ComputeTotals(transactions []models.Transaction) Totals {
	income := models.SumByType(transactions, models.TransactionIncome)
	expense := models.SumByType(transactions, models.TransactionExpense)
	return Totals{
		Income:     income,
		Expense:    expense,
		NetSavings: income.Sub(expense),
		Count:      len(transactions),
	}
}

// Breakdown groups transactions of typ by category and reports each
// group's total and share of total, largest first. An empty typ matches
// every type. Groups with equal totals keep the order in which their
// category first appears in transactions. A limit of zero or less means no
// limit. Categories without transactions are not reported.
func Breakdown(transactions []models.Transaction, typ models.TransactionType, total decimal.Decimal, limit int, categories map[string]models.Category) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat

	for _, t := range transactions {
		if typ != "" && t.Type != typ {
			continue
		}
		if t.CategoryID == "" {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			c := categories[t.CategoryID]
			i = len(stats)
			index[t.CategoryID] = i
			stats = append(stats, CategoryStat{
				CategoryID:    t.CategoryID,
				CategoryName:  c.Name,
				CategoryIcon:  c.Icon,
				CategoryColor: c.Color,
				TotalAmount:   decimal.Zero,
			})
		}
		stats[i].TotalAmount = stats[i].TotalAmount.Add(t.Amount)
		stats[i].TransactionCount++
	}

	for i := range stats {
		if total.IsPositive() {
			stats[i].Percentage = money.RatioPercent(stats[i].TotalAmount, total)
		} else {
			stats[i].Percentage = decimal.Zero
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalAmount.GreaterThan(stats[j].TotalAmount)
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	if stats == nil {
		stats = []CategoryStat{}
	}
	return stats
}

// Trends returns exactly monthsBack entries, oldest first, covering the
// calendar months from TrendWindow(today, monthsBack). Months without
// transactions are zero. Transactions outside the window are ignored.
func Trends(transactions []models.Transaction, today time.Time, monthsBack int) []MonthlyTrend {
	if monthsBack <= 0 {
		return []MonthlyTrend{}
	}
	window := TrendWindow(today, monthsBack)

	type bucket struct{ income, expense decimal.Decimal }
	buckets := make([]bucket, monthsBack)
	for i := range buckets {
		buckets[i] = bucket{decimal.Zero, decimal.Zero}
	}

	for _, t := range transactions {
		if !window.Contains(t.Date) {
			continue
		}
		d := models.DateOf(t.Date)
		i := (d.Year()-window.Start.Year())*12 + int(d.Month()) - int(window.Start.Month())
		switch t.Type {
		case models.TransactionIncome:
			buckets[i].income = buckets[i].income.Add(t.Amount)
		case models.TransactionExpense:
			buckets[i].expense = buckets[i].expense.Add(t.Amount)
		}
	}

	out := make([]MonthlyTrend, 0, monthsBack)
	running := decimal.Zero
	for i, b := range buckets {
		month := window.Start.AddDate(0, i, 0)
		net := b.income.Sub(b.expense)
		running = running.Add(net)
		out = append(out, MonthlyTrend{
			Year:       month.Year(),
			Month:      strings.ToUpper(month.Month().String()),
			Income:     b.income,
			Expense:    b.expense,
			NetSavings: net,
			Balance:    running,
		})
	}
	return out
}

// ChangePercentage is the relative change from previous to current as a
// 0-100 style percentage, computed through a four-place ratio. A zero
// previous value yields 0 when current is also zero and a fixed 100
// otherwise; that 100 is a sentinel, not a true ratio.
func ChangePercentage(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return money.Hundred()
	}
	return current.Sub(previous).DivRound(previous, money.RatioPlaces).Mul(money.Hundred())
}

// Compare contrasts period with period.Previous(). transactions may contain
// dates outside both windows; they are ignored.
func Compare(transactions []models.Transaction, period Period) Comparison {
	cur := ComputeTotals(filter(transactions, period))
	prev := ComputeTotals(filter(transactions, period.Previous()))

	return Comparison{
		CurrentPeriodIncome:     cur.Income,
		PreviousPeriodIncome:    prev.Income,
		IncomeChange:            cur.Income.Sub(prev.Income),
		IncomeChangePercentage:  ChangePercentage(prev.Income, cur.Income),
		CurrentPeriodExpense:    cur.Expense,
		PreviousPeriodExpense:   prev.Expense,
		ExpenseChange:           cur.Expense.Sub(prev.Expense),
		ExpenseChangePercentage: ChangePercentage(prev.Expense, cur.Expense),
		CurrentPeriodSavings:    cur.NetSavings,
		PreviousPeriodSavings:   prev.NetSavings,
		SavingsChange:           cur.NetSavings.Sub(prev.NetSavings),
		SavingsChangePercentage: ChangePercentage(prev.NetSavings, cur.NetSavings),
	}
}

// CategoryStatistics breaks down the transactions in period by category.
// typ restricts the breakdown to one type; an empty typ includes them all
// and uses the grand total as the denominator.
func CategoryStatistics(transactions []models.Transaction, categories map[string]models.Category, period Period, typ models.TransactionType) []CategoryStat {
	inPeriod := filter(transactions, period)
	total := decimal.Zero
	for _, t := range inPeriod {
		if typ == "" || t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return Breakdown(inPeriod, typ, total, 0, categories)
}

// Summarize builds the dashboard for period as of today. transactions must
// cover period, period.Previous() and the six-month trend window ending
// today; anything else is ignored.
func Summarize(transactions []models.Transaction, accounts []models.Account, categories map[string]models.Category, period Period, today time.Time) Summary {
	inPeriod := filter(transactions, period)
	totals := ComputeTotals(inPeriod)

	return Summary{
		Period:               period,
		TotalBalance:         models.TotalBalance(accounts),
		TotalIncome:          totals.Income,
		TotalExpense:         totals.Expense,
		NetSavings:           totals.NetSavings,
		TransactionCount:     totals.Count,
		TopExpenseCategories: Breakdown(inPeriod, models.TransactionExpense, totals.Expense, TopCategories, categories),
		TopIncomeCategories:  Breakdown(inPeriod, models.TransactionIncome, totals.Income, TopCategories, categories),
		MonthlyTrends:        Trends(transactions, today, SummaryTrendMonths),
		PeriodComparison:     Compare(transactions, period),
	}
}

// SummaryWindow is the range of transactions Summarize needs for period.
func SummaryWindow(period Period, today time.Time) Period {
	return period.Union(period.Previous()).Union(TrendWindow(today, SummaryTrendMonths))
}

// IndexCategories keys categories by ID.
func IndexCategories(categories []models.Category) map[string]models.Category {
	out := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out
}
