/*
Package ledger implements the retail account and transaction engine.

A Bank registers users and opens their accounts:

	bank := ledger.NewBank("Privat", "Kyiv", converter, ledger.WithEventSink(sink))
	user, err := bank.AddUser("Taras", "Shevchenko", "", "")
	checking, err := bank.OpenChecking(user, currency.UAH)
	savings, err := bank.OpenSavings(user, currency.USD, ledger.InterestTerms{Period: 1, Percent: decimal.RequireFromString("0.01")})

Money moves through transactions, which are validated when built and
executed once:

	tx, err := bank.NewTransfer(decimal.NewFromInt(100), checking, savings)
	err = tx.Execute(ctx)

Account kinds:
  - Checking: balance never drops below zero.
  - Savings: as checking, plus compounding interest every Period months.
  - Credit: balance is the available credit, starting at the limit.
    Interest compounds the used credit and accrues in Credit until repaid.

The engine is single-threaded. Callers that share a Bank between goroutines
must serialize access themselves.
*/
package ledger
