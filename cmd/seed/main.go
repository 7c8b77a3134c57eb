package main

import (
	"context"
	"log"

	"github.com/abkawan/retail-ledger/internal/config"
	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/db"
	"github.com/abkawan/retail-ledger/internal/ledger"
	"github.com/abkawan/retail-ledger/internal/queue"
	"github.com/shopspring/decimal"
)

// seed runs a scripted day of banking against an in-memory ledger so the
// event log, journal queue and processor can be exercised end to end.
func main() {
	ctx := context.Background()

	config.LoadEnv()
	cfg := config.Load()

	log.Println("Connecting to MongoDB...")
	mongodb, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Close(ctx)

	log.Println("Connecting to RabbitMQ...")
	rabbitmq, err := queue.NewRabbitMQ(cfg.RabbitMQURI)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitmq.Close()

	converter := currency.NewConverter(currency.NewPrivatBankSource(cfg.RatesURL, nil), currency.WithTTL(cfg.RatesTTL))
	bank := ledger.NewBank("Retail Ledger", "Kyiv", converter,
		ledger.WithEventSink(ledger.MultiSink{ledger.NewLogSink(nil), mongodb}),
		ledger.WithJournal(rabbitmq),
	)

	if err := seed(ctx, bank); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Bank instance %s (audit routes: /banks/%s/accounts/{id}/...)", bank.InstanceID(), bank.InstanceID())
	for _, acc := range bank.Accounts() {
		log.Printf("%s owned by %s: balance %s, credit %s", acc, acc.Owner(), acc.Balance().StringFixed(2), acc.Credit().StringFixed(2))
	}
	log.Println("Seeding completed")
}

func seed(ctx context.Context, bank *ledger.Bank) error {
	user, err := bank.AddUser("Taras", "Shevchenko", "taras@example.com", "")
	if err != nil {
		return err
	}

	checking, err := bank.OpenChecking(user, currency.UAH)
	if err != nil {
		return err
	}
	savings, err := bank.OpenSavings(user, currency.USD, ledger.InterestTerms{Period: 1, Percent: decimal.RequireFromString("0.01")})
	if err != nil {
		return err
	}
	credit, err := bank.OpenCredit(user, currency.UAH, decimal.NewFromInt(20000), ledger.InterestTerms{Period: 1, Percent: decimal.RequireFromString("0.03")})
	if err != nil {
		return err
	}

	steps := []func() (*ledger.Transaction, error){
		func() (*ledger.Transaction, error) { return bank.NewDeposit(decimal.NewFromInt(50000), checking) },
		func() (*ledger.Transaction, error) { return bank.NewTransfer(decimal.NewFromInt(10000), checking, savings) },
		func() (*ledger.Transaction, error) { return bank.NewWithdrawal(decimal.NewFromInt(4500), credit) },
		func() (*ledger.Transaction, error) { return bank.NewTransfer(decimal.NewFromInt(1500), checking, credit) },
		func() (*ledger.Transaction, error) { return bank.NewInterestAccrual(savings) },
		func() (*ledger.Transaction, error) { return bank.NewInterestAccrual(credit) },
	}

	for _, step := range steps {
		tx, err := step()
		if err != nil {
			return err
		}
		if err := tx.Execute(ctx); err != nil {
			// failures are journaled too; keep seeding
			log.Printf("%s failed: %v", tx, err)
		}
	}
	return nil
}
