package ledger

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abkawan/retail-ledger/internal/currency"
	"github.com/abkawan/retail-ledger/internal/models"
)

// EventSink receives the ledger's event log. Implementations must not block
// for long and their failures are never reported back to the ledger.
type EventSink interface {
	Record(level models.EventLevel, message string, err error)
}

// Journal retains executed transactions on behalf of the caller.
type Journal interface {
	Publish(ctx context.Context, rec *models.TransactionRecord) error
}

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to currency.Code) (decimal.Decimal, error)
}

// LogSink writes events through a standard logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger, or to the standard logger if nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(level models.EventLevel, message string, err error) {
	if err != nil {
		s.logger.Printf("[%s] %s: %v", strings.ToUpper(string(level)), message, err)
		return
	}
	s.logger.Printf("[%s] %s", strings.ToUpper(string(level)), message)
}

// MultiSink fans every event out to all of its sinks.
type MultiSink []EventSink

func (m MultiSink) Record(level models.EventLevel, message string, err error) {
	for _, s := range m {
		s.Record(level, message, err)
	}
}

type nopSink struct{}

func (nopSink) Record(models.EventLevel, string, error) {}

// env holds the collaborators shared by a bank and everything it creates.
type env struct {
	bank    string
	conv    Converter
	sink    EventSink
	journal Journal
	now     func() time.Time
}

func (e *env) info(message string) {
	e.sink.Record(models.LevelInfo, message, nil)
}

func (e *env) warn(message string, err error) {
	e.sink.Record(models.LevelWarning, message, err)
}

// fail records err as an exception and returns it unchanged.
func (e *env) fail(message string, err error) error {
	e.sink.Record(models.LevelException, message, err)
	return err
}
