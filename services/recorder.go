package services

import (
	"punthub/metrics"
	"punthub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry is one ledger record waiting to be written.
type Entry struct {
	UserID    uint
	Type      string
	Amount    float64
	Remark    string
	Reference string
}

// TxStore abstracts the transaction table so the recorder can be
// tested against an in-memory sink.
type TxStore interface {
	Create(e Entry) error
	MarkReverted(reference string) error
}

type gormTxStore struct {
	db *gorm.DB
}

func (s gormTxStore) Create(e Entry) error {
	row := models.Transaction{
		UserID:    e.UserID,
		Type:      e.Type,
		Amount:    e.Amount,
		Status:    models.TrxCompleted,
		Remark:    e.Remark,
		Reference: e.Reference,
	}
	return s.db.Create(&row).Error
}

func (s gormTxStore) MarkReverted(reference string) error {
	return s.db.Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, models.TrxCompleted).
		Update("status", models.TrxReverted).Error
}

// Recorder decouples ledger writes from the balance mutation that
// triggered them. Enqueue never blocks: a full queue drops the entry
// and counts it, because an audit write must never fail a committed
// balance change.
type Recorder struct {
	ch    chan Entry
	store TxStore
	log   *zap.SugaredLogger
	done  chan struct{}
}

func NewRecorder(store TxStore, size int, log *zap.SugaredLogger) *Recorder {
	return &Recorder{
		ch:    make(chan Entry, size),
		store: store,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Start launches the dedicated writer goroutine.
func (r *Recorder) Start() {
	go func() {
		defer close(r.done)
		for e := range r.ch {
			if err := r.store.Create(e); err != nil {
				r.log.Errorw("ledger write failed",
					"user_id", e.UserID, "type", e.Type,
					"amount", e.Amount, "reference", e.Reference,
					"error", err)
			}
		}
	}()
}

// Enqueue hands an entry to the writer without blocking the caller.
func (r *Recorder) Enqueue(e Entry) {
	select {
	case r.ch <- e:
	default:
		metrics.LedgerDropped.Inc()
		r.log.Warnw("ledger queue full, entry dropped",
			"user_id", e.UserID, "reference", e.Reference)
	}
}

// MarkReverted flags a previously written settlement record. The
// monetary effect of the revert is always a new entry, never an edit.
func (r *Recorder) MarkReverted(reference string) {
	if reference == "" {
		return
	}
	if err := r.store.MarkReverted(reference); err != nil {
		r.log.Errorw("revert mark failed", "reference", reference, "error", err)
	}
}

// Stop drains the queue and waits for the writer to finish.
func (r *Recorder) Stop() {
	close(r.ch)
	<-r.done
}

// Ledger is the process-wide recorder, wired up in main.
var Ledger *Recorder

func InitLedger(db *gorm.DB, size int, log *zap.SugaredLogger) *Recorder {
	Ledger = NewRecorder(gormTxStore{db: db}, size, log)
	Ledger.Start()
	return Ledger
}

func recordLedger(e Entry) {
	if Ledger != nil {
		Ledger.Enqueue(e)
	}
}

func revertLedger(reference string) {
	if Ledger != nil {
		Ledger.MarkReverted(reference)
	}
}
