// Package jobs runs the background work behind the ledger API: balance cache
// warmups after mutations and the nightly reference-integrity scan.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSaldosWarmup recomputes the balance summaries of the given types
	// so the next read hits a warm cache.
	TaskSaldosWarmup = "saldos:warmup"
	// TaskLedgerIntegrity scans stored movements for party references that
	// no longer resolve against the reference lists.
	TaskLedgerIntegrity = "ledger:integrity"
)

// SaldosWarmupPayload names the counterparty types to recompute.
type SaldosWarmupPayload struct {
	Tipos []string `json:"tipos"`
}

// NewSaldosWarmupTask constructs a warmup task.
func NewSaldosWarmupTask(payload SaldosWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSaldosWarmup, data), nil
}

// NewLedgerIntegrityTask constructs an integrity-scan task.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}
