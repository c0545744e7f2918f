package domain

import "time"

// EventKind names an operational event emitted by the wallet subsystem.
type EventKind string

const (
	EventWalletCreated     EventKind = "wallet.created"
	EventWalletFunded      EventKind = "wallet.funded"
	EventTransferCompleted EventKind = "transfer.completed"
	EventTransferSubmitted EventKind = "transfer.submitted"
	EventNFTMinted         EventKind = "nft.minted"
	EventOperationFailed   EventKind = "operation.failed"
)

// WalletEvent is a best-effort notification; delivery never affects the
// operation that produced it.
type WalletEvent struct {
	Kind       EventKind         `json:"kind"`
	Handle     string            `json:"handle,omitempty"`
	Operation  string            `json:"operation,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Error      string            `json:"error,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(kind EventKind, handle string, attrs map[string]string) WalletEvent {
	return WalletEvent{
		Kind:       kind,
		Handle:     handle,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}

// FailureEvent describes an operation that returned an error.
func FailureEvent(operation, handle string, err error) WalletEvent {
	ev := NewEvent(EventOperationFailed, handle, nil)
	ev.Operation = operation
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
