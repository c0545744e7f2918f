package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TreasuryHandle addresses the treasury wallet in transfer requests.
const TreasuryHandle = "treasury"

// AgentWallet is the custodial wallet owned by one agent handle.
// Address is derived from the private key at creation and never changes.
type AgentWallet struct {
	Handle              string          `json:"handle"`
	Address             common.Address  `json:"address"`
	EncryptedPrivateKey string          `json:"-"` // AES-256 encrypted hex key, never expose
	PermitSignature     PermitSignature `json:"-"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// WalletView is the externally visible projection of an AgentWallet.
type WalletView struct {
	Handle          string    `json:"handle"`
	Address         string    `json:"address"`
	PermitStatus    string    `json:"permit_status"`
	PermitNoneCause string    `json:"permit_none_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// View strips custody material from the wallet.
func (w *AgentWallet) View() WalletView {
	v := WalletView{
		Handle:       w.Handle,
		Address:      w.Address.Hex(),
		PermitStatus: "present",
		CreatedAt:    w.CreatedAt,
	}
	if !w.PermitSignature.Present() {
		v.PermitStatus = "none"
		v.PermitNoneCause = w.PermitSignature.Reason()
	}
	return v
}
