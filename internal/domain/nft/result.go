package nft

import (
	"net/http"
	"time"
)

// ConfirmationStatus is how far a submitted transaction was observed to get.
type ConfirmationStatus string

const (
	ConfirmationUnknown   ConfirmationStatus = "unknown"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationFinalized ConfirmationStatus = "finalized"
	ConfirmationSkipped   ConfirmationStatus = "skipped"
)

// Confirmation is the outcome of a confirmation wait. A timeout is not an
// error; it shows up as ConfirmationUnknown.
type Confirmation struct {
	Status        ConfirmationStatus `json:"status"`
	Elapsed       time.Duration      `json:"elapsed"`
	Confirmations *uint64            `json:"confirmations,omitempty"`
}

// Receipt describes a transaction the network accepted.
type Receipt struct {
	Signature    string             `json:"signature"`
	Attempts     int                `json:"attempts"`
	Confirmation ConfirmationStatus `json:"confirmation_status"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// Envelope is shared by every facade response.
type Envelope struct {
	Status    int    `json:"status"`
	ErrorKind Kind   `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (e Envelope) StatusCode() int { return e.Status }

type DeployResult struct {
	Envelope
	Contract string   `json:"contract,omitempty"`
	Receipt  *Receipt `json:"receipt,omitempty"`
}

// TxResult mirrors the network's send response: Result is the signature.
type TxResult struct {
	Envelope
	Result  string   `json:"result,omitempty"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

type WalletResult struct {
	Envelope
	Address    string `json:"address,omitempty"`
	PrivateKey []int  `json:"private_key,omitempty"`
}

// StatusOf collapses an operation outcome to the external status code.
func StatusOf(err error) int {
	if err != nil {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Respond fills env from err. Detail controls whether the kind and message
// leave the process.
func Respond(err error, detail bool) Envelope {
	env := Envelope{Status: StatusOf(err)}
	if err != nil && detail {
		env.ErrorKind = KindOf(err)
		env.Message = err.Error()
	}
	return env
}
