package nft

import (
	"errors"
	"fmt"
)

// Kind tags where in the pipeline an operation failed.
type Kind string

const (
	KindValidation   Kind = "validation"   // malformed caller input
	KindPrecondition Kind = "precondition" // a required account is missing or not controlled by the key
	KindQuery        Kind = "query"        // read-only RPC failure while building
	KindDecode       Kind = "decode"       // on-chain bytes could not be parsed
	KindSubmission   Kind = "submission"   // every submission attempt failed
	KindCrypto       Kind = "crypto"       // key decryption or key material errors
	KindExternal     Kind = "external"     // image generation, pinning, secrets
	KindInternal     Kind = "internal"
)

// Error is the tagged error carried from builders and the engine up to the
// facade boundary.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an op and kind. An err that already carries a Kind keeps it.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ne *Error
	if errors.As(err, &ne) {
		return &Error{Op: op, Kind: ne.Kind, Err: err}
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf reports the Kind of err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return KindInternal
}

// IsBuildError reports whether err was raised before anything was submitted.
func IsBuildError(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindPrecondition, KindQuery, KindDecode:
		return true
	}
	return false
}

var (
	ErrInvalidAddress    = errors.New("nft: invalid address")
	ErrMetadataNotFound  = errors.New("nft: metadata account not found")
	ErrTokenAccountEmpty = errors.New("nft: token account not found")
	ErrOwnerMismatch     = errors.New("nft: private key does not match owner address")
	ErrSubmissionFailed  = errors.New("nft: transaction submission failed")
	ErrRunNotFound       = errors.New("nft: run not found")
)
