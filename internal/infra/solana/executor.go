// internal/infra/solana/executor.go
package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
)

const defaultPollInterval = time.Second

// ExecOptions controls one Execute call.
type ExecOptions struct {
	// MaxRetries is the total number of submission attempts.
	MaxRetries          int           `json:"max_retries"`
	SkipConfirmation    bool          `json:"skip_confirmation"`
	MaxTimeout          time.Duration `json:"max_timeout"`
	TargetConfirmations uint64        `json:"target"`
	RequireFinalized    bool          `json:"finalized"`
}

func DefaultExecOptions() ExecOptions {
	return ExecOptions{
		MaxRetries:          3,
		MaxTimeout:          60 * time.Second,
		TargetConfirmations: 20,
		RequireFinalized:    true,
	}
}

// Engine signs, submits and watches transactions.
type Engine struct {
	net          Network
	pollInterval time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

type EngineOption func(*Engine)

// WithSleep replaces the wait between confirmation polls.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) EngineOption {
	return func(e *Engine) { e.sleep = fn }
}

func NewEngine(net Network, opts ...EngineOption) *Engine {
	e := &Engine{
		net:          net,
		pollInterval: defaultPollInterval,
		sleep:        sleepContext,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute submits tx up to opts.MaxRetries times. Attempt failures are
// logged and retried immediately. Once an attempt is accepted the receipt
// is returned, after an optional confirmation wait that never fails the
// call. When every attempt fails the receipt is nil and the error has kind
// submission.
func (e *Engine) Execute(ctx context.Context, tx Tx, signers []types.Account, opts ExecOptions) (*nft.Receipt, error) {
	attempts := opts.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	signers = dedupeSigners(signers...)

	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		sig, err := e.submit(ctx, tx, signers)
		if err != nil {
			lastErr = err
			log.WithError(err).Warnf("[executor] Failed attempt %d", i)
			continue
		}

		log.WithFields(log.Fields{"signature": sig, "attempt": i}).Info("[executor] submitted")

		receipt := &nft.Receipt{
			Signature:    sig,
			Attempts:     i,
			Confirmation: nft.ConfirmationSkipped,
		}
		if !opts.SkipConfirmation {
			c := e.AwaitConfirmation(ctx, sig, opts.MaxTimeout, opts.TargetConfirmations, opts.RequireFinalized)
			receipt.Confirmation = c.Status
			receipt.Elapsed = c.Elapsed
		}
		return receipt, nil
	}

	return nil, nft.E("execute", nft.KindSubmission,
		fmt.Errorf("%w after %d attempts: %v", nft.ErrSubmissionFailed, attempts, lastErr))
}

// submit runs one attempt: fresh blockhash, sign, broadcast.
func (e *Engine) submit(ctx context.Context, tx Tx, signers []types.Account) (string, error) {
	blockhash, err := e.net.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}

	signed, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        tx.FeePayer,
			RecentBlockhash: blockhash,
			Instructions:    tx.Instructions,
		}),
	})
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := e.net.SendTransaction(ctx, signed)
	if err != nil {
		return "", err
	}
	if sig == "" && len(signed.Signatures) > 0 {
		sig = base58.Encode(signed.Signatures[0])
	}
	return sig, nil
}

// AwaitConfirmation polls the signature status once per interval until
// the requested level is reached or maxTimeout has elapsed. A timeout is
// reported as ConfirmationUnknown, not as an error.
func (e *Engine) AwaitConfirmation(ctx context.Context, signature string, maxTimeout time.Duration, target uint64, requireFinalized bool) nft.Confirmation {
	var elapsed time.Duration
	for elapsed < maxTimeout {
		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return nft.Confirmation{Status: nft.ConfirmationUnknown, Elapsed: elapsed}
		}
		elapsed += e.pollInterval

		statuses, err := e.net.GetSignatureStatuses(ctx, []string{signature})
		if err != nil {
			log.WithError(err).Debug("[executor] status query failed")
			continue
		}
		if len(statuses) == 0 || statuses[0] == nil {
			continue
		}

		st := statuses[0]
		if st.IsFinalized() {
			log.Infof("[executor] Took %s to confirm transaction", elapsed)
			return nft.Confirmation{Status: nft.ConfirmationFinalized, Elapsed: elapsed}
		}
		if !requireFinalized && st.Confirmations != nil && *st.Confirmations >= target {
			log.Infof("[executor] Took %s to confirm transaction", elapsed)
			return nft.Confirmation{Status: nft.ConfirmationConfirmed, Elapsed: elapsed, Confirmations: st.Confirmations}
		}
	}

	log.WithField("signature", signature).Infof("[executor] not confirmed after %s", elapsed)
	return nft.Confirmation{Status: nft.ConfirmationUnknown, Elapsed: elapsed}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
