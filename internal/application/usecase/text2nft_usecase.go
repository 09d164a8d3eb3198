package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/solana"
	"text2nft/internal/infra/solana/metaplex"
)

// ============================================================
// Ports
// ============================================================

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type ContentPinner interface {
	PinFile(ctx context.Context, data []byte, contentType string) (string, error)
	PinJSON(ctx context.Context, v any) (string, error)
	GatewayURL(cid string) string
}

type RunLedger interface {
	Save(ctx context.Context, run nft.Run) error
	Get(ctx context.Context, id string) (nft.Run, error)
	List(ctx context.Context) ([]nft.Run, error)
}

// Minter is the part of the facade a run needs.
type Minter interface {
	Deploy(ctx context.Context, in DeployInput) (nft.DeployResult, error)
	Mint(ctx context.Context, in MintInput) (nft.TxResult, error)
	Topup(ctx context.Context, in TopupInput) (nft.TxResult, error)
}

// ============================================================
// Text2NFTUsecase
// ============================================================

// Text2NFTOptions tunes a pipeline instance.
type Text2NFTOptions struct {
	// WorkDir receives a copy of every generated image when set.
	WorkDir string
	// TopupReceiver sends the receiver a small balance after minting.
	TopupReceiver bool
	Endpoint      string
}

// Text2NFTUsecase turns a text prompt into a minted token, one persisted
// stage at a time so a failed run can be resumed.
type Text2NFTUsecase struct {
	images ImageGenerator
	pinner ContentPinner
	ledger RunLedger
	minter Minter
	opts   Text2NFTOptions

	now   func() time.Time
	newID func() string
}

func NewText2NFTUsecase(images ImageGenerator, pinner ContentPinner, ledger RunLedger, minter Minter, opts Text2NFTOptions) *Text2NFTUsecase {
	return &Text2NFTUsecase{
		images: images,
		pinner: pinner,
		ledger: ledger,
		minter: minter,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (u *Text2NFTUsecase) ready() error {
	if u == nil || u.images == nil || u.pinner == nil || u.ledger == nil || u.minter == nil {
		return nft.E("text2nft", nft.KindInternal, fmt.Errorf("text2nft usecase is not properly initialized"))
	}
	return nil
}

// Run starts a new run for req and drives it as far as it goes.
func (u *Text2NFTUsecase) Run(ctx context.Context, req nft.Request) (nft.Run, error) {
	if err := u.ready(); err != nil {
		return nft.Run{}, err
	}
	if err := validateRequest(req); err != nil {
		return nft.Run{}, nft.E("text2nft", nft.KindValidation, err)
	}

	now := u.now()
	run := nft.Run{
		ID:        u.newID(),
		Request:   req,
		Stage:     nft.StageCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.ledger.Save(ctx, run); err != nil {
		return run, nft.E("text2nft", nft.KindInternal, err)
	}
	log.WithFields(log.Fields{"run": run.ID, "name": req.Name}).Info("[text2nft] run created")

	return u.drive(ctx, run)
}

// Resume continues a stored run from its last completed stage.
func (u *Text2NFTUsecase) Resume(ctx context.Context, id string) (nft.Run, error) {
	if err := u.ready(); err != nil {
		return nft.Run{}, err
	}
	run, err := u.ledger.Get(ctx, id)
	if err != nil {
		return nft.Run{}, nft.E("resume", nft.KindValidation, err)
	}
	if run.Stage == nft.StageCompleted {
		return run, nil
	}
	if err := validateRequest(run.Request); err != nil {
		return run, nft.E("resume", nft.KindValidation, err)
	}
	log.WithFields(log.Fields{"run": run.ID, "stage": run.Stage}).Info("[text2nft] resuming run")
	return u.drive(ctx, run)
}

// validateRequest rejects requests that would only fail once the mint is
// built, before any paid call is made.
func validateRequest(req nft.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	switch {
	case len(req.Name) > metaplex.MaxNameLength:
		return metaplex.ErrNameTooLong
	case len(req.Symbol) > metaplex.MaxSymbolLength:
		return metaplex.ErrSymbolTooLong
	}
	if _, err := solana.ParseAddress(req.ReceiverPublicKey); err != nil {
		return fmt.Errorf("%w: receiver_public_key: %w", nft.ErrInvalidAddress, err)
	}
	return nil
}

func (u *Text2NFTUsecase) GetRun(ctx context.Context, id string) (nft.Run, error) {
	if err := u.ready(); err != nil {
		return nft.Run{}, err
	}
	return u.ledger.Get(ctx, id)
}

func (u *Text2NFTUsecase) ListRuns(ctx context.Context) ([]nft.Run, error) {
	if err := u.ready(); err != nil {
		return nil, err
	}
	return u.ledger.List(ctx)
}

func (u *Text2NFTUsecase) drive(ctx context.Context, run nft.Run) (nft.Run, error) {
	if err := u.steps(ctx, &run); err != nil {
		run.Fail(err, u.now())
		if serr := u.ledger.Save(ctx, run); serr != nil {
			log.WithError(serr).WithField("run", run.ID).Error("[text2nft] failed to record run error")
		}
		log.WithError(err).WithFields(log.Fields{"run": run.ID, "stage": run.Stage}).Warn("[text2nft] run stopped")
		return run, err
	}
	log.WithFields(log.Fields{"run": run.ID, "contract": run.Contract}).Info("[text2nft] run completed")
	return run, nil
}

func (u *Text2NFTUsecase) advance(ctx context.Context, run *nft.Run, stage nft.Stage) error {
	run.Advance(stage, u.now())
	if err := u.ledger.Save(ctx, *run); err != nil {
		return nft.E("ledger", nft.KindInternal, err)
	}
	log.WithFields(log.Fields{"run": run.ID, "stage": stage}).Debug("[text2nft] stage done")
	return nil
}

func (u *Text2NFTUsecase) steps(ctx context.Context, run *nft.Run) error {
	req := run.Request
	call := CallOptions{Endpoint: u.opts.Endpoint}

	// 1) image: generate and pin
	if !run.Stage.Reached(nft.StageImagePinned) {
		img, err := u.images.Generate(ctx, req.Text)
		if err != nil {
			return nft.E("generate image", nft.KindExternal, err)
		}
		if err := u.advance(ctx, run, nft.StageImageGenerated); err != nil {
			return err
		}
		u.keepImage(run.ID, img)

		cid, err := u.pinner.PinFile(ctx, img, "image/png")
		if err != nil {
			return nft.E("pin image", nft.KindExternal, err)
		}
		run.ImageCID = cid
		run.ImageURI = u.pinner.GatewayURL(cid)
		if err := u.advance(ctx, run, nft.StageImagePinned); err != nil {
			return err
		}
	}

	// 2) off-chain metadata document
	if !run.Stage.Reached(nft.StageMetadataPinned) {
		cid, err := u.pinner.PinJSON(ctx, nft.NewTokenMetadata(req, run.ImageURI))
		if err != nil {
			return nft.E("pin metadata", nft.KindExternal, err)
		}
		run.MetadataCID = cid
		run.MetadataURI = u.pinner.GatewayURL(cid)
		if err := u.advance(ctx, run, nft.StageMetadataPinned); err != nil {
			return err
		}
	}

	// 3) deploy the mint
	if !run.Stage.Reached(nft.StageDeployed) {
		res, err := u.minter.Deploy(ctx, DeployInput{CallOptions: call, Name: req.Name, Symbol: req.Symbol})
		if err != nil {
			return err
		}
		run.Contract = res.Contract
		if res.Receipt != nil {
			run.DeploySignature = res.Receipt.Signature
		}
		if err := u.advance(ctx, run, nft.StageDeployed); err != nil {
			return err
		}
	}

	// 4) mint to the receiver
	if !run.Stage.Reached(nft.StageMinted) {
		res, err := u.minter.Mint(ctx, MintInput{
			CallOptions: call,
			Contract:    run.Contract,
			Destination: req.ReceiverPublicKey,
			Link:        run.MetadataURI,
		})
		if err != nil {
			return err
		}
		run.MintSignature = res.Result
		if err := u.advance(ctx, run, nft.StageMinted); err != nil {
			return err
		}
	}

	// 5) optional fee top-up
	if u.opts.TopupReceiver && run.TopupSignature == "" {
		res, err := u.minter.Topup(ctx, TopupInput{CallOptions: call, To: req.ReceiverPublicKey})
		if err != nil {
			return err
		}
		run.TopupSignature = res.Result
	}
	return u.advance(ctx, run, nft.StageCompleted)
}

// keepImage writes the image to WorkDir. Failures are logged only.
func (u *Text2NFTUsecase) keepImage(runID string, img []byte) {
	if u.opts.WorkDir == "" {
		return
	}
	path := filepath.Join(u.opts.WorkDir, fmt.Sprintf("txt2img_%s.png", runID))
	if err := os.MkdirAll(u.opts.WorkDir, 0o755); err != nil {
		log.WithError(err).WithField("dir", u.opts.WorkDir).Warn("[text2nft] cannot create work dir")
		return
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		log.WithError(err).WithField("path", path).Warn("[text2nft] cannot write image")
		return
	}
	log.WithField("path", path).Info("[text2nft] image saved")
}
