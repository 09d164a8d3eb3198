package nft

import (
	"errors"
	"strings"
	"time"
)

// Stage is the last completed step of a text-to-NFT run.
type Stage string

const (
	StageCreated        Stage = "created"
	StageImageGenerated Stage = "image_generated"
	StageImagePinned    Stage = "image_pinned"
	StageMetadataPinned Stage = "metadata_pinned"
	StageDeployed       Stage = "deployed"
	StageMinted         Stage = "minted"
	StageCompleted      Stage = "completed"
)

var stageOrder = map[Stage]int{
	StageCreated:        0,
	StageImageGenerated: 1,
	StageImagePinned:    2,
	StageMetadataPinned: 3,
	StageDeployed:       4,
	StageMinted:         5,
	StageCompleted:      6,
}

// Reached reports whether s is at or beyond target.
func (s Stage) Reached(target Stage) bool {
	return stageOrder[s] >= stageOrder[target]
}

// Request is the event that starts a run.
type Request struct {
	Text              string `json:"text"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	ReceiverPublicKey string `json:"receiver_public_key"`
}

var (
	ErrEmptyText     = errors.New("nft: text is required")
	ErrEmptyName     = errors.New("nft: name is required")
	ErrEmptySymbol   = errors.New("nft: symbol is required")
	ErrEmptyReceiver = errors.New("nft: receiver_public_key is required")
)

func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Text) == "":
		return ErrEmptyText
	case strings.TrimSpace(r.Name) == "":
		return ErrEmptyName
	case strings.TrimSpace(r.Symbol) == "":
		return ErrEmptySymbol
	case strings.TrimSpace(r.ReceiverPublicKey) == "":
		return ErrEmptyReceiver
	}
	return nil
}

// Run is the persisted progress of one request.
type Run struct {
	ID              string    `json:"id"`
	Request         Request   `json:"request"`
	Stage           Stage     `json:"stage"`
	ImageCID        string    `json:"image_cid,omitempty"`
	ImageURI        string    `json:"image_uri,omitempty"`
	MetadataCID     string    `json:"metadata_cid,omitempty"`
	MetadataURI     string    `json:"metadata_uri,omitempty"`
	Contract        string    `json:"contract,omitempty"`
	DeploySignature string    `json:"deploy_signature,omitempty"`
	MintSignature   string    `json:"mint_signature,omitempty"`
	TopupSignature  string    `json:"topup_signature,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Advance records a completed stage.
func (r *Run) Advance(s Stage, now time.Time) {
	r.Stage = s
	r.LastError = ""
	r.UpdatedAt = now
}

// Fail records err without moving the stage back.
func (r *Run) Fail(err error, now time.Time) {
	if err != nil {
		r.LastError = err.Error()
	}
	r.UpdatedAt = now
}

// TokenMetadata is the off-chain JSON document the mint's URI points at.
type TokenMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Symbol      string      `json:"symbol"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NewTokenMetadata builds the document for a generated image.
func NewTokenMetadata(req Request, imageURI string) TokenMetadata {
	return TokenMetadata{
		Name:        req.Name,
		Description: "Created by Stability AI using the text: " + req.Text,
		Symbol:      req.Symbol,
		Image:       imageURI,
		Attributes:  []Attribute{},
	}
}
