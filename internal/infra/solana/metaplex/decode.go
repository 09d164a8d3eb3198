package metaplex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
)

var (
	ErrDecode      = errors.New("metaplex: decode metadata")
	ErrInvalidKey  = errors.New("invalid account key")
	ErrShortBuffer = errors.New("buffer too short")
)

// DecodeError reports where decoding stopped.
type DecodeError struct {
	Field  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("metaplex: decode metadata: %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

type reader struct {
	buf []byte
	off int
}

func (r *reader) take(field string, n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.off {
		return nil, &DecodeError{Field: field, Offset: r.off, Err: ErrShortBuffer}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8(field string) (uint8, error) {
	b, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32(field string) (uint32, error) {
	b, err := r.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) pubkey(field string) (common.PublicKey, error) {
	b, err := r.take(field, 32)
	if err != nil {
		return common.PublicKey{}, err
	}
	return common.PublicKeyFromBytes(b), nil
}

func (r *reader) str(field string) (string, error) {
	n, err := r.u32(field)
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(len(r.buf)-r.off) {
		return "", &DecodeError{Field: field, Offset: r.off, Err: ErrShortBuffer}
	}
	b, err := r.take(field, int(n))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// UnpackMetadataAccount parses the raw bytes of a metadata account. String
// fields are stored NUL padded; the padding is trimmed.
func UnpackMetadataAccount(data []byte) (Metadata, error) {
	r := &reader{buf: data}
	var md Metadata

	key, err := r.u8("key")
	if err != nil {
		return Metadata{}, err
	}
	if key != metadataAccountKey {
		return Metadata{}, &DecodeError{Field: "key", Offset: 0, Err: ErrInvalidKey}
	}

	if md.UpdateAuthority, err = r.pubkey("update_authority"); err != nil {
		return Metadata{}, err
	}
	if md.Mint, err = r.pubkey("mint"); err != nil {
		return Metadata{}, err
	}
	if md.Data.Name, err = r.str("name"); err != nil {
		return Metadata{}, err
	}
	if md.Data.Symbol, err = r.str("symbol"); err != nil {
		return Metadata{}, err
	}
	if md.Data.URI, err = r.str("uri"); err != nil {
		return Metadata{}, err
	}

	fee, err := r.take("seller_fee_basis_points", 2)
	if err != nil {
		return Metadata{}, err
	}
	md.Data.SellerFeeBasisPoints = int16(binary.LittleEndian.Uint16(fee))

	hasCreators, err := r.u8("creators")
	if err != nil {
		return Metadata{}, err
	}
	if hasCreators != 0 {
		n, err := r.u32("creators_len")
		if err != nil {
			return Metadata{}, err
		}
		if uint64(n)*MaxCreatorLength > uint64(len(r.buf)-r.off) {
			return Metadata{}, &DecodeError{Field: "creators", Offset: r.off, Err: ErrShortBuffer}
		}
		md.Data.Creators = make([]Creator, 0, n)
		for i := uint32(0); i < n; i++ {
			var c Creator
			if c.Address, err = r.pubkey("creator_address"); err != nil {
				return Metadata{}, err
			}
			if c.Verified, err = r.u8("creator_verified"); err != nil {
				return Metadata{}, err
			}
			if c.Share, err = r.u8("creator_share"); err != nil {
				return Metadata{}, err
			}
			md.Data.Creators = append(md.Data.Creators, c)
		}
	}

	primary, err := r.u8("primary_sale_happened")
	if err != nil {
		return Metadata{}, err
	}
	mutable, err := r.u8("is_mutable")
	if err != nil {
		return Metadata{}, err
	}
	md.PrimarySaleHappened = primary != 0
	md.IsMutable = mutable != 0

	return md, nil
}
