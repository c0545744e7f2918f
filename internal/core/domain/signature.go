package domain

import (
	"encoding/hex"
	"errors"
	"strings"
)

// Reasons recorded when a wallet is persisted without a permit signature.
const (
	SignatureReasonNoChain    = "development-mode-no-signature"
	SignatureReasonSignFailed = "error-generating-signature"
)

// PermitSignature is either a 65-byte typed-data signature or an explicit
// absence carrying the reason no signature is available. The zero value is
// an absence with an empty reason.
type PermitSignature struct {
	raw    []byte
	reason string
}

// SignaturePresent wraps raw signature bytes.
func SignaturePresent(raw []byte) PermitSignature {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return PermitSignature{raw: cp}
}

// SignatureNone records why no signature exists.
func SignatureNone(reason string) PermitSignature {
	return PermitSignature{reason: reason}
}

// Present reports whether signature bytes are available.
func (s PermitSignature) Present() bool {
	return len(s.raw) > 0
}

// Bytes returns a copy of the signature, nil when absent.
func (s PermitSignature) Bytes() []byte {
	if !s.Present() {
		return nil
	}
	cp := make([]byte, len(s.raw))
	copy(cp, s.raw)
	return cp
}

// Reason is empty when the signature is present.
func (s PermitSignature) Reason() string {
	if s.Present() {
		return ""
	}
	return s.reason
}

// Hex returns the 0x-prefixed signature, or "" when absent.
func (s PermitSignature) Hex() string {
	if !s.Present() {
		return ""
	}
	return "0x" + hex.EncodeToString(s.raw)
}

// SplitSignature is the (v, r, s) form consumed by an on-chain permit call.
type SplitSignature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// Split breaks a 65-byte signature into its canonical components. A recovery
// id of 0/1 is normalised to 27/28.
func (s PermitSignature) Split() (SplitSignature, error) {
	if len(s.raw) != 65 {
		return SplitSignature{}, errors.New("permit signature must be 65 bytes")
	}
	var out SplitSignature
	copy(out.R[:], s.raw[:32])
	copy(out.S[:], s.raw[32:64])
	out.V = s.raw[64]
	if out.V < 27 {
		out.V += 27
	}
	return out, nil
}

// ParsePermitSignature decodes the stored column pair back into the tagged form.
func ParsePermitSignature(hexSig *string, reason string) (PermitSignature, error) {
	if hexSig == nil || *hexSig == "" {
		return SignatureNone(reason), nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(*hexSig, "0x"))
	if err != nil {
		return PermitSignature{}, err
	}
	return SignaturePresent(raw), nil
}
