// Package cliutil holds small CLI presentation helpers used by offcli,
// adapted from the teacher's
// _examples/TheEntropyCollective-noisefs/pkg/util/errors.go and
// _examples/TheEntropyCollective-noisefs/pkg/util/json_output.go:
// error-to-suggestion mapping and a JSON result envelope, retargeted
// from IPFS/descriptor wording to the OFF storage core's own error
// kinds.
package cliutil

import (
	"fmt"

	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

// SuggestionFor returns a short, actionable hint for a tagged error kind,
// or "" if none applies.
func SuggestionFor(err error) string {
	switch offerrors.KindOf(err) {
	case offerrors.KeyNotFound:
		return "the block may not be stored here; check the backend and id"
	case offerrors.InsufficientRandomBlocks:
		return "store more blocks of the same size before brightening, or lower -n"
	case offerrors.SignatureInvalid:
		return "check that -creator-id and -public-key match the signer used at encode time"
	case offerrors.DateInFuture:
		return "the CBL's creation date is ahead of this machine's clock"
	case offerrors.CapacityExceeded:
		return "too many addresses for this block size; use a larger -size or split across multiple CBLs"
	case offerrors.DecryptionFailed:
		return "the recipient key or content key doesn't match this block"
	case offerrors.BlockAlreadyExists:
		return "a block with this checksum is already stored; Put never overwrites"
	case offerrors.NotSupported:
		return "this backend doesn't implement that operation"
	default:
		return ""
	}
}

// FormatError renders err with its suggestion, if any, for terminal
// output.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	if s := SuggestionFor(err); s != "" {
		return fmt.Sprintf("Error: %v\nSuggestion: %s", err, s)
	}
	return fmt.Sprintf("Error: %v", err)
}
