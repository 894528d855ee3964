// Package magnet implements the CBL magnet URL (spec §6): a compact,
// out-of-band way to hand a file reference to another party without
// touching the core block/tuple/CBL machinery.
package magnet

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
)

const scheme = "magnet"

// Link is the parsed content of a CBL magnet URL.
type Link struct {
	CBLHex         string
	FileName       string
	OriginalLength uint64
}

// Encode formats magnet:?xt=urn:brightchain:<cblHex>&dn=<fileName>&xl=<originalLength>
// (spec §6). fileName is URL-encoded; extra parameters are never added by
// this implementation but are tolerated on Decode.
func Encode(cblID checksum.Checksum, fileName string, originalLength uint64) string {
	v := url.Values{}
	v.Set("xt", "urn:brightchain:"+cblID.Hex())
	v.Set("dn", fileName)
	v.Set("xl", strconv.FormatUint(originalLength, 10))
	return fmt.Sprintf("%s:?%s", scheme, v.Encode())
}

// Decode parses a CBL magnet URL, ignoring any parameters beyond xt/dn/xl
// (spec §6: "extra parameters permitted and ignored").
func Decode(raw string) (*Link, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, offerrors.New("magnet.Decode", offerrors.InvalidHex, err)
	}
	if u.Scheme != scheme {
		return nil, offerrors.New("magnet.Decode", offerrors.InvalidHex, nil)
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, offerrors.New("magnet.Decode", offerrors.InvalidHex, err)
	}

	xt := values.Get("xt")
	const prefix = "urn:brightchain:"
	if !strings.HasPrefix(xt, prefix) {
		return nil, offerrors.New("magnet.Decode", offerrors.InvalidHex, nil)
	}
	cblHex := strings.TrimPrefix(xt, prefix)
	if _, err := checksum.FromHex(cblHex); err != nil {
		return nil, err
	}

	var originalLength uint64
	if xl := values.Get("xl"); xl != "" {
		originalLength, err = strconv.ParseUint(xl, 10, 64)
		if err != nil {
			return nil, offerrors.New("magnet.Decode", offerrors.InvalidLength, err)
		}
	}

	return &Link{
		CBLHex:         cblHex,
		FileName:       values.Get("dn"),
		OriginalLength: originalLength,
	}, nil
}
