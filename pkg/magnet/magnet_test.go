package magnet_test

import (
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/magnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	id := checksum.Calculate([]byte("a cbl block's bytes"))
	link := magnet.Encode(id, "report.pdf", 4096)

	decoded, err := magnet.Decode(link)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), decoded.CBLHex)
	assert.Equal(t, "report.pdf", decoded.FileName)
	assert.EqualValues(t, 4096, decoded.OriginalLength)
}

func TestDecodeIgnoresExtraParameters(t *testing.T) {
	decoded, err := magnet.Decode("magnet:?xt=urn:brightchain:" + checksum.Calculate([]byte("x")).Hex() + "&dn=f&xl=1&tr=unused")
	require.NoError(t, err)
	assert.Equal(t, "f", decoded.FileName)
}

func TestDecodeRejectsWrongScheme(t *testing.T) {
	_, err := magnet.Decode("http://example.com")
	require.Error(t, err)
}

func TestDecodeRejectsMissingXT(t *testing.T) {
	_, err := magnet.Decode("magnet:?dn=f")
	require.Error(t, err)
}
