// Package reconstruct implements the Reconstruction Stream (spec §4.6): a
// lazy byte source that walks a CBL's tuples, fetches members via a
// store-like capability, un-whitens, and emits the original file bytes.
package reconstruct

import (
	"context"
	"io"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/cbl"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/crypto"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/pool"
	"github.com/Digital-Defiance/brightchain-off/pkg/tuple"
)

// GetBlock fetches a block by checksum. Implementations are typically
// store.Backend.Get, but reconstruct depends only on this function type so
// it never imports the store package (spec §9: reconstruction is
// parameterised by a store-like capability, not a concrete store).
type GetBlock func(ctx context.Context, id checksum.Checksum) (*blocks.Block, error)

// Options configures a reconstruction Open call.
type Options struct {
	// Resolver resolves the CBL creator id to a public key for signature
	// verification. Required.
	Resolver crypto.IdentityResolver

	// Oracle, if non-nil, enables pool integrity checking: every tuple
	// member's checksum must be recorded in PoolID before any fetch
	// happens (spec P11).
	Oracle pool.Oracle
	PoolID string
}

// Stream lazily emits the plaintext bytes a CBL describes, one tuple's
// worth at a time. A Stream is single-use: once exhausted or failed, a new
// Stream must be opened to re-read (spec §4.6: "not restartable").
type Stream struct {
	ctx       context.Context
	get       GetBlock
	addresses []checksum.Checksum
	tupleSize int
	remaining int64 // bytes left to emit, clipped at originalDataLength

	nextTuple int
	done      bool
	err       error
}

// Open validates cblBlock (signature, date, address count) and, if
// opts.Oracle is set, verifies every address's pool membership before any
// store fetch (spec P11). It returns a Stream ready to be read via Next.
func Open(ctx context.Context, cblBlock *blocks.Block, get GetBlock, opts Options) (*Stream, error) {
	decoded, err := cbl.Decode(cblBlock, opts.Resolver)
	if err != nil {
		return nil, err
	}

	if opts.Oracle != nil {
		hexes := make([]string, len(decoded.Addresses))
		for i, a := range decoded.Addresses {
			hexes[i] = a.Hex()
		}
		if err := tuple.CheckPoolIntegrity(ctx, opts.Oracle, opts.PoolID, hexes); err != nil {
			return nil, err
		}
	}

	return &Stream{
		ctx:       ctx,
		get:       get,
		addresses: decoded.Addresses,
		tupleSize: int(decoded.Fields.TupleSize),
		remaining: int64(decoded.Fields.OriginalDataLength),
	}, nil
}

// Next fetches and un-whitens the next tuple's payload, returning its
// bytes clipped so the cumulative total never exceeds originalDataLength
// (spec P12). It returns io.EOF once every tuple has been emitted, and
// never emits partial-tuple bytes on error (spec §4.6, §7).
func (s *Stream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}

	select {
	case <-s.ctx.Done():
		s.err = offerrors.New("reconstruct.Next", offerrors.Cancelled, s.ctx.Err())
		return nil, s.err
	default:
	}

	totalTuples := len(s.addresses) / s.tupleSize
	if s.nextTuple >= totalTuples {
		s.done = true
		return nil, io.EOF
	}

	start := s.nextTuple * s.tupleSize
	members := make([]*blocks.Block, s.tupleSize)
	for i := 0; i < s.tupleSize; i++ {
		b, err := s.get(s.ctx, s.addresses[start+i])
		if err != nil {
			s.err = err
			return nil, err
		}
		if verr := b.Validate(); verr != nil {
			s.err = verr
			return nil, verr
		}
		members[i] = b
	}

	payload, err := tuple.XORReduce(members, blocks.Raw)
	if err != nil {
		s.err = err
		return nil, err
	}
	data, err := payload.Data()
	if err != nil {
		s.err = err
		return nil, err
	}

	s.nextTuple++
	if int64(len(data)) > s.remaining {
		data = data[:s.remaining]
	}
	s.remaining -= int64(len(data))

	if s.nextTuple >= totalTuples {
		s.done = true
	}
	return data, nil
}

// ReadAll drains the stream into a single byte slice. Convenience wrapper
// for callers that don't need tuple-at-a-time backpressure.
func ReadAll(s *Stream) ([]byte, error) {
	var out []byte
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}
