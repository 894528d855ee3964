// Package workers provides lightweight parallel execution for
// tuple/store operations, ported from the teacher's
// _examples/TheEntropyCollective-noisefs/pkg/infrastructure/workers/simple_pool.go:
// pure goroutines, trusting
// Go's scheduler instead of a managed worker pool.
package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/checksum"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/tuple"
)

// Pool runs block/store operations across goroutines. It carries no
// state of its own; workerCount exists only to mirror the teacher's
// constructor shape and is otherwise unused.
type Pool struct{}

// New returns a Pool. workerCount is ignored, as Go's scheduler already
// handles concurrency for CPU-bound XOR and I/O-bound store calls.
func New(workerCount int) *Pool {
	return &Pool{}
}

// ParallelXOR reduces each of tuples to its payload via tuple.XORReduce,
// concurrently, preserving input order in the result slice.
func (p *Pool) ParallelXOR(ctx context.Context, tuples [][]*blocks.Block, payloadType blocks.BlockType) ([]*blocks.Block, error) {
	results := make([]*blocks.Block, len(tuples))
	errs := make([]error, len(tuples))

	var wg sync.WaitGroup
	for i, members := range tuples {
		wg.Add(1)
		go func(index int, t []*blocks.Block) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			default:
			}
			result, err := tuple.XORReduce(t, payloadType)
			if err != nil {
				errs[index] = fmt.Errorf("tuple %d: %w", index, err)
				return
			}
			results[index] = result
		}(i, members)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Putter stores a single block under its own content address.
type Putter interface {
	Put(ctx context.Context, block *blocks.Block, opts store.PutOptions) error
}

// ParallelPut stores blockList concurrently via put.
func (p *Pool) ParallelPut(ctx context.Context, blockList []*blocks.Block, opts store.PutOptions, put Putter) error {
	errs := make([]error, len(blockList))

	var wg sync.WaitGroup
	for i, b := range blockList {
		wg.Add(1)
		go func(index int, blk *blocks.Block) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			default:
			}
			if err := put.Put(ctx, blk, opts); err != nil {
				errs[index] = fmt.Errorf("block %d: %w", index, err)
			}
		}(i, b)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Getter fetches a single block by content address.
type Getter interface {
	Get(ctx context.Context, id checksum.Checksum) (*blocks.Block, error)
}

// ParallelGet fetches ids concurrently via get, preserving input order
// in the result slice, so every member of a tuple can be fetched at once
// rather than one round trip per member.
func (p *Pool) ParallelGet(ctx context.Context, ids []checksum.Checksum, get Getter) ([]*blocks.Block, error) {
	results := make([]*blocks.Block, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(index int, addr checksum.Checksum) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			default:
			}
			b, err := get.Get(ctx, addr)
			if err != nil {
				errs[index] = fmt.Errorf("block %d: %w", index, err)
				return
			}
			results[index] = b
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
