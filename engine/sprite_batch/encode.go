package sprite_batch

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy2d/engine/atlas"
)

// parallelEncodeThreshold is the batch size above which record encoding fans
// out across the worker pool. Below it the per-task overhead exceeds the
// marshal cost and a single pass is faster.
const parallelEncodeThreshold = 1024

// encodeSprites marshals sprite records into a contiguous upload buffer laid
// out at the sprite stride. Region ids at or beyond regionCount are clamped to
// the last region and reported once per call. Batches above the parallel
// threshold are split into per-worker chunks writing disjoint buffer ranges;
// a WaitGroup provides the per-call barrier, matching how the pool is reused
// across frames without idle-exit waits.
func (s *spriteBatchImpl) encodeSprites(sprites []Sprite, regionCount int) []byte {
	buf := make([]byte, len(sprites)*atlas.SpriteStride)
	maxID := uint32(regionCount - 1)

	if len(sprites) < parallelEncodeThreshold {
		clamped := encodeChunk(sprites, maxID, buf)
		if clamped > 0 {
			log.Printf("sprite_batch: clamped %d sprite region ids to %d", clamped, maxID)
		}
		return buf
	}

	workers := s.encodeWorkers
	chunkSize := (len(sprites) + workers - 1) / workers
	clampedPerChunk := make([]int, workers)

	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunkSize
		if start >= len(sprites) {
			break
		}
		end := min(start+chunkSize, len(sprites))

		wg.Add(1)
		chunkIdx := i
		chunk := sprites[start:end]
		dst := buf[start*atlas.SpriteStride : end*atlas.SpriteStride]
		s.encodePool.SubmitTask(worker.Task{
			ID: chunkIdx,
			Do: func() (any, error) {
				defer wg.Done()
				clampedPerChunk[chunkIdx] = encodeChunk(chunk, maxID, dst)
				return nil, nil
			},
		})
	}
	wg.Wait()

	clamped := 0
	for _, c := range clampedPerChunk {
		clamped += c
	}
	if clamped > 0 {
		log.Printf("sprite_batch: clamped %d sprite region ids to %d", clamped, maxID)
	}
	return buf
}

// encodeChunk marshals a run of sprites into dst and returns how many region
// ids were clamped.
func encodeChunk(sprites []Sprite, maxID uint32, dst []byte) int {
	clamped := 0
	for i := range sprites {
		sp := &sprites[i]

		regionID := sp.RegionID
		if regionID > maxID {
			regionID = maxID
			clamped++
		}

		g := GPUSprite{
			Pos:      [2]float32{sp.X, sp.Y},
			Size:     [2]float32{sp.Width, sp.Height},
			Flip:     [2]int32{flipFlag(sp.FlipX), flipFlag(sp.FlipY)},
			Rotation: sp.Rotation,
			ZIndex:   sp.ZIndex,
			RegionID: regionID,
		}
		g.MarshalInto(dst[i*atlas.SpriteStride:])
	}
	return clamped
}

func flipFlag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
