package messages

import (
	"bytes"
	"fmt"
	"io"
	"time"

	reportfb "github.com/cbodonnell/puzzleflow/flatbuffers/report"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// SerializeBatch encodes a batch as a zstd-compressed flatbuffer.
func SerializeBatch(batch *Batch) ([]byte, error) {
	b, err := SerializeBatchFlatbuffer(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize batch: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress batch: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// MaxDecodedBatchBytes bounds the size of a batch after decompression.
const MaxDecodedBatchBytes = 16 << 20

func DeserializeBatch(data []byte) (*Batch, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(MaxDecodedBatchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(io.LimitReader(compReader, MaxDecodedBatchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed batch: %v", err)
	}
	if len(b) > MaxDecodedBatchBytes {
		return nil, fmt.Errorf("decompressed batch exceeds %d bytes", MaxDecodedBatchBytes)
	}

	batch, err := DeserializeBatchFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize batch: %v", err)
	}

	return batch, nil
}

func SerializeBatchFlatbuffer(batch *Batch) ([]byte, error) {
	builder := flatbuffers.NewBuilder(0)

	results := make([]flatbuffers.UOffsetT, 0, len(batch.Results))
	for _, result := range batch.Results {
		if result == nil {
			return nil, fmt.Errorf("batch contains a nil result")
		}
		results = append(results, SerializeResultFlatbuffer(builder, result))
	}
	reportfb.BatchStartResultsVector(builder, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(results[i])
	}
	resultsVector := builder.EndVector(len(results))

	reportfb.BatchStart(builder)
	reportfb.BatchAddSentAt(builder, batch.SentAt.UnixMilli())
	reportfb.BatchAddResults(builder, resultsVector)
	batchOffset := reportfb.BatchEnd(builder)
	builder.Finish(batchOffset)

	return builder.FinishedBytes(), nil
}

func SerializeResultFlatbuffer(builder *flatbuffers.Builder, result *game.Result) flatbuffers.UOffsetT {
	id := builder.CreateString(result.ID)
	levelID := builder.CreateString(result.LevelID)

	reportfb.CostStart(builder)
	reportfb.CostAddHints(builder, int32(result.Cost.Hints))
	reportfb.CostAddLives(builder, int32(result.Cost.Lives))
	reportfb.CostAddTimeSeconds(builder, int32(result.Cost.TimeSeconds))
	cost := reportfb.CostEnd(builder)

	reportfb.ResultStart(builder)
	reportfb.ResultAddId(builder, id)
	reportfb.ResultAddType(builder, byte(result.Type))
	reportfb.ResultAddSubtype(builder, byte(result.Subtype))
	reportfb.ResultAddDifficulty(builder, byte(result.Difficulty))
	reportfb.ResultAddLevelId(builder, levelID)
	reportfb.ResultAddStartedAt(builder, result.StartedAt.UnixMilli())
	reportfb.ResultAddElapsedSeconds(builder, result.ElapsedSeconds)
	reportfb.ResultAddWon(builder, result.Won)
	reportfb.ResultAddScore(builder, int32(result.Score))
	reportfb.ResultAddProgress(builder, result.Progress)
	reportfb.ResultAddMistakes(builder, int32(result.Mistakes))
	reportfb.ResultAddHintsUsed(builder, int32(result.HintsUsed))
	reportfb.ResultAddCost(builder, cost)
	return reportfb.ResultEnd(builder)
}

// DeserializeBatchFlatbuffer decodes a batch. Malformed buffers are reported as errors.
func DeserializeBatchFlatbuffer(b []byte) (batch *Batch, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(b))
	}
	defer func() {
		if r := recover(); r != nil {
			batch = nil
			err = fmt.Errorf("malformed batch: %v", r)
		}
	}()

	batchFlatbuffer := reportfb.GetRootAsBatch(b, 0)
	batch = &Batch{
		SentAt:  time.UnixMilli(batchFlatbuffer.SentAt()),
		Results: make([]*game.Result, 0, batchFlatbuffer.ResultsLength()),
	}
	for i := 0; i < batchFlatbuffer.ResultsLength(); i++ {
		resultFlatbuffer := &reportfb.Result{}
		if !batchFlatbuffer.Results(resultFlatbuffer, i) {
			return nil, fmt.Errorf("failed to get result at index %d", i)
		}
		batch.Results = append(batch.Results, ResultFlatbufferToResult(resultFlatbuffer))
	}

	return batch, nil
}

func ResultFlatbufferToResult(fb *reportfb.Result) *game.Result {
	result := &game.Result{}
	result.ID = string(fb.Id())
	result.Type = types.GameType(fb.Type())
	result.Subtype = types.GameSubtype(fb.Subtype())
	result.Difficulty = types.Difficulty(fb.Difficulty())
	result.LevelID = string(fb.LevelId())
	result.StartedAt = time.UnixMilli(fb.StartedAt())
	result.ElapsedSeconds = fb.ElapsedSeconds()
	result.Won = fb.Won()
	result.Score = int(fb.Score())
	result.Progress = fb.Progress()
	result.Mistakes = int(fb.Mistakes())
	result.HintsUsed = int(fb.HintsUsed())
	if cost := fb.Cost(nil); cost != nil {
		result.Cost = game.Cost{
			Hints:       int(cost.Hints()),
			Lives:       int(cost.Lives()),
			TimeSeconds: int(cost.TimeSeconds()),
		}
	}

	return result
}
