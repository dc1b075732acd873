package distribution

// weighted reuses round-robin's block-cursor arithmetic but walks a
// repeating pattern of server indices built from each server's weight:
// server i appears weight_i times in a row before the cycle advances to the
// next server, and weight-0 servers never appear at all.
type weighted struct {
	serverCount uint32
	blockSize   uint64
	startIndex  uint32
	weights     []uint32

	pattern      []uint32
	patternDirty bool

	offset    uint64
	remaining uint64
}

func newWeighted(serverCount uint32) *weighted {
	w := &weighted{serverCount: serverCount, blockSize: StripeSize}
	w.weights = make([]uint32, serverCount)
	for i := range w.weights {
		w.weights[i] = 1
	}
	w.patternDirty = true
	return w
}

func (w *weighted) setBlockSize(v uint64)  { w.blockSize = v }
func (w *weighted) setStartIndex(v uint32) { w.startIndex = v }

func (w *weighted) setWeight(serverIndex, weight uint32) {
	if serverIndex >= w.serverCount {
		panic("distribution: SetWeight called with serverIndex out of range")
	}
	w.weights[serverIndex] = weight
	w.patternDirty = true
}

func (w *weighted) ensurePattern() {
	if !w.patternDirty {
		return
	}
	w.pattern = w.pattern[:0]
	for i, weight := range w.weights {
		for k := uint32(0); k < weight; k++ {
			w.pattern = append(w.pattern, uint32(i))
		}
	}
	if len(w.pattern) == 0 {
		// All weights zero is a degenerate configuration; fall back to an
		// unweighted cycle rather than dividing by zero below.
		for i := uint32(0); i < w.serverCount; i++ {
			w.pattern = append(w.pattern, i)
		}
	}
	w.patternDirty = false
}

func (w *weighted) reset(length, offset uint64) {
	w.offset = offset
	w.remaining = length
}

func (w *weighted) distribute() (Result, bool) {
	if w.remaining == 0 {
		return Result{}, false
	}

	w.ensurePattern()

	blockNumber := w.offset / w.blockSize
	localOffset := w.offset - blockNumber*w.blockSize
	patternIndex := (uint64(w.startIndex) + blockNumber) % uint64(len(w.pattern))
	server := w.pattern[patternIndex]

	chunk := w.blockSize - localOffset
	if chunk > w.remaining {
		chunk = w.remaining
	}

	result := Result{
		Index:   server,
		Length:  chunk,
		Offset:  localOffset,
		BlockID: blockNumber,
	}

	w.offset += chunk
	w.remaining -= chunk

	return result, true
}

func (w *weighted) toDoc() doc {
	weights := make([]uint32, len(w.weights))
	copy(weights, w.weights)
	return doc{Type: int32(Weighted), BlockSize: w.blockSize, StartIndex: w.startIndex, Weights: weights}
}

func (w *weighted) fromDoc(d doc) {
	if d.BlockSize != 0 {
		w.blockSize = d.BlockSize
	}
	w.startIndex = d.StartIndex
	if len(d.Weights) > 0 {
		w.weights = make([]uint32, len(d.Weights))
		copy(w.weights, d.Weights)
		w.patternDirty = true
	}
}
