package syncmanager

// SyncChunk is the in-flight state of an API-mode sync (§3 SyncChunk).
// requestID == 0 means no sync is in flight.
type SyncChunk struct {
	RequestID uint64

	LastExternalAddress Address
	LastInternalAddress Address

	BegHeight int32
	EndHeight int32

	ChunkSize      int32
	ChunkBegHeight int32
	ChunkEndHeight int32

	IsFullSync bool
}

// reset clears the chunk back to "no sync in flight".
func (c *SyncChunk) reset() {
	*c = SyncChunk{}
}

// inFlight reports whether a sync is currently outstanding.
func (c *SyncChunk) inFlight() bool {
	return c.RequestID != 0
}

// progressPercent computes the percent-complete figure emitted with
// SyncProgress at each chunk boundary (§4.1.1): 100 * (chunkBeg - beg) /
// (end - beg).
func (c *SyncChunk) progressPercent() float64 {
	span := c.EndHeight - c.BegHeight
	if span <= 0 {
		return 100
	}
	return 100 * float64(c.ChunkBegHeight-c.BegHeight) / float64(span)
}
