package corridor

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// stateDigest hashes the canonical simulation state for a tick: tick number,
// occupancy count, then every active agent in grid snapshot order. Two
// corridors driven identically from the same seed produce identical digests.
func (c *Corridor) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, &tmp, nowTick)
	agents := c.grid.Snapshot()
	writeU64(h, &tmp, uint64(len(agents)))
	for _, a := range agents {
		writeI64(h, &tmp, int64(a.ID))
		writeI64(h, &tmp, int64(a.X))
		writeI64(h, &tmp, int64(a.Y))
		writeI64(h, &tmp, int64(a.Direction))
		h.Write([]byte{boolByte(a.Infected), boolByte(a.NewlyInfected), boolByte(a.InfectedOnEntry)})
		writeI64(h, &tmp, int64(a.InfectionsCaused))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func writeI64(h hash.Hash, tmp *[8]byte, v int64) {
	writeU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
