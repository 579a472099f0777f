package analytics

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"greenhouse-forecaster/models"
)

// Fingerprint is a digest of a series' ordered (timestamp, value) pairs.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

func ComputeFingerprint(s models.Series) Fingerprint {
	digest := xxhash.New()

	var buf [16]byte
	for _, r := range s.Readings {
		binary.BigEndian.PutUint64(buf[:8], uint64(r.Timestamp.UnixNano()))
		binary.BigEndian.PutUint64(buf[8:], math.Float64bits(r.Value))
		digest.Write(buf[:])
	}

	return Fingerprint(digest.Sum64())
}

// ChangeState is the last fingerprint seen for one channel. The zero value
// means nothing has been seen yet.
type ChangeState struct {
	Fingerprint Fingerprint
	Seen        bool
}

// HasChanged compares s against prev and returns the state to keep if the
// caller commits to processing s. An empty series never counts as a change.
func HasChanged(prev ChangeState, s models.Series) (bool, ChangeState) {
	if s.Empty() {
		return false, prev
	}

	fp := ComputeFingerprint(s)
	if prev.Seen && prev.Fingerprint == fp {
		return false, prev
	}

	return true, ChangeState{Fingerprint: fp, Seen: true}
}
