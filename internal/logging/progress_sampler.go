package logging

// ProgressSampler thins download progress logs to one record per percentage
// bucket. When the total size is unknown it falls back to one record per
// byte step.
type ProgressSampler struct {
	bucketPercent float64
	byteStep      int64
	lastBucket    int64
}

// NewProgressSampler constructs a sampler emitting every bucketPercent percent
// (default 25) or, without a known total, every byteStep bytes (default 8 MiB).
func NewProgressSampler(bucketPercent float64, byteStep int64) *ProgressSampler {
	if bucketPercent <= 0 {
		bucketPercent = 25
	}
	if byteStep <= 0 {
		byteStep = 8 << 20
	}
	return &ProgressSampler{bucketPercent: bucketPercent, byteStep: byteStep, lastBucket: -1}
}

// ShouldLog reports whether progress at done of total bytes deserves a record.
// total <= 0 means the size is unknown.
func (s *ProgressSampler) ShouldLog(done, total int64) bool {
	if s == nil {
		return true
	}
	var bucket int64
	if total > 0 {
		percent := float64(done) * 100 / float64(total)
		if percent > 100 {
			percent = 100
		}
		bucket = int64(percent / s.bucketPercent)
	} else {
		bucket = done / s.byteStep
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state before a new download.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
