package matrix

import (
	"strconv"
	"sync"

	"github.com/signalworks/flux-matrix/internal/model"
)

// QuantizeDecimals is the number of decimal places used to form bucket
// keys. Two values that round to the same key are indistinguishable to
// range queries; that approximation is the index's contract.
const QuantizeDecimals = 2

// AttributeIndex is a concurrent two-level map from attribute name to
// quantized-value bucket to the append-only list of records that ever
// matched that bucket. Buckets are never compacted or removed; they
// grow monotonically for the lifetime of the store.
type AttributeIndex struct {
	names sync.Map // attribute name -> *bucketSet
}

type bucketSet struct {
	buckets sync.Map // quantized key -> *bucket
}

type bucket struct {
	mu      sync.Mutex
	value   float64 // parsed form of the bucket key
	entries []*model.VersionedRecord
}

// NewAttributeIndex creates an empty attribute index.
func NewAttributeIndex() *AttributeIndex {
	return &AttributeIndex{}
}

// BucketKey renders an attribute value as its quantized bucket key.
func BucketKey(value float64) string {
	return strconv.FormatFloat(value, 'f', QuantizeDecimals, 64)
}

// Index appends rec into the bucket for every (name, value) pair on the
// record's attributes, creating name-level and bucket-level containers
// on first use. Writers to distinct buckets never contend.
func (idx *AttributeIndex) Index(attrs map[string]float64, rec *model.VersionedRecord) {
	for name, value := range attrs {
		setAny, _ := idx.names.LoadOrStore(name, &bucketSet{})
		set := setAny.(*bucketSet)

		key := BucketKey(value)
		bAny, loaded := set.buckets.Load(key)
		if !loaded {
			parsed, _ := strconv.ParseFloat(key, 64)
			bAny, _ = set.buckets.LoadOrStore(key, &bucket{value: parsed})
		}
		b := bAny.(*bucket)

		b.mu.Lock()
		b.entries = append(b.entries, rec)
		b.mu.Unlock()
	}
}

// QueryRange returns every record in buckets whose quantized value lies
// within [min, max] under the given attribute name. Recall is bounded
// by quantization: a value exactly on a bucket boundary may be included
// or excluded depending on float round-tripping.
func (idx *AttributeIndex) QueryRange(name string, min, max float64) []*model.VersionedRecord {
	setAny, ok := idx.names.Load(name)
	if !ok {
		return nil
	}
	set := setAny.(*bucketSet)

	var results []*model.VersionedRecord
	set.buckets.Range(func(_, bAny any) bool {
		b := bAny.(*bucket)
		if b.value < min || b.value > max {
			return true
		}
		b.mu.Lock()
		results = append(results, b.entries...)
		b.mu.Unlock()
		return true
	})
	return results
}

// BucketCount returns the number of buckets under name, for stats.
func (idx *AttributeIndex) BucketCount(name string) int {
	setAny, ok := idx.names.Load(name)
	if !ok {
		return 0
	}
	count := 0
	setAny.(*bucketSet).buckets.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
