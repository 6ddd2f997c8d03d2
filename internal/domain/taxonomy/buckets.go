// Package taxonomy defines the closed spend-bucket taxonomy and the
// classifier that maps merchant keys onto it.
package taxonomy

// Bucket identifies one spend category in the closed taxonomy.
// Every transaction maps to exactly one bucket; unmatched merchants land in
// BucketOtherOffline, never in an error.
type Bucket string

const (
	BucketGroceries     Bucket = "groceries"
	BucketFoodDelivery  Bucket = "food-delivery"
	BucketDining        Bucket = "dining"
	BucketTravel        Bucket = "travel"
	BucketFuel          Bucket = "fuel"
	BucketUtilities     Bucket = "utilities"
	BucketEntertainment Bucket = "entertainment"
	BucketHealth        Bucket = "health"
	BucketOnlineRetail  Bucket = "online-retail"
	BucketOtherOffline  Bucket = "other-offline" // catch-all
)

// AllBuckets returns every bucket in the taxonomy, in stable order.
// The order is part of the public contract: snapshots and optimizer payloads
// iterate buckets in this order so output is reproducible.
func AllBuckets() []Bucket {
	return []Bucket{
		BucketGroceries,
		BucketFoodDelivery,
		BucketDining,
		BucketTravel,
		BucketFuel,
		BucketUtilities,
		BucketEntertainment,
		BucketHealth,
		BucketOnlineRetail,
		BucketOtherOffline,
	}
}

// Valid reports whether b is a member of the closed taxonomy.
func (b Bucket) Valid() bool {
	switch b {
	case BucketGroceries, BucketFoodDelivery, BucketDining, BucketTravel,
		BucketFuel, BucketUtilities, BucketEntertainment, BucketHealth,
		BucketOnlineRetail, BucketOtherOffline:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (b Bucket) String() string {
	return string(b)
}

// ParseBucket converts a string into a Bucket, falling back to the catch-all
// for anything outside the taxonomy.
func ParseBucket(s string) Bucket {
	b := Bucket(s)
	if b.Valid() {
		return b
	}
	return BucketOtherOffline
}
