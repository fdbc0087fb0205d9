package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets names the persisted partitions of a Snapshot, one per entity
// mapping plus the session user slot.
var Buckets = []string{"users", "properties", "hubs", "pickups", "cartons", "contracts", "reports", "session_user"}

// EncodeBuckets serialises every bucket of s as JSON.
func EncodeBuckets(s Snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		target, _ := s.bucket(bucket)
		data, err := json.Marshal(target)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket fills one bucket of s from its JSON payload. Unknown buckets
// are ignored so newer databases stay readable.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, target := s.bucket(bucket)
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

// bucket returns the value and address of a bucket field.
func (s *Snapshot) bucket(name string) (any, any) {
	switch name {
	case "users":
		return s.Users, &s.Users
	case "properties":
		return s.Properties, &s.Properties
	case "hubs":
		return s.Hubs, &s.Hubs
	case "pickups":
		return s.Pickups, &s.Pickups
	case "cartons":
		return s.Cartons, &s.Cartons
	case "contracts":
		return s.Contracts, &s.Contracts
	case "reports":
		return s.Reports, &s.Reports
	case "session_user":
		return s.SessionUser, &s.SessionUser
	default:
		return nil, nil
	}
}
