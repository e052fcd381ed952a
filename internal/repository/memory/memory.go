// Package memory holds map-backed repositories with the same contract as the
// MongoDB ones. Services are unit tested against them.
package memory

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newID() string {
	return primitive.NewObjectID().Hex()
}

// page returns the slice bounds for a 1-based page.
func page(total, pageNum, limit int) (int, int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if limit < 1 {
		return 0, total
	}
	start := (pageNum - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}
