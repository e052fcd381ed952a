package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// parseID converts a hex id, reporting notFound for anything that is not an ObjectID
// since no stored document can have such an id.
func parseID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", notFound, id)
	}
	return oid, nil
}

func paginate(page, limit int, sort bson.D) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}

// containsFold matches s anywhere in the field, case-insensitively.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}
