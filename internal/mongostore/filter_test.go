package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestContainsFilterEscapesRegex(t *testing.T) {
	t.Parallel()

	got := containsFilter("name_key", "суккуленты (общие")
	assert.Equal(t, bson.M{"name_key": bson.M{"$regex": `суккуленты \(общие`}}, got)
}
