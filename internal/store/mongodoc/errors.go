package mongodoc

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

var dupIndexRe = regexp.MustCompile(`index: (\S+) dup key`)

func indexName(field string) string { return field + "_unique" }

// mapError turns an E11000 into a DuplicateKeyError naming the field of the
// violated index.
func (s *Store) mapError(err error, coll, id string, doc any) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	m := dupIndexRe.FindStringSubmatch(err.Error())
	if len(m) < 2 || m[1] == "_id_" {
		return &docstore.DuplicateKeyError{Collection: coll, Field: "_id", Value: id}
	}
	field := strings.TrimSuffix(m[1], "_unique")
	dup := &docstore.DuplicateKeyError{Collection: coll, Field: field}
	if fields, ferr := docstore.Fields(doc); ferr == nil {
		dup.Value, _ = docstore.FieldString(fields, field)
	}
	return dup
}
