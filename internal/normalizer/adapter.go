// Package normalizer maps the raw JSON shapes of the supported user APIs into canonical user records.
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"userfetch/internal/models"
)

// Normalization errors.
var (
	ErrParse            = errors.New("response body is not valid JSON")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownKind      = errors.New("unknown adapter kind")
)

// Kind identifies one of the known source payload shapes.
type Kind int

// Supported payload shapes. The numeric value is the source_id stamped on every record.
const (
	// KindResults is {"results": [{"name": {"first", "last"}, "email"}]}.
	KindResults Kind = iota + 1
	// KindList is a bare array of {"first_name", "last_name", "email"}.
	KindList
	// KindUsers is {"users": [{"firstName", "lastName", "email"}]}.
	KindUsers
	// KindData is {"data": [{"first_name", "last_name", "email"}]}.
	KindData
)

var kindNames = map[Kind]string{
	KindResults: "results",
	KindList:    "list",
	KindUsers:   "users",
	KindData:    "data",
}

// SourceID returns the fixed source identifier for records of this kind.
func (k Kind) SourceID() int {
	return int(k)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves an adapter name such as "results" or "users".
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindNames lists the adapter names in source_id order.
func KindNames() []string {
	return []string{
		KindResults.String(),
		KindList.String(),
		KindUsers.String(),
		KindData.String(),
	}
}

// Adapter converts a parsed response into canonical users.
// It either maps every element or returns an error wrapping ErrMalformedPayload.
type Adapter func(payload gjson.Result) ([]models.User, error)

// Adapter returns the adapter for this kind.
func (k Kind) Adapter() (Adapter, error) {
	switch k {
	case KindResults:
		return AdaptResults, nil
	case KindList:
		return AdaptList, nil
	case KindUsers:
		return AdaptUsers, nil
	case KindData:
		return AdaptData, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
}

// fieldSet names the JSON paths of each canonical field inside one list element.
// Alternatives are tried in order; the first present one wins.
type fieldSet struct {
	first []string
	last  []string
	email []string
}

var (
	nestedNameFields = fieldSet{
		first: []string{"name.first"},
		last:  []string{"name.last"},
		email: []string{"email"},
	}
	snakeCaseFields = fieldSet{
		first: []string{"first_name"},
		last:  []string{"last_name"},
		email: []string{"email"},
	}
	camelCaseFields = fieldSet{
		first: []string{"firstName"},
		last:  []string{"lastName"},
		email: []string{"email"},
	}
	eitherCaseFields = fieldSet{
		first: []string{"first_name", "firstName"},
		last:  []string{"last_name", "lastName"},
		email: []string{"email"},
	}
)

// AdaptResults handles the wrapper object holding a "results" list with nested names.
func AdaptResults(payload gjson.Result) ([]models.User, error) {
	return adaptWrapped(payload, "results", KindResults, nestedNameFields)
}

// AdaptList handles a bare list of user objects in either snake or camel case.
func AdaptList(payload gjson.Result) ([]models.User, error) {
	return adaptElements(payload, KindList, eitherCaseFields)
}

// AdaptUsers handles the wrapper object holding a "users" list with camelCase fields.
func AdaptUsers(payload gjson.Result) ([]models.User, error) {
	return adaptWrapped(payload, "users", KindUsers, camelCaseFields)
}

// AdaptData handles the wrapper object holding a "data" list with snake_case fields.
func AdaptData(payload gjson.Result) ([]models.User, error) {
	return adaptWrapped(payload, "data", KindData, snakeCaseFields)
}

func adaptWrapped(payload gjson.Result, key string, kind Kind, fields fieldSet) ([]models.User, error) {
	if !payload.IsObject() {
		return nil, fmt.Errorf("%w: expected object with %q list, got %s", ErrMalformedPayload, key, describe(payload))
	}

	list := payload.Get(key)
	if !list.Exists() {
		return nil, fmt.Errorf("%w: missing %q list", ErrMalformedPayload, key)
	}

	return adaptElements(list, kind, fields)
}

func adaptElements(list gjson.Result, kind Kind, fields fieldSet) ([]models.User, error) {
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrMalformedPayload, describe(list))
	}

	elements := list.Array()
	users := make([]models.User, 0, len(elements))

	for i, elem := range elements {
		if !elem.IsObject() {
			return nil, fmt.Errorf("%w: element %d: expected object, got %s", ErrMalformedPayload, i, describe(elem))
		}

		first, err := stringField(elem, i, fields.first)
		if err != nil {
			return nil, err
		}

		last, err := stringField(elem, i, fields.last)
		if err != nil {
			return nil, err
		}

		email, err := stringField(elem, i, fields.email)
		if err != nil {
			return nil, err
		}

		users = append(users, models.User{
			FirstName: first,
			LastName:  last,
			Email:     email,
			SourceID:  kind.SourceID(),
		})
	}

	return users, nil
}

func stringField(elem gjson.Result, index int, paths []string) (string, error) {
	for _, path := range paths {
		v := elem.Get(path)
		if !v.Exists() {
			continue
		}

		if v.Type != gjson.String {
			return "", fmt.Errorf("%w: element %d: field %q is %s, want string", ErrMalformedPayload, index, path, describe(v))
		}

		return v.Str, nil
	}

	return "", fmt.Errorf("%w: element %d: missing field %q", ErrMalformedPayload, index, paths[0])
}

func describe(v gjson.Result) string {
	switch {
	case !v.Exists():
		return "nothing"
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	}

	return strings.ToLower(v.Type.String())
}
