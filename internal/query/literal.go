package query

import (
	"encoding/json"
	"strconv"
	"strings"

	"soapcore/pkg/domain"
)

// object renders a GraphQL input object literal with fields in insertion order.
type object struct {
	fields []string
}

func (o *object) raw(name, literal string) *object {
	o.fields = append(o.fields, name+": "+literal)
	return o
}

func (o *object) str(name, v string) *object {
	return o.raw(name, quote(v))
}

func (o *object) optStr(name string, v *string) *object {
	if v == nil {
		return o
	}
	return o.str(name, *v)
}

// strIf writes v only when it is non-empty.
func (o *object) strIf(name, v string) *object {
	if v == "" {
		return o
	}
	return o.str(name, v)
}

func (o *object) num(name string, v int) *object {
	return o.raw(name, strconv.Itoa(v))
}

func (o *object) optNum(name string, v *int) *object {
	if v == nil {
		return o
	}
	return o.num(name, *v)
}

func (o *object) strList(name string, vs []string) *object {
	if vs == nil {
		return o
	}
	items := make([]string, len(vs))
	for i, v := range vs {
		items[i] = quote(v)
	}
	return o.raw(name, "["+strings.Join(items, ", ")+"]")
}

func (o *object) address(name string, a *domain.Address) *object {
	if a == nil {
		return o
	}
	var in object
	in.strIf("address1", a.Address1).
		strIf("address2", a.Address2).
		strIf("address3", a.Address3).
		strIf("city", a.City).
		strIf("state", a.State).
		strIf("postalCode", a.PostalCode).
		strIf("country", a.Country)
	return o.raw(name, in.String())
}

func (o *object) String() string {
	if len(o.fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(o.fields, ", ") + " }"
}

// quote renders s as a GraphQL string literal. JSON string escapes are a
// subset of the GraphQL ones.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
