package backend

import (
	"encoding/json"
	"net/url"
)

// Query is one expression of the backend's query mini-language. Expressions
// are passed through to the document API unmodified.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func Equal(attribute string, value any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: []any{value}}
}

func OrderAsc(attribute string) Query {
	return Query{Method: "orderAsc", Attribute: attribute}
}

func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

// Encode renders the expression in the wire form the document API expects.
func (q Query) Encode() string {
	data, _ := json.Marshal(q)
	return string(data)
}

// encodeQueries builds the queries[] portion of a list request URL.
func encodeQueries(queries []Query) string {
	if len(queries) == 0 {
		return ""
	}
	params := make(url.Values, 1)
	for _, q := range queries {
		params.Add("queries[]", q.Encode())
	}
	return params.Encode()
}
