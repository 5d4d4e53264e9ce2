package backend

import "encoding/json"

// Query is a single list-query instruction, serialized on the wire as a
// JSON object with method, attribute and values.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals the value.
func Equal(attribute string, value any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: []any{value}}
}

// Search matches documents whose attribute contains the term.
func Search(attribute, term string) Query {
	return Query{Method: "search", Attribute: attribute, Values: []any{term}}
}

// OrderAsc sorts results ascending by the attribute.
func OrderAsc(attribute string) Query {
	return Query{Method: "orderAsc", Attribute: attribute}
}

// OrderDesc sorts results descending by the attribute.
func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

// Limit caps the number of documents returned.
func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

// CursorAfter resumes a listing after the document with the given id.
func CursorAfter(documentID string) Query {
	return Query{Method: "cursorAfter", Values: []any{documentID}}
}

// Encode renders the query as its wire form.
func (q Query) Encode() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
