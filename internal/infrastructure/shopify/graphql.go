package shopify

import (
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var operationNames sync.Map

// ParseOperation parses a GraphQL document and returns its single operation
func ParseOperation(query string) (*ast.OperationDefinition, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "admin", Input: query})
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphql document: %w", err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("expected exactly one operation, got %d", len(doc.Operations))
	}
	return doc.Operations[0], nil
}

// MustParseDocuments parses every document and panics when one is malformed or
// its operation name differs from its key.
func MustParseDocuments(docs map[string]string) {
	for name, query := range docs {
		op, err := ParseOperation(query)
		if err != nil {
			panic(fmt.Sprintf("graphql document %s: %v", name, err))
		}
		if op.Name != name {
			panic(fmt.Sprintf("graphql document %s: operation is named %q", name, op.Name))
		}
		operationNames.Store(query, op.Name)
	}
}

// OperationName returns the operation name of a document, for logs and metric labels.
// Results are memoized since workflow documents are constants.
func OperationName(query string) string {
	if name, ok := operationNames.Load(query); ok {
		return name.(string)
	}
	name := "anonymous"
	op, err := ParseOperation(query)
	switch {
	case err != nil:
		name = "invalid"
	case op.Name != "":
		name = op.Name
	}
	operationNames.Store(query, name)
	return name
}
