// Package yamldocs reads multi-document YAML streams such as definition
// stores and source manifests.
package yamldocs

import (
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Document is a document of a stream that has content.
type Document struct {
	// Index counts the documents with content, from 1.
	Index int

	// Line is the line the document body starts on.
	Line int

	Body ast.Node
}

// Parse returns the documents of data. Empty documents and documents made
// only of comments are dropped.
func Parse(data []byte) ([]Document, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, doc := range file.Docs {
		if isEmpty(doc.Body) {
			continue
		}
		d := Document{Index: len(docs) + 1, Body: doc.Body}
		if tk := doc.Body.GetToken(); tk != nil && tk.Position != nil {
			d.Line = tk.Position.Line
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Decode decodes the document into v.
func (d Document) Decode(v any, opts ...yaml.DecodeOption) error {
	return yaml.NodeToValue(d.Body, v, opts...)
}

func isEmpty(body ast.Node) bool {
	switch body.(type) {
	case nil, *ast.CommentGroupNode, *ast.NullNode:
		return true
	}
	return false
}
