package favorite

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every exported handler carries the swag block the API docs are built from.
func TestHandlersCarryRouteAnnotations(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "handler.go", nil, parser.ParseComments)
	require.NoError(t, err)

	checked := 0
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || !fn.Name.IsExported() {
			continue
		}
		star, ok := fn.Recv.List[0].Type.(*ast.StarExpr)
		if !ok || star.X.(*ast.Ident).Name != "Handler" {
			continue
		}

		checked++
		require.NotNil(t, fn.Doc, "%s has no doc comment", fn.Name.Name)
		doc := fn.Doc.Text()
		for _, tag := range []string{"@Summary", "@Tags", "@Router"} {
			assert.True(t, strings.Contains(doc, tag), "%s is missing %s", fn.Name.Name, tag)
		}
	}
	assert.Equal(t, 8, checked)
}
