// SPDX-License-Identifier: MIT

package httpx

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

// Page fetches must go through NewClient so every request carries the
// fetch timeout and a client span. These net/http members bypass it.
var bypassMembers = []string{"DefaultClient", "Get", "Head", "Post", "PostForm"}

// clientViolations reports net/http usages in file that bypass NewClient.
// The import may be renamed. A literal http.Client is allowed only in
// package httpx.
func clientViolations(fset *token.FileSet, file *ast.File) []string {
	local := ""
	for _, imp := range file.Imports {
		if path, _ := strconv.Unquote(imp.Path.Value); path == "net/http" {
			local = "http"
			if imp.Name != nil {
				local = imp.Name.Name
			}
		}
	}
	if local == "" || local == "_" {
		return nil
	}

	var found []string
	isHTTP := func(sel *ast.SelectorExpr) bool {
		ident, ok := sel.X.(*ast.Ident)
		return ok && ident.Name == local
	}
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if isHTTP(n) && slices.Contains(bypassMembers, n.Sel.Name) {
				found = append(found, fset.Position(n.Pos()).String()+": "+local+"."+n.Sel.Name)
			}
		case *ast.CompositeLit:
			sel, ok := n.Type.(*ast.SelectorExpr)
			if ok && isHTTP(sel) && sel.Sel.Name == "Client" && file.Name.Name != "httpx" {
				found = append(found, fset.Position(n.Pos()).String()+": "+local+".Client literal")
			}
		}
		return true
	})
	return found
}

func TestClientViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "plain get",
			src:  `package fetch; import "net/http"; func f() { http.Get("https://example.com") }`,
			want: 1,
		},
		{
			name: "renamed import",
			src:  `package fetch; import nethttp "net/http"; var c = nethttp.DefaultClient`,
			want: 1,
		},
		{
			name: "client literal outside httpx",
			src:  `package fetch; import "net/http"; var c = &http.Client{}`,
			want: 1,
		},
		{
			name: "client literal inside httpx",
			src:  `package httpx; import "net/http"; var c = &http.Client{}`,
			want: 0,
		},
		{
			name: "request building is fine",
			src:  `package fetch; import "net/http"; func f() { http.NewRequest(http.MethodGet, "/", nil) }`,
			want: 0,
		},
		{
			name: "unrelated http identifier",
			src:  `package fetch; type x struct{ Get int }; var http x; var _ = http.Get`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fset := token.NewFileSet()
			file, err := parser.ParseFile(fset, "src.go", tt.src, 0)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := clientViolations(fset, file); len(got) != tt.want {
				t.Errorf("violations = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestOutboundRequestsUseNewClient(t *testing.T) {
	repoRoot := filepath.Join("..", "..", "..")
	fset := token.NewFileSet()
	var violations []string

	for _, dir := range []string{"internal", "cmd"} {
		root := filepath.Join(repoRoot, dir)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
			if err != nil {
				return err
			}
			violations = append(violations, clientViolations(fset, file)...)
			return nil
		})
		if err != nil {
			t.Fatalf("scan %s: %v", root, err)
		}
	}

	if len(violations) > 0 {
		slices.Sort(violations)
		t.Fatalf("outbound HTTP must use httpx.NewClient:\n%s", strings.Join(violations, "\n"))
	}
}
