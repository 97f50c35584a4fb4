// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package synccheck

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"
)

// forbiddenImports are packages the inference engine must never pull
// in. The engine loads a finished artifact; anything from the
// training side means train-only math leaked across the boundary.
var forbiddenImports = []string{
	"github.com/verdantlabs/ecoscore/internal/training",
	"math/rand",
}

// forbiddenIdents are identifier fragments that only appear in
// training code. Matching is case-insensitive on the whole word.
var forbiddenIdents = []string{
	"backward",
	"gradient",
	"dropout",
	"adam",
	"learningrate",
	"optimizer",
	"epoch",
}

// ScanInferenceSource parses every Go file in dir (the inference
// package) and reports training-only imports or identifiers found
// there. Test files are skipped: tests may reference training code to
// build fixtures.
func ScanInferenceSource(r *Report, dir string) error {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, 0)
	if err != nil {
		return fmt.Errorf("parse inference package: %w", err)
	}

	var offenders []string
	for _, pkg := range pkgs {
		for path, file := range pkg.Files {
			if strings.HasSuffix(path, "_test.go") {
				continue
			}
			offenders = append(offenders, scanFile(fset, file)...)
		}
	}
	sort.Strings(offenders)

	if len(offenders) > 0 {
		r.add("inference_source_clean", false,
			fmt.Sprintf("training constructs in inference source: %s", strings.Join(offenders, "; ")))
		return nil
	}
	r.add("inference_source_clean", true, "no training imports or identifiers in inference source")
	return nil
}

func scanFile(fset *token.FileSet, file *ast.File) []string {
	var found []string

	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		for _, bad := range forbiddenImports {
			if path == bad {
				found = append(found, fmt.Sprintf("%s imports %s", fset.Position(imp.Pos()), path))
			}
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		lower := strings.ToLower(id.Name)
		for _, bad := range forbiddenIdents {
			if strings.Contains(lower, bad) {
				found = append(found, fmt.Sprintf("%s identifier %q", fset.Position(id.Pos()), id.Name))
				break
			}
		}
		return true
	})
	return found
}
