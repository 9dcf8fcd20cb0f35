//go:build ignore
// +build ignore

/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// verify-admission-imports validates that files under pkg/worker/admission
// only import the allowed utility packages from within this module (or
// external dependencies). The admission core must stay transport-free: no
// file in it may import the server package, internal/, or anything else
// that would couple admission decisions to HTTP.
//
// Run from the repository root: go run hack/verify-admission-imports.go
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

const (
	admissionPath = "./pkg/worker/admission"
	repoModule    = "github.com/Hiroki-org/network-sandbox"
)

// allowedPaths are the module-internal packages the admission core is
// permitted to import. Everything else in the module is off limits.
var allowedPaths = []string{
	"pkg/worker/admission", // the core itself
	"pkg/common/observability/logging",
	"pkg/worker/metrics",
	"pkg/worker/util/env",
}

var additionalAllowed []string

func init() {
	pflag.StringSliceVar(&additionalAllowed, "allow", []string{}, "Additional allowed import paths (can be specified multiple times)")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type violation struct {
	filePath   string
	importPath string
}

func (v violation) String() string {
	return fmt.Sprintf("%s: imports %s", v.filePath, v.importPath)
}

func run() error {
	allowed := append([]string{}, allowedPaths...)
	allowed = append(allowed, additionalAllowed...)

	fmt.Printf("Validating imports in %s\n", admissionPath)
	fmt.Printf("Allowed module-internal paths: %v\n", allowed)
	fmt.Println()

	violations := []violation{}
	err := filepath.Walk(admissionPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.HasPrefix(importPath, repoModule) {
				continue // external dependencies are always allowed
			}
			relImportPath := strings.TrimPrefix(importPath, repoModule+"/")

			ok := false
			for _, basePath := range allowed {
				if strings.HasPrefix(relImportPath, basePath) {
					ok = true
					break
				}
			}
			if !ok {
				violations = append(violations, violation{filePath: path, importPath: relImportPath})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	if len(violations) > 0 {
		fmt.Printf("[ERROR] Found %d import violations:\n", len(violations))
		for _, v := range violations {
			fmt.Println("  " + v.String())
		}
		return fmt.Errorf("import validation failed: %d violations found", len(violations))
	}

	fmt.Printf("[PASS] All imports in %s are valid!\n", admissionPath)
	return nil
}
