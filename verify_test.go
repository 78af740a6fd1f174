// Package verify enforces project-level structural invariants that unit
// tests inside each package cannot see:
//   - every package under pkg/ is imported by non-test code
//   - every session store implementation asserts session.Store compliance
//   - every interface with a compliance assertion has a real implementation
//
// Migration checks (TestMigrationTablesHaveConsumers) live in
// pkg/database/migrate because they need the embedded migration FS.
//
// Run: go test -run 'TestNoDeadPackages|TestSessionStoresAsserted|TestNoopOnlyInterfaces' .
package interview_platform_test

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/txn2/interview-platform"

// complianceRe matches `var _ Iface = (*Type)(nil)`.
var complianceRe = regexp.MustCompile(`var\s+_\s+(\S+)\s*=\s*\(\*(\w+)\)\(nil\)`)

// sourceFile is one non-test Go file.
type sourceFile struct {
	path    string // slash-separated, relative to the project root
	dir     string // slash-separated package directory
	content string
}

// loadSources reads every non-test Go file under the given roots.
func loadSources(t *testing.T, roots ...string) []sourceFile {
	t.Helper()
	var files []sourceFile
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			content, err := os.ReadFile(path) //nolint:gosec // test reads source files
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			files = append(files, sourceFile{
				path:    filepath.ToSlash(path),
				dir:     filepath.ToSlash(filepath.Dir(path)),
				content: string(content),
			})
			return nil
		})
		require.NoError(t, err)
	}
	return files
}

// importsOf parses the import block of a Go source file.
func importsOf(t *testing.T, f sourceFile) []string {
	t.Helper()
	parsed, err := parser.ParseFile(token.NewFileSet(), f.path, f.content, parser.ImportsOnly)
	require.NoError(t, err, "parsing imports of %s", f.path)

	paths := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		require.NoError(t, err)
		paths = append(paths, p)
	}
	return paths
}

// TestNoDeadPackages verifies that every package under pkg/ is imported by at
// least one non-test file elsewhere in the module. A package nothing imports
// compiles and passes its own tests but never runs in the server.
func TestNoDeadPackages(t *testing.T) {
	files := loadSources(t, "pkg", "cmd", "internal")
	require.NotEmpty(t, files)

	packages := map[string]bool{}
	for _, f := range files {
		if strings.HasPrefix(f.dir, "pkg/") {
			packages[modulePath+"/"+f.dir] = false
		}
	}
	require.NotEmpty(t, packages)

	for _, f := range files {
		self := modulePath + "/" + f.dir
		for _, imp := range importsOf(t, f) {
			if _, ok := packages[imp]; ok && imp != self {
				packages[imp] = true
			}
		}
	}

	for pkg, imported := range packages {
		assert.True(t, imported,
			"package %q is never imported by non-test code; wire it into the platform or delete it", pkg)
	}
}

// TestSessionStoresAsserted verifies that every Store type declared under
// pkg/session carries a compile-time session.Store compliance assertion, so
// a drifting interface breaks the build instead of the platform wiring.
func TestSessionStoresAsserted(t *testing.T) {
	files := loadSources(t, filepath.Join("pkg", "session"))
	require.NotEmpty(t, files)

	storeTypeRe := regexp.MustCompile(`(?m)^type\s+(\w*Store)\s+struct`)

	declared := map[string]string{}
	asserted := map[string]bool{}
	for _, f := range files {
		for _, m := range storeTypeRe.FindAllStringSubmatch(f.content, -1) {
			declared[f.dir+"."+m[1]] = f.path
		}
		for _, m := range complianceRe.FindAllStringSubmatch(f.content, -1) {
			if m[1] == "Store" || m[1] == "session.Store" {
				asserted[f.dir+"."+m[2]] = true
			}
		}
	}
	require.GreaterOrEqual(t, len(declared), 3, "memory, redis and postgres stores should be found")

	for typ, path := range declared {
		assert.True(t, asserted[typ], "%s declares %s without a session.Store compliance assertion", path, typ)
	}
}

// TestNoopOnlyInterfaces verifies that an interface with a no-op
// implementation also has a real one. A no-op satisfies the compiler, the
// tests and the import gate while the feature does nothing.
func TestNoopOnlyInterfaces(t *testing.T) {
	files := loadSources(t, "pkg")

	byInterface := map[string][]string{}
	for _, f := range files {
		for _, m := range complianceRe.FindAllStringSubmatch(f.content, -1) {
			byInterface[m[1]] = append(byInterface[m[1]], m[2])
		}
	}
	require.NotEmpty(t, byInterface, "should find interface compliance assertions in pkg/")

	for iface, types := range byInterface {
		var noop, real int
		for _, typ := range types {
			if strings.Contains(strings.ToLower(typ), "noop") {
				noop++
			} else {
				real++
			}
		}
		if noop > 0 {
			assert.Positive(t, real, "interface %q has only noop implementations %v", iface, types)
		}
	}
}
