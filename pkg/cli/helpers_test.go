package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const slDescriptor = `package: com.example.sl
types:
  - name: SLLanguage
    modifiers: [public]
    extends: com.oracle.truffle.api.TruffleLanguage
    registration:
      id: sl
      name: SL
      implementation_name: Simple Language
      version: "0.30"
      mime_types: [application/x-sl]
      interactive: true
`

const jsDescriptor = `package = "com.example.js"

type "JSLanguage" {
  modifiers = ["public"]
  extends   = "com.oracle.truffle.api.TruffleLanguage"

  registration {
    id                  = "js"
    name                = "JavaScript"
    version             = "1.0"
    dependent_languages = ["sl"]
  }
}
`

const hiddenDescriptor = `package: com.example.bad
types:
  - name: Hidden
    extends: com.oracle.truffle.api.TruffleLanguage
    registration:
      id: hidden
      name: Hidden
`

const expectedDescriptor = `package: com.example.bad
types:
  - name: Hidden
    extends: com.oracle.truffle.api.TruffleLanguage
    expect_errors: ["Registered language class must be public"]
    registration:
      id: hidden
      name: Hidden
`

// writeFile writes content to dir/name, creating parent directories
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
