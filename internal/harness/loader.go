package harness

import (
	"os"
	"path/filepath"
	"testing"

	yaml "gopkg.in/yaml.v3"

	"github.com/stretchr/testify/require"
)

// LoadTestCase loads the expected.yaml of a case directory. Dir is recorded
// relative to root.
func LoadTestCase(t *testing.T, dir, root string) *TestCase {
	t.Helper()
	yamlPath := filepath.Join(dir, "expected.yaml")

	tc := &TestCase{}
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	err = yaml.Unmarshal(data, tc)
	require.NoError(t, err)

	relPath, err := filepath.Rel(root, dir)
	if err != nil {
		tc.Dir = filepath.Base(dir)
	} else {
		tc.Dir = relPath
	}
	return tc
}
