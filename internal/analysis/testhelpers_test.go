package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// analyzeWith runs v over src and fails the test on any error.
func analyzeWith(t *testing.T, v Visitor, src string) *CodeFeatures {
	t.Helper()

	tree, features, err := v.ParseAndAnalyze([]byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	require.NotNil(t, features)
	return features
}

func functionNames(features *CodeFeatures) []string {
	names := make([]string, 0, len(features.Functions))
	for _, fn := range features.Functions {
		names = append(names, fn.Name)
	}
	return names
}

func findFunction(t *testing.T, features *CodeFeatures, name string) FunctionInfo {
	t.Helper()

	for _, fn := range features.Functions {
		if fn.Name == name {
			return fn
		}
	}
	require.Failf(t, "function not found", "no function named %q in %v", name, functionNames(features))
	return FunctionInfo{}
}
