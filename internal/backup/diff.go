package backup

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffFiles renders a unified diff between two backup files after
// re-encoding both, so formatting differences don't show up as changes.
// Returns "" when the documents are equivalent.
func DiffFiles(aPath, bPath string) (string, error) {
	a, err := loadEncoded(aPath)
	if err != nil {
		return "", err
	}
	b, err := loadEncoded(bPath)
	if err != nil {
		return "", err
	}

	if a == b {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: aPath,
		ToFile:   bPath,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func loadEncoded(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	encoded, err := Encode(doc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return string(encoded), nil
}
