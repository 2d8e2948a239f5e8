package assets

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"regexp"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

var lineBreaks = regexp.MustCompile(`\n+`)

// ModuleMapper resolves a file to the module path it is served under.
type ModuleMapper interface {
	ModulePath(filename string) (string, bool)
}

// ModuleFormulaLoader creates formulae for the files of a resource that map
// to a module path.
type ModuleFormulaLoader struct {
	Mapping ModuleMapper
}

// Load returns the formulae of r keyed by asset name. Files that no longer
// exist or are not mapped are skipped.
func (l *ModuleFormulaLoader) Load(r Resource) (map[string]model.Formula, error) {
	content, err := r.Content()
	if err != nil {
		return nil, err
	}

	formulae := map[string]model.Formula{}
	for _, filename := range lineBreaks.Split(content, -1) {
		if filename == "" {
			continue
		}
		if info, err := os.Stat(filename); err != nil || !info.Mode().IsRegular() {
			continue
		}

		output, ok := l.Mapping.ModulePath(filename)
		if !ok {
			continue
		}

		name := AssetName(filename)
		formulae[name] = model.Formula{Name: name, Input: filename, Output: output}
	}

	return formulae, nil
}

// AssetName returns a short stable name for the asset built from input.
func AssetName(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:7]
}
