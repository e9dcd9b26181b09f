package classify

import (
	"strings"
	"testing"

	"github.com/ppiankov/finfact/internal/model"
)

func TestBuildPolicyPrompt(t *testing.T) {
	catalog := model.NewCatalog()
	prompt := BuildPolicyPrompt(catalog)

	// Every catalog key must be offered to the oracle
	for _, spec := range catalog.Specs() {
		if !strings.Contains(prompt, `"`+string(spec.Key)+`"`) {
			t.Errorf("prompt missing key %q", spec.Key)
		}
	}

	if !strings.Contains(prompt, `"unknown"`) {
		t.Error("prompt missing the unknown escape hatch")
	}
	if !strings.Contains(prompt, "TIME CHECK") {
		t.Error("prompt missing the temporal priority rule")
	}
	if !strings.Contains(prompt, "RETURN ONLY THE KEY NAME") {
		t.Error("prompt missing the single-key instruction")
	}
}
