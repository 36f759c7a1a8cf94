package prompt

import (
	"strings"
	"testing"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for _, role := range contractx.Roles {
		if set.Instructions(role, "Phở: 35k") == "" {
			t.Fatalf("missing instructions for role %s", role)
		}
	}
	if set.LanguageRule == "" {
		t.Fatal("language rule must not be empty")
	}
}

func TestInstructionsSubstituteMenu(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	got := set.Instructions(contractx.RoleTakeaway, "  Phở: 35k  ")
	if !strings.Contains(got, "Menu: Phở: 35k") {
		t.Fatalf("menu not substituted: %q", got)
	}
	if strings.Contains(got, "{menu}") {
		t.Fatal("placeholder left in instructions")
	}
	if set.Instructions("kitchen", "x") != "" {
		t.Fatal("unknown role should render empty instructions")
	}
}
