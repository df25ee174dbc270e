package scripts

import (
	"strings"
	"testing"
)

func TestMatchVolumeDelete(t *testing.T) {
	m := NewMatcher()

	name, script, ok := m.Match("delete all openstack volumes in available state")
	if !ok {
		t.Fatal("Expected the volume_delete template to match")
	}
	if name != "volume_delete" {
		t.Errorf("Expected template name volume_delete, got %q", name)
	}
	if !strings.Contains(script, "DRY_RUN=${DRY_RUN:-true}") {
		t.Error("Script must default to dry-run")
	}
	if !strings.Contains(script, "CONFIRM") {
		t.Error("Script must require an explicit confirmation flag")
	}
	if !strings.Contains(script, "Found ${#volumes[@]} available volumes") {
		t.Error("Script must list affected volumes before deleting")
	}
}

func TestMatchVolumeDeleteVariants(t *testing.T) {
	m := NewMatcher()

	for _, msg := range []string{
		"remove available OpenStack volumes please",
		"Delete every cinder volume that is available",
	} {
		if _, _, ok := m.Match(msg); !ok {
			t.Errorf("Expected %q to trigger volume_delete", msg)
		}
	}
}

func TestMatchRequiresAllTokenGroups(t *testing.T) {
	m := NewMatcher()

	// Each message is missing one token group: state, action, domain.
	for _, msg := range []string{
		"delete openstack volumes",
		"openstack volume stuck in available",
		"delete all available kubernetes pods",
		"pod stuck in termination",
	} {
		if name, _, ok := m.Match(msg); ok {
			t.Errorf("Expected %q not to match, got template %q", msg, name)
		}
	}
}

func TestScriptHasNoUnconditionalDelete(t *testing.T) {
	_, script, ok := NewMatcher().Match("delete available openstack volumes")
	if !ok {
		t.Fatal("Expected a match")
	}

	// Every real delete must sit behind both the dry-run gate and the
	// confirmation gate.
	if !strings.Contains(script, `if [ "$CONFIRM" != "yes" ]`) {
		t.Error("Delete path must be gated on CONFIRM=yes")
	}
	if strings.Contains(script, "project_id") || strings.Contains(script, "OS_PASSWORD") {
		t.Error("Script must not embed credentials or project scope")
	}
}
