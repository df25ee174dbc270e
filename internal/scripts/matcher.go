// Package scripts recognizes operational requests ("delete all available
// openstack volumes") and answers with a canned, safe script template.
// Templates are static text: deterministic, dry-run by default, and never
// carrying credentials or project scope. This is a lookup, not generation.
package scripts

import "strings"

const volumeDeleteScript = "Use this safe script (dry-run by default) to delete all OpenStack volumes in `available` state:\n\n" +
	"```bash\n" +
	"#!/usr/bin/env bash\n" +
	"set -euo pipefail\n\n" +
	"# Usage:\n" +
	"#   ./delete_available_volumes.sh                          # dry-run, lists targets only\n" +
	"#   DRY_RUN=false CONFIRM=yes ./delete_available_volumes.sh\n\n" +
	"DRY_RUN=${DRY_RUN:-true}\n" +
	"CONFIRM=${CONFIRM:-no}\n\n" +
	"mapfile -t volumes < <(openstack volume list -f value -c ID -c Status | awk '$2==\"available\" {print $1}')\n\n" +
	"if [ ${#volumes[@]} -eq 0 ]; then\n" +
	"  echo \"No available volumes found.\"\n" +
	"  exit 0\n" +
	"fi\n\n" +
	"echo \"Found ${#volumes[@]} available volumes:\"\n" +
	"printf '  %s\\n' \"${volumes[@]}\"\n\n" +
	"if [ \"$DRY_RUN\" = \"true\" ]; then\n" +
	"  for vol in \"${volumes[@]}\"; do\n" +
	"    echo \"[DRY-RUN] openstack volume delete $vol\"\n" +
	"  done\n" +
	"  exit 0\n" +
	"fi\n\n" +
	"if [ \"$CONFIRM\" != \"yes\" ]; then\n" +
	"  echo \"Refusing to delete: set CONFIRM=yes to proceed.\"\n" +
	"  exit 1\n" +
	"fi\n\n" +
	"for vol in \"${volumes[@]}\"; do\n" +
	"  echo \"Deleting volume: $vol\"\n" +
	"  openstack volume delete \"$vol\"\n" +
	"done\n" +
	"```\n\n" +
	"Before deleting, confirm tenant/project scope and snapshots/backups."

// template pairs a name with its trigger. Triggers are keyword
// co-occurrence over the lowercased message: every token group must be
// satisfied by at least one of its tokens. New templates are added here as
// data, each with its own tested token set.
type template struct {
	name        string
	tokenGroups [][]string
	script      string
}

var templates = []template{
	{
		name: "volume_delete",
		tokenGroups: [][]string{
			{"openstack", "cinder"},
			{"volume"},
			{"delete", "remove"},
			{"available"},
		},
		script: volumeDeleteScript,
	},
}

// Matcher matches operational-request phrasing against the template registry.
type Matcher struct{}

// NewMatcher creates a template matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns the first template whose token groups all co-occur in the
// message. ok is false when no template matches.
func (m *Matcher) Match(message string) (name, script string, ok bool) {
	text := strings.ToLower(message)

	for _, tmpl := range templates {
		if tmpl.matches(text) {
			return tmpl.name, tmpl.script, true
		}
	}
	return "", "", false
}

func (t *template) matches(text string) bool {
	for _, group := range t.tokenGroups {
		found := false
		for _, token := range group {
			if strings.Contains(text, token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
