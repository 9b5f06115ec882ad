package model

import "strings"

// RoleAliases maps compact role codes to the canonical role names used by
// the accessibility bus.
var RoleAliases = map[string]string{
	"btn":      "push button",
	"button":   "push button",
	"txt":      "text",
	"lnk":      "link",
	"img":      "image",
	"input":    "entry",
	"chk":      "check box",
	"checkbox": "check box",
	"toggle":   "toggle button",
	"radio":    "radio button",
	"menuitem": "menu item",
	"tab":      "page tab",
	"combo":    "combo box",
	"para":     "paragraph",
	"doc":      "document frame",
	"window":   "frame",
}

// MetaRoles maps meta-role names to the canonical roles they expand to.
var MetaRoles = map[string][]string{
	"interactive": {"entry", "text", "check box", "toggle button", "radio button", "combo box", "push button"},
	"document":    {"document frame", "document web", "document text"},
}

// NormalizeRole converts a role as written in a fixture or reported by the
// bus to its canonical lower-case, space-separated form. It accepts
// "ROLE_TOGGLE_BUTTON", "toggle-button", "Toggle Button" and compact codes
// such as "btn".
func NormalizeRole(role string) string {
	r := strings.TrimSpace(role)
	r = strings.TrimPrefix(r, "ROLE_")
	r = strings.TrimPrefix(r, "pyatspi.ROLE_")
	r = strings.ToLower(r)
	r = strings.NewReplacer("_", " ", "-", " ").Replace(r)
	r = strings.Join(strings.Fields(r), " ")
	if canonical, ok := RoleAliases[r]; ok {
		return canonical
	}
	return r
}

// ExpandRoles normalizes roles and expands any meta-roles. Duplicates are
// removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, raw := range roles {
		r := NormalizeRole(raw)
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if r != "" && !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// RoleMatches reports whether the reported role satisfies want. An empty
// want matches any role.
func RoleMatches(want, reported string) bool {
	if strings.TrimSpace(want) == "" {
		return true
	}
	got := NormalizeRole(reported)
	for _, r := range ExpandRoles([]string{want}) {
		if r == got {
			return true
		}
	}
	return false
}
