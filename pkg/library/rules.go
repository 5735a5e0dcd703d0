package library

import (
	"strings"

	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

// IsAllowed evaluates the library's rules for p. Rules apply in order and the
// last matching rule decides; without a matching rule the library is allowed.
func IsAllowed(lib model.Library, p platform.Platform) bool {
	allowed := true
	for _, rule := range lib.Rules {
		if ruleMatches(rule, lib.Name, p) {
			allowed = rule.Action == model.RuleAllow
		}
	}
	return allowed
}

func ruleMatches(rule model.Rule, libName string, p platform.Platform) bool {
	if rule.OS == nil {
		return true
	}
	if rule.OS.Arch != "" && platform.NormalizeArch(rule.OS.Arch) != p.Arch {
		return false
	}
	if rule.OS.Name == "" {
		return true
	}
	if rule.OS.Name == p.RuleName() {
		return true
	}
	for _, name := range p.MinecraftOSNames() {
		if rule.OS.Name != name {
			continue
		}
		// Arch-qualified platforms accept plain OS rules only when the rule or
		// the library names their architecture.
		return !p.NeedsArchQualifier() || rule.OS.Arch != "" || strings.Contains(libName, p.MinecraftArch())
	}
	return false
}
