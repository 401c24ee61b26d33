package config

import (
	"os"
	"regexp"
	"strings"
)

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// rpcEndpoint is a foundry.toml [rpc_endpoints] value after ${VAR} expansion
type rpcEndpoint struct {
	URL     string
	Vars    []string
	Missing []string
}

// expandEndpoint substitutes ${VAR} references from the environment and
// records which variables were referenced and which are unset. Bare $VAR
// is left alone, matching forge.
func expandEndpoint(raw string) rpcEndpoint {
	var ep rpcEndpoint
	seen := make(map[string]bool)
	ep.URL = envRefPattern.ReplaceAllStringFunc(raw, func(ref string) string {
		name := envRefPattern.FindStringSubmatch(ref)[1]
		value, ok := os.LookupEnv(name)
		if !seen[name] {
			seen[name] = true
			ep.Vars = append(ep.Vars, name)
			if !ok || value == "" {
				ep.Missing = append(ep.Missing, name)
			}
		}
		return value
	})
	ep.URL = strings.TrimSpace(ep.URL)
	return ep
}
