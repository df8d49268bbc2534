package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// rule forbids packages under From from importing anything under any of
// Forbidden.
type rule struct {
	From      string
	Forbidden []string
}

const module = "trackroute/"

var corePackages = []string{
	module + "internal/track",
	module + "internal/world",
	module + "internal/follow",
	module + "internal/pathfind",
}

var outerPackages = []string{
	module + "logging",
	module + "internal/telemetry",
	module + "internal/routing",
	module + "internal/net",
	module + "internal/app",
	module + "cmd",
}

var defaultRules = func() []rule {
	var rules []rule
	for _, core := range corePackages {
		rules = append(rules, rule{From: core, Forbidden: outerPackages})
	}
	rules = append(rules, rule{From: module + "internal/net", Forbidden: []string{module + "internal/app", module + "cmd"}})
	return rules
}()

func underPath(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+"/")
}

// check decodes a stream of `go list -json` records and returns every
// import that breaks a rule, sorted.
func check(r io.Reader, rules []rule) ([]string, error) {
	decoder := json.NewDecoder(r)

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "failed to decode package info")
		}

		for _, rl := range rules {
			if !underPath(pkg.ImportPath, rl.From) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, forbidden := range rl.Forbidden {
					if underPath(imp, forbidden) {
						violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}

	sort.Strings(violations)
	return violations, nil
}
