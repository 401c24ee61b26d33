package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ResolutionMethod records how a step-kind token was mapped
type ResolutionMethod string

const (
	ResolvedExact    ResolutionMethod = "exact"
	ResolvedAlias    ResolutionMethod = "alias"
	ResolvedFuzzy    ResolutionMethod = "fuzzy"
	ResolvedFallback ResolutionMethod = "fallback"
)

// Resolution is the outcome of canonicalizing one step-kind token
type Resolution struct {
	Token      string           `json:"token"`
	Kind       StepKind         `json:"kind"`
	Method     ResolutionMethod `json:"method"`
	Candidates []StepKind       `json:"candidates,omitempty"`
	Hint       string           `json:"hint,omitempty"`
}

// Exact reports whether the token already was a canonical kind
func (r Resolution) Exact() bool {
	return r.Method == ResolvedExact
}

// Message describes a non-exact resolution for diagnostics
func (r Resolution) Message() string {
	switch r.Method {
	case ResolvedAlias:
		return fmt.Sprintf("step type %q treated as %q", r.Token, r.Kind)
	case ResolvedFuzzy:
		return fmt.Sprintf("unknown step type %q matched to %q", r.Token, r.Kind)
	case ResolvedFallback:
		msg := fmt.Sprintf("unknown step type %q, falling back to %q", r.Token, r.Kind)
		if r.Hint != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", r.Hint)
		}
		return msg
	}
	return ""
}

// stepAliases maps informal step names to canonical kinds.
var stepAliases = map[string]StepKind{
	"action":           StepSend,
	"transaction":      StepSend,
	"invoke":           StepSend,
	"execute":          StepSend,
	"send_transaction": StepSend,

	"query":         StepCall,
	"read":          StepCall,
	"call_function": StepCall,

	"check":            StepAssert,
	"verify":           StepAssert,
	"expect":           StepAssert,
	"assert_condition": StepAssert,

	"sleep":       StepWait,
	"pause":       StepWait,
	"delay":       StepWait,
	"wait_blocks": StepWait,

	"jump":                StepTimeTravel,
	"advance":             StepTimeTravel,
	"time_travel_forward": StepTimeTravel,

	"save":            StepSnapshot,
	"create_snapshot": StepSnapshot,

	"restore":            StepRevert,
	"rollback":           StepRevert,
	"revert_to_snapshot": StepRevert,

	"create":          StepDeploy,
	"instantiate":     StepDeploy,
	"deploy_contract": StepDeploy,

	"comment": StepLabel,
	"note":    StepLabel,
	"log":     StepLabel,
	"print":   StepLabel,

	"mine_blocks":          StepMine,
	"set_account_balance":  StepSetBalance,
	"set_contract_storage": StepSetStorage,
}

// minReverseMatch is the shortest token accepted as a substring of a kind.
const minReverseMatch = 3

// Canonicalize maps a free-form step token to a supported kind. It never
// fails; unknown tokens resolve to StepAction.
func Canonicalize(token string) Resolution {
	normalized := normalizeToken(token)
	res := Resolution{Token: token}

	if kind := StepKind(normalized); kind.IsValid() && kind != StepAction {
		res.Kind, res.Method = kind, ResolvedExact
		return res
	}
	if kind, ok := stepAliases[normalized]; ok {
		res.Kind, res.Method = kind, ResolvedAlias
		return res
	}

	if candidates := fuzzyCandidates(normalized); len(candidates) > 0 {
		res.Kind, res.Method, res.Candidates = candidates[0], ResolvedFuzzy, candidates
		return res
	}

	res.Kind, res.Method = StepAction, ResolvedFallback
	if normalized != "" {
		names := make([]string, 0, len(StepKinds))
		for _, k := range StepKinds {
			names = append(names, string(k))
		}
		if matches := fuzzy.Find(normalized, names); len(matches) > 0 {
			res.Hint = matches[0].Str
		}
	}
	return res
}

// IsStepKindToken reports whether token is a canonical kind or a known alias.
func IsStepKindToken(token string) bool {
	normalized := normalizeToken(token)
	if normalized == "" {
		return false
	}
	if StepKind(normalized).IsValid() {
		return true
	}
	_, ok := stepAliases[normalized]
	return ok
}

func normalizeToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "-", "_")
	return strings.Join(strings.Fields(t), "_")
}

// fuzzyCandidates returns matching kinds ordered best first: kinds that are
// substrings of the token, then the rest, each group longest first.
func fuzzyCandidates(token string) []StepKind {
	if token == "" {
		return nil
	}
	words := strings.Split(token, "_")

	type candidate struct {
		kind     StepKind
		inToken  bool
		position int
	}
	var found []candidate
	for i, kind := range StepKinds {
		if kind == StepAction {
			continue
		}
		k := string(kind)
		inToken := strings.Contains(token, k)
		match := inToken ||
			(len(token) >= minReverseMatch && strings.Contains(k, token))
		if !match {
			for _, w := range words {
				if w == k {
					match = true
					break
				}
			}
		}
		if match {
			found = append(found, candidate{kind: kind, inToken: inToken, position: i})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.inToken != b.inToken {
			return a.inToken
		}
		if len(a.kind) != len(b.kind) {
			return len(a.kind) > len(b.kind)
		}
		return a.position < b.position
	})

	kinds := make([]StepKind, len(found))
	for i, c := range found {
		kinds[i] = c.kind
	}
	return kinds
}
