package risk

import (
	"github.com/pawcraft/contentguard/pkg/types"
)

const confidenceFloor = 0.1

// Assess derives a risk verdict from a sanitization result. Pure
// function of the violation list; no I/O. Rules in priority order:
// critical severity blocks outright, high severity (or three or more
// violations) blocks under strict policies and flags otherwise, medium
// severity recommends sanitization, and a clean result is allowed.
func Assess(result types.SanitizationResult, strictness types.Strictness) types.RiskAssessment {
	violations := result.SecurityViolations
	if len(violations) == 0 {
		return types.RiskAssessment{
			RiskLevel:         types.RiskLow,
			RecommendedAction: types.ActionAllow,
			Confidence:        1.0,
		}
	}

	conf := confidence(violations)
	maxRank := 0
	for _, v := range violations {
		if r := v.Severity.Rank(); r > maxRank {
			maxRank = r
		}
	}

	switch {
	case maxRank >= types.SeverityCritical.Rank():
		return types.RiskAssessment{
			RiskLevel:         types.RiskCritical,
			RecommendedAction: types.ActionBlock,
			Confidence:        conf,
		}
	case maxRank >= types.SeverityHigh.Rank() || len(violations) >= 3:
		action := types.ActionFlag
		if strictness == types.StrictnessStrict {
			action = types.ActionBlock
		}
		return types.RiskAssessment{
			RiskLevel:         types.RiskHigh,
			RecommendedAction: action,
			Confidence:        conf,
		}
	case maxRank >= types.SeverityMedium.Rank():
		return types.RiskAssessment{
			RiskLevel:         types.RiskMedium,
			RecommendedAction: types.ActionSanitize,
			Confidence:        conf,
		}
	default:
		return types.RiskAssessment{
			RiskLevel:         types.RiskLow,
			RecommendedAction: types.ActionSanitize,
			Confidence:        conf,
		}
	}
}

// confidence scores how certain the verdict is. More detector families
// agreeing on danger raises it; findings that come only from heuristic
// detectors (obfuscation re-runs, DOM-clobbering flagging) lower it,
// since those families are best-effort by design.
func confidence(violations []types.SecurityViolation) float64 {
	families := make(map[types.ViolationKind]bool, len(violations))
	heuristicOnly := true
	for _, v := range violations {
		families[v.Kind] = true
		if !v.Obfuscated && v.Kind != types.ViolationDomClobbering && v.Kind != types.ViolationSuspiciousPattern {
			heuristicOnly = false
		}
	}

	var conf float64
	if heuristicOnly {
		conf = 0.3 + 0.1*float64(len(families))
		if conf > 0.6 {
			conf = 0.6
		}
	} else {
		conf = 0.7 + 0.1*float64(len(families)-1)
		if conf > 1.0 {
			conf = 1.0
		}
	}
	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	return conf
}
