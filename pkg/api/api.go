// Package api is the public surface of the macro preprocessor core: the
// two entry points an outer host binding calls, named per §6 of the
// design ("names are conventional" — Optimize and OptimizationInfo follow
// the teacher's exported-Go-function convention for what other bindings
// expose as snake_case).
package api

import (
	"encoding/json"

	"github.com/common-build/commonopt/internal/condexpr"
	"github.com/common-build/commonopt/internal/configval"
	"github.com/common-build/commonopt/internal/fastpath"
	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/logger"
	"github.com/common-build/commonopt/internal/macro"
	"github.com/common-build/commonopt/internal/planner"
	"github.com/common-build/commonopt/internal/refgraph"
)

// Optimize resolves every `@common:if`/`@common:define-inline` macro in
// source against config (a JSON object) and removes code left unreachable
// by the resolution, returning the rewritten source. A config parse
// failure, an unbalanced macro region, or a substitution that would merge
// two adjacent tokens all surface as a *logger.Error.
func Optimize(source string, configJSON string) (string, error) {
	cfg, err := configval.Parse(configJSON)
	if err != nil {
		return "", logger.NewError(logger.KindParse, 0, "invalid config JSON: "+err.Error())
	}

	if fastpath.Eligible(source, cfg) {
		return source, nil
	}

	toks, err := jsscan.Scan(source)
	if err != nil {
		return "", err
	}
	transformed, err := planner.Transform(source, toks, cfg)
	if err != nil {
		return "", err
	}
	return refgraph.Sweep(transformed)
}

// Info is the decoded shape of OptimizationInfo's JSON result.
type Info struct {
	FastPathUsed      bool     `json:"fast_path_used"`
	Recommendations   []string `json:"recommendations"`
	EnabledCount      int      `json:"enabled_count"`
	TotalConfigValues int      `json:"total_config_values"`
	AllEnabled        bool     `json:"all_enabled"`
	ShouldOptimize    bool     `json:"should_optimize"`
}

// OptimizationInfo reports, without performing the transform, whether the
// fast path would activate for (source, configJSON) and a short set of
// human-readable recommendations a caller can use to decide whether
// running Optimize is worth it at all.
func OptimizationInfo(source string, configJSON string) (string, error) {
	cfg, err := configval.Parse(configJSON)
	if err != nil {
		return "", logger.NewError(logger.KindParse, 0, "invalid config JSON: "+err.Error())
	}

	leaves := configval.Flatten(cfg)
	enabled := 0
	for _, l := range leaves {
		if l.Truthy() {
			enabled++
		}
	}
	allEnabled := fastpath.AllTruthy(cfg)
	fastPathUsed := fastpath.Eligible(source, cfg)

	info := Info{
		FastPathUsed:      fastPathUsed,
		Recommendations:   recommendations(source, cfg, fastPathUsed, allEnabled),
		EnabledCount:      enabled,
		TotalConfigValues: len(leaves),
		AllEnabled:        allEnabled,
		ShouldOptimize:    !fastPathUsed,
	}

	b, err := json.Marshal(info)
	if err != nil {
		return "", logger.NewError(logger.KindEmit, 0, "failed to encode optimization info: "+err.Error())
	}
	return string(b), nil
}

func recommendations(source string, cfg *configval.Value, fastPathUsed, allEnabled bool) []string {
	recs := []string{}
	if fastPathUsed {
		recs = append(recs, "fast path active: source will be returned unchanged")
		return recs
	}
	if allEnabled {
		recs = append(recs, "every config leaf is truthy, but inline-define markers are present; fast path is disabled until they are resolved")
	}

	toks, err := jsscan.Scan(source)
	if err != nil {
		recs = append(recs, "source failed to scan; Optimize will report the same error")
		return recs
	}
	regions, err := macro.Parse(source, toks)
	if err == nil {
		ifCount, defineCount, unknownCount := 0, 0, 0
		var walk func([]*macro.Region)
		walk = func(rs []*macro.Region) {
			for _, r := range rs {
				switch r.Kind {
				case macro.IfBlock:
					ifCount++
					cond, _ := r.Attrs.Get("condition")
					if condexpr.EvalString(cond, cfg) == condexpr.Unknown {
						unknownCount++
					}
				case macro.InlineDefine:
					defineCount++
				}
				walk(r.Children)
			}
		}
		walk(regions)
		if ifCount > 0 {
			recs = append(recs, "source contains guarded regions whose reachability depends on config; running Optimize may shrink it")
		}
		if defineCount > 0 {
			recs = append(recs, "source contains inline-define markers that Optimize would resolve")
		}
		if unknownCount > 0 {
			recs = append(recs, "some conditions cannot be resolved against this config and will be conservatively kept")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "no macro regions detected; Optimize is a no-op for this source")
	}
	return recs
}
