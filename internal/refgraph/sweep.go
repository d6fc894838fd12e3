package refgraph

import (
	"sort"

	"github.com/common-build/commonopt/internal/emit"
	"github.com/common-build/commonopt/internal/jsscan"
)

// Sweep implements component F end to end: a module-graph pass scoped to
// the bundler registry (when one is present), followed by a binding-graph
// pass over the whole program. Each pass itself runs an inner mark phase
// to a BFS fixed point, then — per §4.F's literal description of the
// algorithm as "rebuild the graph, sweep again, repeat until nothing
// changes" — rebuilds the program from the edited text and repeats until a
// pass removes nothing. For a single static graph one fixed-point BFS
// already computes the full transitive closure, so in practice each phase
// converges in two iterations (one that finds and removes the unreachable
// set, one confirming nothing more is reachable) — but the outer loop is
// kept so the two layers match the spec's description exactly.
func Sweep(text string) (string, error) {
	for {
		prog, err := Build(text)
		if err != nil {
			return "", err
		}
		if prog.Registry == nil {
			break
		}
		removed := sweepModules(prog)
		if len(removed) == 0 {
			break
		}
		edits := make([]emit.Edit, 0, len(removed))
		for _, m := range removed {
			edits = append(edits, emit.Edit{Span: emit.CollapseDropSpan(text, m.Span)})
		}
		next, err := applySorted(text, edits)
		if err != nil {
			return "", err
		}
		text = next
	}

	for {
		prog, err := Build(text)
		if err != nil {
			return "", err
		}
		removed := sweepBindings(prog)
		if len(removed) == 0 {
			break
		}
		edits := make([]emit.Edit, 0, len(removed))
		for _, d := range removed {
			edits = append(edits, emit.Edit{Span: emit.CollapseDropSpan(text, d.DeclSpan)})
		}
		next, err := applySorted(text, edits)
		if err != nil {
			return "", err
		}
		text = next
	}

	return text, nil
}

// applySorted sorts and merges overlapping collapsed-drop spans before
// handing the edit list to emit.Apply, which rejects overlaps outright.
// Adjacent removed declarations can legitimately produce overlapping
// collapsed spans (each claims the blank line between them), and since
// every merged edit's replacement is always "", union-ing the spans is
// exactly equivalent to applying them one at a time.
func applySorted(text string, edits []emit.Edit) (string, error) {
	sort.Slice(edits, func(i, j int) bool { return edits[i].Span.Loc.Start < edits[j].Span.Loc.Start })
	var merged []emit.Edit
	for _, e := range edits {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if e.Span.Loc.Start <= last.Span.End() {
				if end := e.Span.End(); end > last.Span.End() {
					last.Span.Len = end - last.Span.Loc.Start
				}
				continue
			}
		}
		merged = append(merged, e)
	}
	return emit.Apply(text, merged)
}

func sweepModules(prog *Program) []*ModuleRecord {
	reg := prog.Registry
	toks := prog.Toks
	calls := findRequireCalls(toks, 0, len(toks))

	edges := map[string][]string{}
	roots := map[string]bool{}
	for _, c := range calls {
		if _, known := reg.ByName[c.Module]; !known {
			continue
		}
		if enclosing := findEnclosingModule(reg, c.At); enclosing != "" {
			edges[enclosing] = append(edges[enclosing], c.Module)
		} else {
			roots[c.Module] = true
		}
	}

	reachable := bfsNames(roots, edges)
	var removed []*ModuleRecord
	for _, m := range reg.Modules {
		if !reachable[m.Name] {
			removed = append(removed, m)
		}
	}
	return removed
}

func findEnclosingModule(reg *Registry, at int) string {
	for _, m := range reg.Modules {
		if at >= m.BodyStart && at < m.BodyEnd {
			return m.Name
		}
	}
	return ""
}

func bfsNames(roots map[string]bool, edges map[string][]string) map[string]bool {
	visited := map[string]bool{}
	var queue []string
	for r := range roots {
		visited[r] = true
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range edges[cur] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return visited
}

// sweepBindings builds the binding graph over the whole program — one node
// per top-level function/variable declaration — and returns the
// declarations that are neither a root nor reachable from one, i.e. safe to
// delete per §4.F/§7's reachability rule.
func sweepBindings(prog *Program) []TopDecl {
	decls := prog.Decls
	toks := prog.Toks

	nameIndex := map[string][]int{}
	for i, d := range decls {
		if d.Name != "" {
			nameIndex[d.Name] = append(nameIndex[d.Name], i)
		}
	}

	roots := map[int]bool{}
	for i, d := range decls {
		switch d.Kind {
		case DeclOther:
			continue
		}
		if d.Kind == DeclExprStatement || d.Exported || !d.Pure || d.GroupLen > 1 {
			roots[i] = true
		}
		if prog.Registry != nil && i == prog.Registry.DeclIndex {
			roots[i] = true
		}
	}

	edges := map[int][]int{}
	for i, d := range decls {
		if d.Kind == DeclOther {
			continue
		}
		lo, hi := d.BodyStart, d.BodyEnd
		if lo >= hi || hi > len(toks) {
			continue
		}
		seen := map[int]bool{}
		for t := lo; t < hi; t++ {
			tok := toks[t]
			if tok.Kind != jsscan.Ident {
				continue
			}
			for _, j := range nameIndex[tok.Text] {
				if j == i || seen[j] {
					continue
				}
				seen[j] = true
				edges[i] = append(edges[i], j)
			}
		}
	}

	reachable := bfsIdx(roots, edges)
	var removed []TopDecl
	for i, d := range decls {
		if d.Kind != DeclFunction && d.Kind != DeclBinding {
			continue
		}
		if roots[i] || reachable[i] {
			continue
		}
		removed = append(removed, d)
	}
	return removed
}

func bfsIdx(roots map[int]bool, edges map[int][]int) map[int]bool {
	visited := map[int]bool{}
	var queue []int
	for r := range roots {
		visited[r] = true
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range edges[cur] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return visited
}
