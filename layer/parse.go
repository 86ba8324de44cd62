package layer

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parse produces a new snapshot of this layer hierarchy from the document
// bytes supplied by read. The receiver is left untouched. Trees are reused
// incrementally where the range parse policy allows it unless force is set,
// which disables all reuse for this call.
//
// The reader is drained once per call; injection discovery and capture text
// resolution need the full byte slice, and the engine re-derives unaffected
// structure from the previous trees rather than from re-reads.
func (l *Layer) Parse(read ReadCallback, force bool) *Layer {
	return l.parseWithSource(readAll(read), force)
}

// readAll drains the reader from offset zero. The reader contract makes this
// safe: it is idempotent and callable repeatedly in ascending order.
func readAll(read ReadCallback) []byte {
	var buf []byte
	var pos tree_sitter.Point
	for {
		chunk := read(len(buf), pos)
		if len(chunk) == 0 {
			return buf
		}
		for _, b := range chunk {
			if b == '\n' {
				pos.Row++
				pos.Column = 0
			} else {
				pos.Column++
			}
		}
		buf = append(buf, chunk...)
	}
}

func (l *Layer) parseWithSource(src []byte, force bool) *Layer {
	next := &Layer{
		spec:     l.spec,
		grammar:  l.grammar,
		table:    l.table,
		provider: l.provider,
		ranges:   append([]tree_sitter.Range(nil), l.ranges...),
		combined: l.combined,
		children: make(map[string]*Layer),
		resolver: l.resolver,
		logger:   l.logger,
	}

	next.trees = l.parseTrees(src, force)

	// Discovery runs only after this layer's trees are finalized.
	if l.spec.InjectionQuery() != nil {
		l.parseChildren(next, src, force)
	}

	return next
}

// parseTrees applies the range parse policy and produces this layer's tree
// set, handing eligible previous trees to the engine for incremental
// reparse. A nil tree from the engine is omitted, never substituted with a
// placeholder; a shorter-than-expected tree list is partial success.
func (l *Layer) parseTrees(src []byte, force bool) []*tree_sitter.Tree {
	plan := newParsePlan(l.combined, l.ranges, l.trees, force)

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(l.grammar); err != nil {
		l.logger.Warn("setting parser language", "language", l.spec.Name(), "error", err)
		return nil
	}

	var trees []*tree_sitter.Tree
	if plan.oneTree {
		// One logical document across all ranges; no restriction when the
		// range set is empty.
		if len(l.ranges) > 0 {
			parser.SetIncludedRanges(mergeRanges(l.ranges))
		}
		if t := parser.Parse(src, plan.previous(0)); t != nil {
			trees = append(trees, t)
		}
		return trees
	}

	for i, r := range l.ranges {
		parser.SetIncludedRanges([]tree_sitter.Range{r})
		t := parser.Parse(src, plan.previous(i))
		if t == nil {
			continue
		}
		trees = append(trees, t)
	}
	return trees
}

// parseChildren runs injection discovery over next's fresh trees, folds the
// discovered ranges into child layers, and recursively parses them. Sibling
// sub-layers share no state, so they are parsed concurrently.
func (l *Layer) parseChildren(next *Layer, src []byte, force bool) {
	found := discover(next.trees, l.spec.InjectionQuery(), src, nil, l.resolver, l.logger, l.spec.Name())
	if len(found) == 0 {
		return
	}

	// Group by language name, preserving first-seen order, appending each
	// group's ranges in discovery order.
	var order []string
	groups := make(map[string][]tree_sitter.Range)
	for _, nr := range found {
		if _, ok := groups[nr.Language]; !ok {
			order = append(order, nr.Language)
		}
		groups[nr.Language] = append(groups[nr.Language], nr.Range)
	}

	var pending []*Layer
	for _, name := range order {
		child := l.childFor(name)
		if child == nil {
			continue
		}
		child.ranges = groups[name]
		pending = append(pending, child)
	}

	results := make([]*Layer, len(pending))
	var wg sync.WaitGroup
	for i, child := range pending {
		wg.Add(1)
		go func(i int, child *Layer) {
			defer wg.Done()
			results[i] = child.parseWithSource(src, force)
		}(i, child)
	}
	wg.Wait()

	for _, parsed := range results {
		next.children[parsed.spec.Name()] = parsed
	}
}

// childFor returns a provisional child layer for the given language: the
// existing child when the language is already an open sub-layer (carrying
// its previous trees for incremental reuse), otherwise a newly constructed
// empty child. Grammar acquisition happens here; on failure the child is
// dropped silently so one unavailable grammar never aborts the enclosing
// layer or sibling injections.
func (l *Layer) childFor(name string) *Layer {
	if prev, ok := l.children[name]; ok {
		child := &Layer{
			spec:     prev.spec,
			grammar:  prev.grammar,
			table:    l.table,
			provider: l.provider,
			combined: prev.combined,
			trees:    prev.trees,
			children: prev.children,
			resolver: l.resolver,
			logger:   l.logger,
		}
		if inj, ok := l.table[name]; ok && inj.Combined {
			child.combined = true
		}
		return child
	}

	inj, ok := l.table[name]
	if !ok || inj.Spec == nil {
		l.logger.Debug("injection language not in table", "language", name, "parent", l.spec.Name())
		return nil
	}
	grammar, err := l.provider.Grammar(name)
	if err != nil {
		l.logger.Warn("grammar unavailable for injection", "language", name, "parent", l.spec.Name(), "error", err)
		return nil
	}

	return &Layer{
		spec:     inj.Spec,
		grammar:  grammar,
		table:    l.table,
		provider: l.provider,
		combined: inj.Combined,
		children: make(map[string]*Layer),
		resolver: l.resolver,
		logger:   l.logger,
	}
}
