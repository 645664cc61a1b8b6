package skematree

// Check walks the tree depth-first in iteration order and reports:
// repaired type mismatches, constraint and enum failures, unresolved
// references, undeclared input keys and duplicate dynamic-key ids.
// Re-validation updates each node's error state.
func Check(root Node) Issues {
	var out Issues
	check(root, Root(), &out)
	return out
}

func check(n Node, at PathRef, out *Issues) {
	b := n.base()
	if b.repairedFrom != nil {
		*out = AppendIssues(*out, at.Issue(CodeInvalidType, nil, "expected", n.Type(), "got", *b.repairedFrom))
	}
	if n.IsPlaceholder() {
		*out = AppendIssues(*out, at.Issue(CodeUnresolvedReference, nil, "needs", n.Deferred().Needs().Name()))
	}
	if len(b.constraints) > 0 && !n.Validate(currentValue(n)) {
		*out = AppendIssues(*out, constraintIssue(at.Pointer(), n.Err()))
	}

	switch c := n.(type) {
	case *FixedKey:
		for _, k := range c.extra {
			*out = AppendIssues(*out, at.Field(k).Issue(CodeUnknownKey, nil, "key", k))
		}
		c.Each(func(key string, child Node) { check(child, at.Field(key), out) })
	case *DynamicKey:
		for _, id := range c.duplicates() {
			*out = AppendIssues(*out, at.Field(id).Issue(CodeDuplicateID, nil, "id", id))
		}
		for i, child := range c.Children() {
			check(child, at.Field(c.items[i].id), out)
		}
	case *Sequence:
		c.Each(func(i int, child Node) { check(child, at.Index(i), out) })
	}
}
