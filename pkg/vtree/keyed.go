package vtree

// reconcileKeyed diffs one flattened sibling list in which at least one
// child on either side carries a key. Keyed children match by key,
// unkeyed children pair up positionally among themselves. Matched pairs
// are patched in place; survivors that ended up out of order are
// relocated with move patches, of which a longest increasing
// subsequence over the surviving old indices keeps the maximal set
// still in relative order untouched.
//
// Emission order: content patches for matched pairs at their old
// positions, removals from the highest old index down, then moves and
// insertions right to left with paths computed against the tree state
// the preceding patches produce.
func reconcileKeyed[NS, TAG, ATT, VAL, LEAF comparable](
	oldKids, newKids []*Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
	patches *[]Patch[NS, TAG, ATT, VAL, LEAF],
) {
	// tokens[j] is the old index matched to new position j, or -1 for
	// a node with no counterpart in the old list.
	tokens := matchChildren(oldKids, newKids)

	matchedOld := make([]bool, len(oldKids))
	newOf := make(map[int]int, len(newKids))
	for j, t := range tokens {
		if t >= 0 {
			matchedOld[t] = true
			newOf[t] = j
		}
	}

	// Content patches against the untouched old positions.
	for i := range oldKids {
		if matchedOld[i] {
			diffNodes(oldKids[i], newKids[newOf[i]], path.Traverse(i), patches)
		}
	}

	// Removals, highest index first.
	for i := len(oldKids) - 1; i >= 0; i-- {
		if !matchedOld[i] {
			*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
				Op:   OpRemoveNode,
				Path: path.Traverse(i),
			})
		}
	}

	// cur simulates the sibling list after the removals: the surviving
	// old indices in their original relative order. Fresh nodes enter
	// it under synthetic tokens past the old index range.
	var cur []int
	for i := range oldKids {
		if matchedOld[i] {
			cur = append(cur, i)
		}
	}
	freshToken := func(j int) int { return len(oldKids) + j }
	tokenAt := func(j int) int {
		if tokens[j] >= 0 {
			return tokens[j]
		}
		return freshToken(j)
	}

	// Survivors whose old indices already appear in increasing order
	// across the new list stay put; everything else moves around them.
	inLIS := make([]bool, len(newKids))
	var survivors, survivorPos []int
	for j, t := range tokens {
		if t >= 0 {
			survivors = append(survivors, t)
			survivorPos = append(survivorPos, j)
		}
	}
	for _, k := range longestIncreasing(survivors) {
		inLIS[survivorPos[k]] = true
	}

	for j := len(newKids) - 1; j >= 0; j-- {
		if tokens[j] >= 0 && inLIS[j] {
			continue
		}
		if tokens[j] < 0 {
			// No old counterpart: insert a fresh node.
			if j == len(newKids)-1 {
				if len(cur) == 0 {
					*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
						Op:    OpAppendChildren,
						Path:  path,
						Nodes: []*Node[NS, TAG, ATT, VAL, LEAF]{newKids[j]},
					})
				} else {
					*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
						Op:    OpInsertAfterNode,
						Path:  path.Traverse(len(cur) - 1),
						Nodes: []*Node[NS, TAG, ATT, VAL, LEAF]{newKids[j]},
					})
				}
				cur = append(cur, freshToken(j))
				continue
			}
			ai := tokenIndex(cur, tokenAt(j+1))
			*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
				Op:    OpInsertBeforeNode,
				Path:  path.Traverse(ai),
				Nodes: []*Node[NS, TAG, ATT, VAL, LEAF]{newKids[j]},
			})
			cur = insertToken(cur, ai, freshToken(j))
			continue
		}

		// Survivor out of relative order: move it next to its right
		// neighbour in the new list.
		ci := tokenIndex(cur, tokens[j])
		if j == len(newKids)-1 {
			if ci == len(cur)-1 {
				continue
			}
			*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
				Op:        OpMoveAfterNode,
				Path:      path.Traverse(len(cur) - 1),
				MovePaths: []TreePath{path.Traverse(ci)},
			})
			tok := cur[ci]
			cur = removeToken(cur, ci)
			cur = append(cur, tok)
			continue
		}
		ai := tokenIndex(cur, tokenAt(j+1))
		if ci == ai-1 {
			continue
		}
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:        OpMoveBeforeNode,
			Path:      path.Traverse(ai),
			MovePaths: []TreePath{path.Traverse(ci)},
		})
		tok := cur[ci]
		cur = removeToken(cur, ci)
		if ci < ai {
			ai--
		}
		cur = insertToken(cur, ai, tok)
	}
}

// matchChildren pairs new children with old children: keyed children
// match the first unconsumed old child carrying the same key, unkeyed
// children pair positionally among the unkeyed of each side.
func matchChildren[NS, TAG, ATT, VAL, LEAF comparable](
	oldKids, newKids []*Node[NS, TAG, ATT, VAL, LEAF],
) []int {
	usedOld := make([]bool, len(oldKids))
	keyIndex := make(map[VAL][]int)
	var oldUnkeyed []int
	for i, k := range oldKids {
		if k.HasKey {
			keyIndex[k.Key] = append(keyIndex[k.Key], i)
		} else {
			oldUnkeyed = append(oldUnkeyed, i)
		}
	}

	tokens := make([]int, len(newKids))
	nextUnkeyed := 0
	for j, k := range newKids {
		tokens[j] = -1
		if k.HasKey {
			for _, i := range keyIndex[k.Key] {
				if !usedOld[i] {
					tokens[j] = i
					usedOld[i] = true
					break
				}
			}
			continue
		}
		if nextUnkeyed < len(oldUnkeyed) {
			tokens[j] = oldUnkeyed[nextUnkeyed]
			usedOld[oldUnkeyed[nextUnkeyed]] = true
			nextUnkeyed++
		}
	}
	return tokens
}

func tokenIndex(cur []int, tok int) int {
	for i, t := range cur {
		if t == tok {
			return i
		}
	}
	return -1
}

func insertToken(cur []int, at, tok int) []int {
	cur = append(cur, 0)
	copy(cur[at+1:], cur[at:])
	cur[at] = tok
	return cur
}

func removeToken(cur []int, at int) []int {
	return append(cur[:at], cur[at+1:]...)
}
