package executor

import "sort"

func sortStates(states []*cmdState) {
	sort.Slice(states, func(i, j int) bool {
		return states[i].node.ID < states[j].node.ID
	})
}
