package domain

import "strings"

// node visit states for the iterative depth-first traversal.
const (
	stateUnvisited = iota
	stateVisiting
	stateVisited
)

// OrderWorkOrders produces a deterministic topological ordering over the
// movable (non-maintenance) subset of the batch: every movable work order
// appears after all movable work orders it transitively depends on, with
// ties broken by input order.
//
// Fixed (maintenance) work orders are never added to the ordering and their
// outgoing edges are not traversed, but they remain valid dependency
// targets. Empty-string dependency entries mean "no dependency" and are
// skipped, as are self-edges (rejected separately as SELF_REF by
// pre-validation).
//
// Graph-structure failures are batch-fatal: DUPLICATE_ID, MISSING_DEPENDENCY
// and CIRCULAR_DEPENDENCY (carrying the cycle path) abort before any
// scheduling is attempted.
func OrderWorkOrders(batch []*WorkOrder) ([]*WorkOrder, error) {
	byID := make(map[string]*WorkOrder, len(batch))
	for _, wo := range batch {
		if _, exists := byID[wo.ID]; exists {
			return nil, NewViolation(CodeDuplicateID, wo.ID, "duplicate work order id %q", wo.ID)
		}
		byID[wo.ID] = wo
	}

	for _, wo := range batch {
		for _, dep := range wo.DependsOn {
			if dep == "" {
				continue
			}
			if _, ok := byID[dep]; !ok {
				return nil, NewViolation(CodeMissingDependency, wo.ID,
					"work order %s depends on %q which is not in the batch", wo.ID, dep)
			}
		}
	}

	state := make(map[string]int, len(batch))
	ordered := make([]*WorkOrder, 0, len(batch))

	// Explicit stack instead of recursion so deep chains cannot exhaust the
	// call stack; the visiting path doubles as the cycle diagnostic.
	type frame struct {
		wo   *WorkOrder
		next int // index of the next dependency edge to follow
	}

	for _, root := range batch {
		if root.IsMaintenance || state[root.ID] != stateUnvisited {
			continue
		}

		stack := []frame{{wo: root}}
		state[root.ID] = stateVisiting

		for len(stack) > 0 {
			top := &stack[len(stack)-1]

			if top.next < len(top.wo.DependsOn) {
				depID := top.wo.DependsOn[top.next]
				top.next++
				if depID == "" || depID == top.wo.ID {
					continue
				}
				dep := byID[depID]
				if dep.IsMaintenance {
					continue
				}
				switch state[depID] {
				case stateVisiting:
					path := make([]string, 0, len(stack)+1)
					for _, f := range stack {
						path = append(path, f.wo.ID)
					}
					return nil, NewViolation(CodeCircularDependency, depID,
						"circular dependency detected in work order chain: %s", cyclePath(path, depID))
				case stateUnvisited:
					state[depID] = stateVisiting
					stack = append(stack, frame{wo: dep})
				}
				continue
			}

			state[top.wo.ID] = stateVisited
			ordered = append(ordered, top.wo)
			stack = stack[:len(stack)-1]
		}
	}

	return ordered, nil
}

// cyclePath renders the offending portion of the visiting path, starting at
// the first occurrence of the repeated node.
func cyclePath(path []string, repeated string) string {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := append([]string{}, path[start:]...)
	cycle = append(cycle, repeated)
	return strings.Join(cycle, " -> ")
}
