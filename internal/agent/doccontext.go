package agent

// DocContext accumulates distinct doc-ids across rounds: an ordered
// list capped at MaxCtxDocs, a permanent 1-based display index per
// doc-id assigned once on first appearance, and the running best-known
// RRF and similarity score per doc-id (updated every round a doc
// reappears, even once the list itself is capped).
type DocContext struct {
	order   []int
	index   map[int]int
	rrf     map[int]float64
	sim     map[int]float64
	hasSim  map[int]bool
}

// NewDocContext returns an empty accumulating doc context.
func NewDocContext() *DocContext {
	return &DocContext{
		index: make(map[int]int),
		rrf:   make(map[int]float64),
		sim:   make(map[int]float64),
		hasSim: make(map[int]bool),
	}
}

// Merge folds one round's final reranked doc-ids into the context,
// using rrfScores/simScores (this round's fused-score maps) to update
// or seed each doc's running scores. Docs already present keep their
// display index and have scores updated with this round's value when
// present (falling back to the previous value otherwise, matching the
// reference implementation's `.get(doc_id, previous)` semantics). New
// docs are appended and assigned the next display index, unless the
// context is already at MaxCtxDocs — those are dropped without being
// recorded: they get no display index and no stored score, and a later
// round that returns them again drops them the same way, so the list
// never grows past the cap.
func (c *DocContext) Merge(docIDs []int, rrfScores, simScores map[int]float64) {
	for _, id := range docIDs {
		if _, seen := c.index[id]; seen {
			if v, ok := rrfScores[id]; ok {
				c.rrf[id] = v
			}
			if v, ok := simScores[id]; ok {
				c.sim[id] = v
				c.hasSim[id] = true
			}
			continue
		}
		if len(c.order) >= MaxCtxDocs {
			continue
		}
		c.order = append(c.order, id)
		c.index[id] = len(c.order)
		if v, ok := rrfScores[id]; ok {
			c.rrf[id] = v
		}
		if v, ok := simScores[id]; ok {
			c.sim[id] = v
			c.hasSim[id] = true
		}
	}
}

// Order returns the accumulated doc-ids in stable append order.
func (c *DocContext) Order() []int {
	out := make([]int, len(c.order))
	copy(out, c.order)
	return out
}

// DisplayIndex returns the permanent 1-based citation index for id.
func (c *DocContext) DisplayIndex(id int) (int, bool) {
	v, ok := c.index[id]
	return v, ok
}

// RRFScore returns the last known RRF score for id.
func (c *DocContext) RRFScore(id int) (float64, bool) {
	v, ok := c.rrf[id]
	return v, ok
}

// SimScore returns the last known similarity score for id.
func (c *DocContext) SimScore(id int) (float64, bool) {
	if !c.hasSim[id] {
		return 0, false
	}
	return c.sim[id], true
}

// Len reports how many distinct docs have been accumulated.
func (c *DocContext) Len() int {
	return len(c.order)
}
