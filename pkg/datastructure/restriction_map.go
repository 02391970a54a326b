package datastructure

type turnKey struct {
	from, via Index
}

/*
RestrictionMap. turn restrictions with a via node.

only restriction: coming from `from` through `via`, the only allowed continuation is `to`.
no restriction: the turn from -> via -> to is forbidden.
entries may point to nodes that are no longer reachable, callers have to verify them.
*/
type RestrictionMap struct {
	only      map[turnKey]Index
	forbidden map[turnKey]map[Index]struct{}
}

func NewRestrictionMap() *RestrictionMap {
	return &RestrictionMap{
		only:      make(map[turnKey]Index),
		forbidden: make(map[turnKey]map[Index]struct{}),
	}
}

func (rm *RestrictionMap) AddOnly(from, via, to Index) {
	rm.only[turnKey{from, via}] = to
}

func (rm *RestrictionMap) AddNo(from, via, to Index) {
	key := turnKey{from, via}
	if _, ok := rm.forbidden[key]; !ok {
		rm.forbidden[key] = make(map[Index]struct{})
	}
	rm.forbidden[key][to] = struct{}{}
}

// CheckForEmanatingIsOnlyTurn. the destination of an only restriction (from, via), if any
func (rm *RestrictionMap) CheckForEmanatingIsOnlyTurn(from, via Index) (Index, bool) {
	to, ok := rm.only[turnKey{from, via}]
	return to, ok
}

func (rm *RestrictionMap) CheckIfTurnIsRestricted(from, via, to Index) bool {
	if onlyTo, ok := rm.only[turnKey{from, via}]; ok && onlyTo != to {
		return true
	}
	_, ok := rm.forbidden[turnKey{from, via}][to]
	return ok
}

func (rm *RestrictionMap) NumberOfRestrictions() int {
	count := len(rm.only)
	for _, tos := range rm.forbidden {
		count += len(tos)
	}
	return count
}

// ForEachOnly / ForEachNo are used by the graph writer.
func (rm *RestrictionMap) ForEachOnly(handle func(from, via, to Index)) {
	for key, to := range rm.only {
		handle(key.from, key.via, to)
	}
}

func (rm *RestrictionMap) ForEachNo(handle func(from, via, to Index)) {
	for key, tos := range rm.forbidden {
		for to := range tos {
			handle(key.from, key.via, to)
		}
	}
}
