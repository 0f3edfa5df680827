package ecs

import "strconv"

// Entity is a generational handle: the low 32 bits are the slot id, the
// high 32 bits the generation. A stale handle (slot reused) never matches
// a live entity.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e Entity) Valid() bool {
	return e.id() != 0
}

// entityStore tracks slot generations and recycled ids.
type entityStore struct {
	gens []generation // index 0 unused so id 0 stays invalid
	free []entityID
}

func (s *entityStore) create() Entity {
	if len(s.gens) == 0 {
		s.gens = append(s.gens, 0)
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gens = append(s.gens, 0)
		id = entityID(len(s.gens) - 1)
	}
	return makeEntity(id, s.gens[id])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gens[id]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) >= len(s.gens) {
		return false
	}
	return s.gens[id] == e.generation()
}

func (s *entityStore) entityAt(id entityID) (Entity, bool) {
	if id == 0 || int(id) >= len(s.gens) {
		return 0, false
	}
	return makeEntity(id, s.gens[id]), true
}
