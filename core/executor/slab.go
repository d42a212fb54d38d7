package executor

type slotState uint8

const (
	slotVacant slotState = iota
	slotPresent
	slotCheckedOut
)

type slot[T any] struct {
	value T
	state slotState
}

// slab is an index-stable table of values with a free list.
type slab[T any] struct {
	slots []slot[T]
	free  []int
	count int
}

func (s *slab[T]) insert(v T) int {
	s.count++
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[id] = slot[T]{value: v, state: slotPresent}
		return id
	}
	s.slots = append(s.slots, slot[T]{value: v, state: slotPresent})
	return len(s.slots) - 1
}

// take checks the value out of its slot. The slot stays reserved until put or
// remove is called.
func (s *slab[T]) take(id int) (T, slotState) {
	var zero T
	if id < 0 || id >= len(s.slots) {
		return zero, slotVacant
	}
	sl := &s.slots[id]
	if sl.state != slotPresent {
		return zero, sl.state
	}
	v := sl.value
	sl.value = zero
	sl.state = slotCheckedOut
	return v, slotPresent
}

func (s *slab[T]) put(id int, v T) {
	s.slots[id] = slot[T]{value: v, state: slotPresent}
}

func (s *slab[T]) remove(id int) {
	if id < 0 || id >= len(s.slots) || s.slots[id].state == slotVacant {
		return
	}
	s.slots[id] = slot[T]{}
	s.free = append(s.free, id)
	s.count--
}

// reset empties the slab and returns the values that were not checked out.
func (s *slab[T]) reset() []T {
	var values []T
	for _, sl := range s.slots {
		if sl.state == slotPresent {
			values = append(values, sl.value)
		}
	}
	s.slots = nil
	s.free = nil
	s.count = 0
	return values
}

func (s *slab[T]) len() int {
	return s.count
}
