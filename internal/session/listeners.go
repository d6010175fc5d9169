package session

// InputKind classifies host events forwarded to the session.
type InputKind int

const (
	InputResize InputKind = iota
	InputPointerDown
	InputKeyDown
)

func (k InputKind) String() string {
	switch k {
	case InputResize:
		return "resize"
	case InputPointerDown:
		return "pointerdown"
	case InputKeyDown:
		return "keydown"
	}
	return "unknown"
}

// Input is a host event. Width and Height are set for resize events.
type Input struct {
	Kind          InputKind
	Width, Height int
}

type listener struct {
	id int
	fn func(Input)
}

// registry keeps listeners per event kind. Listeners may remove themselves while
// being dispatched.
type registry struct {
	nextID int
	byKind map[InputKind][]listener
}

func newRegistry() *registry {
	return &registry{byKind: make(map[InputKind][]listener)}
}

func (r *registry) add(kind InputKind, fn func(Input)) int {
	r.nextID++
	r.byKind[kind] = append(r.byKind[kind], listener{id: r.nextID, fn: fn})
	return r.nextID
}

func (r *registry) remove(kind InputKind, id int) {
	ls := r.byKind[kind]
	for i, l := range ls {
		if l.id == id {
			r.byKind[kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (r *registry) dispatch(in Input) {
	ls := append([]listener(nil), r.byKind[in.Kind]...)
	for _, l := range ls {
		l.fn(in)
	}
}

func (r *registry) count() int {
	n := 0
	for _, ls := range r.byKind {
		n += len(ls)
	}
	return n
}

func (r *registry) clear() {
	r.byKind = make(map[InputKind][]listener)
}
