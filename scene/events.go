package scene

import (
	"unsafe"

	"github.com/akmonengine/bvh/mesh"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	SELF_COLLISION_ENTER
	SELF_COLLISION_STAY
	SELF_COLLISION_EXIT
)

type pairKey struct {
	bodyA *Body
	bodyB *Body
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *Body) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events between two bodies
type CollisionEnterEvent struct {
	BodyA *Body
	BodyB *Body
	Faces []mesh.FacePair
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *Body
	BodyB *Body
	Faces []mesh.FacePair
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *Body
	BodyB *Body
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Self collision events of a single body
type SelfCollisionEnterEvent struct {
	Body  *Body
	Faces []mesh.FacePair
}

func (e SelfCollisionEnterEvent) Type() EventType { return SELF_COLLISION_ENTER }

type SelfCollisionStayEvent struct {
	Body  *Body
	Faces []mesh.FacePair
}

func (e SelfCollisionStayEvent) Type() EventType { return SELF_COLLISION_STAY }

type SelfCollisionExitEvent struct {
	Body *Body
}

func (e SelfCollisionExitEvent) Type() EventType { return SELF_COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey][]mesh.FacePair
	currentActivePairs  map[pairKey][]mesh.FacePair
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey][]mesh.FacePair),
		currentActivePairs:  make(map[pairKey][]mesh.FacePair),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		*e = NewEvents()
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts marks the pairs in contact during the current pass
func (e *Events) recordContacts(contacts []Contact) {
	if e.currentActivePairs == nil {
		*e = NewEvents()
	}
	for _, c := range contacts {
		e.currentActivePairs[makePairKey(c.BodyA, c.BodyB)] = c.Faces
	}
}

// processContactEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processContactEvents() {
	for pair, faces := range e.currentActivePairs {
		isSelf := pair.bodyA == pair.bodyB

		if _, ok := e.previousActivePairs[pair]; ok {
			// Pair was active before and still is, Stay
			if isSelf {
				e.buffer = append(e.buffer, SelfCollisionStayEvent{Body: pair.bodyA, Faces: faces})
			} else {
				e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Faces: faces})
			}
		} else {
			// New pair, Enter
			if isSelf {
				e.buffer = append(e.buffer, SelfCollisionEnterEvent{Body: pair.bodyA, Faces: faces})
			} else {
				e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Faces: faces})
			}
		}
	}

	for pair := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; ok {
			continue
		}
		// Pair was active but is no longer, Exit
		if pair.bodyA == pair.bodyB {
			e.buffer = append(e.buffer, SelfCollisionExitEvent{Body: pair.bodyA})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next pass and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// forget drops the tracked pairs of a removed body, no exit event is sent for them
func (e *Events) forget(body *Body) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
