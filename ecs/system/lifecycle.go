package system

import (
	"math"

	"github.com/milk9111/fracture2d/common"
	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
)

// LifecycleSystem drives every piece's state machine: the arm delay, the
// lifetime countdown, the blink-warning phase, and collision-triggered
// destruction. Two destruction pathways race per piece; the first to fire
// wins and the loser is a no-op.
type LifecycleSystem struct {
	dt float64
}

func NewLifecycleSystem() *LifecycleSystem {
	return &LifecycleSystem{dt: common.FrameDt}
}

func (ls *LifecycleSystem) Update(w *ecs.World) {
	if ls == nil || w == nil {
		return
	}

	contacts := make(map[ecs.Entity][]ecs.PieceContactEvent)
	for _, evt := range w.Events().Items() {
		if c, ok := evt.Data.(ecs.PieceContactEvent); ok {
			contacts[c.Piece] = append(contacts[c.Piece], c)
		}
	}

	for _, e := range w.Query(component.PieceComponent.Kind()) {
		piece, ok := ecs.Get(w, e, component.PieceComponent)
		if !ok || piece.State == component.PieceDestroyed {
			continue
		}

		if piece.State == component.PieceSpawned {
			piece.State = component.PieceArming
		}
		piece.Age += ls.dt

		if piece.State == component.PieceArming && piece.Age >= piece.ArmDelay {
			piece.State = component.PieceArmed
		}

		// Collision pathway. Suppressed while arming, and always
		// suppressed for contacts within the piece's own group.
		enteredBlink := false
		if piece.State == component.PieceArmed && piece.DestroyOnCollision {
			if hasForeignContact(contacts[e], piece.Group) {
				if piece.UseBlink {
					piece.State = component.PieceBlinking
					piece.BlinkLeft = piece.BlinkDuration
					enteredBlink = true
				} else {
					ls.destroy(w, e, &piece)
					continue
				}
			}
		}

		// Lifetime pathway.
		if piece.State == component.PieceArmed && piece.DestroyPieces {
			if piece.UseBlink && piece.Age >= piece.Lifetime-piece.BlinkDuration {
				piece.State = component.PieceBlinking
				piece.BlinkLeft = piece.Lifetime - piece.Age
				enteredBlink = true
			} else if piece.Age >= piece.Lifetime {
				ls.destroy(w, e, &piece)
				continue
			}
		}

		if piece.State == component.PieceBlinking {
			// The countdown starts on the tick after entry so the blink
			// phase lasts its full duration and lifetime destruction
			// lands exactly at Age == Lifetime.
			if !enteredBlink {
				piece.BlinkLeft -= ls.dt
			}
			ls.applyBlink(w, e, piece)
			if piece.BlinkLeft <= 0 {
				ls.destroy(w, e, &piece)
				continue
			}
		}

		_ = ecs.Add(w, e, component.PieceComponent, piece)
	}
}

func hasForeignContact(contacts []ecs.PieceContactEvent, group uint64) bool {
	for _, c := range contacts {
		if c.OtherGroup != group {
			return true
		}
	}
	return false
}

// applyBlink toggles sprite visibility at BlinkFrequency cycles per
// second.
func (ls *LifecycleSystem) applyBlink(w *ecs.World, e ecs.Entity, piece component.Piece) {
	sprite, ok := ecs.Get(w, e, component.SpriteComponent)
	if !ok {
		return
	}
	freq := piece.BlinkFrequency
	if freq <= 0 {
		freq = 1
	}
	sprite.Hidden = int(math.Floor(piece.Age*freq*2))%2 == 1
	_ = ecs.Add(w, e, component.SpriteComponent, sprite)
}

// destroy is the single terminal transition. It is idempotent: a piece
// already destroyed by the other pathway is left alone by the caller's
// state check, and the entity disappears from queries immediately.
func (ls *LifecycleSystem) destroy(w *ecs.World, e ecs.Entity, piece *component.Piece) {
	if piece.State == component.PieceDestroyed {
		return
	}
	piece.State = component.PieceDestroyed
	_ = ecs.Add(w, e, component.PieceComponent, *piece)

	if groupEntity, group, ok := findGroup(w, piece.Group); ok {
		if group.Live > 0 {
			group.Live--
			_ = ecs.Add(w, groupEntity, component.FractureGroupComponent, group)
		}
		if group.OnPieceDestroyed != nil {
			group.OnPieceDestroyed()
		}
	}

	w.Events().Push(ecs.Event{Type: ecs.EventPieceDestroyed, Data: ecs.PieceDestroyedEvent{
		Piece: e,
		Group: piece.Group,
	}})
	w.DestroyEntity(e)
}

func findGroup(w *ecs.World, group uint64) (ecs.Entity, component.FractureGroup, bool) {
	for _, e := range w.Query(component.FractureGroupComponent.Kind()) {
		g, ok := ecs.Get(w, e, component.FractureGroupComponent)
		if ok && g.Group == group {
			return e, g, true
		}
	}
	return 0, component.FractureGroup{}, false
}
