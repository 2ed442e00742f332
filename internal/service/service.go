// Package service holds the club's business rules. Every operation runs
// inside one repository.Store transaction (or read view) and reports rule
// violations as *Error values.
package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint64
	Role   string
}

func (id Identity) IsOwner() bool  { return id.Role == model.RoleOwner }
func (id Identity) IsCoach() bool  { return id.Role == model.RoleCoach }
func (id Identity) IsParent() bool { return id.Role == model.RoleParent }

// IsStaff reports whether the caller is the owner or a coach.
func (id Identity) IsStaff() bool { return id.IsOwner() || id.IsCoach() }

// owns reports whether the caller is the parent of m.
func (id Identity) owns(m model.Member) bool { return m.ParentID == id.UserID }

// EventPublisher delivers domain events. *queue.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Clock supplies the current instant; "today" is derived from it in the
// club's location.
type Clock func() time.Time

// Deps are shared by all services.
type Deps struct {
	Store    repository.Store
	Events   EventPublisher // nil drops events
	Now      Clock          // nil means time.Now
	Location *time.Location // nil means UTC
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// today is the current calendar day in the club's location.
func (d Deps) today() model.Date {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(d.now().In(loc))
}

// publish sends an event after a successful commit. Failures are logged and
// never reach the caller.
func (d Deps) publish(ctx context.Context, typ string, actor uint64, payload any) {
	if d.Events == nil {
		return
	}
	ev, err := queue.NewEvent(typ, actor, payload)
	if err != nil {
		log.Printf("events: build %s: %v", typ, err)
		return
	}
	// detach from request cancellation but keep a bound
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := d.Events.Publish(pctx, ev); err != nil {
		log.Printf("events: publish %s: %v", typ, err)
	}
}

func mustDeps(d Deps, name string) Deps {
	if d.Store == nil {
		panic("nil store passed to " + name)
	}
	return d
}
