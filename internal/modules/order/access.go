package order

import "mathtutor/internal/domain"

// Actor is the identity invoking a transition. The zero Actor is the
// system (sweeper, payment callbacks).
type Actor struct {
	ID   int64
	Role domain.UserRole
}

func SystemActor() Actor { return Actor{} }

func (a Actor) IsSystem() bool { return a.ID == 0 }

// LogRole is the role recorded in order logs.
func (a Actor) LogRole() string {
	if a.IsSystem() {
		return "SYSTEM"
	}
	return string(a.Role)
}

// CanPerform reports whether actor may invoke action on o, judging role and
// ownership only. Whether o's status permits the action is checked by Plan.
func CanPerform(actor Actor, action domain.Action, o *domain.Order) bool {
	if o == nil {
		return false
	}
	if actor.IsSystem() {
		return action == domain.ActionExpire || action == domain.ActionConfirm
	}

	ownsAsStudent := actor.Role == domain.RoleStudent && o.StudentID == actor.ID
	ownsAsTeacher := actor.Role == domain.RoleTeacher && o.TeacherID != nil && *o.TeacherID == actor.ID

	switch action {
	case domain.ActionRefund:
		return actor.Role == domain.RoleAdmin
	case domain.ActionExpire:
		return actor.Role == domain.RoleAdmin || ownsAsStudent || ownsAsTeacher
	case domain.ActionAccept:
		if actor.Role != domain.RoleTeacher || !o.IsQuestion() {
			return false
		}
		return o.TeacherID == nil || *o.TeacherID == actor.ID
	case domain.ActionAnswer, domain.ActionNoShow, domain.ActionCancelByTeacher:
		return ownsAsTeacher
	case domain.ActionCancel, domain.ActionCancelByStudent:
		return ownsAsStudent
	case domain.ActionComplete:
		if o.IsBooking() {
			return ownsAsStudent || ownsAsTeacher
		}
		return ownsAsStudent
	}
	return false
}

// CanView reports whether actor may read o and its logs.
func CanView(actor Actor, o *domain.Order) bool {
	switch {
	case actor.IsSystem(), actor.Role == domain.RoleAdmin:
		return true
	case actor.Role == domain.RoleStudent:
		return o.StudentID == actor.ID
	case actor.Role == domain.RoleTeacher:
		if o.TeacherID == nil {
			return o.IsQuestion() && o.Status == domain.StatusPending
		}
		return *o.TeacherID == actor.ID
	}
	return false
}

// CanBan: admins only, never another admin, never themselves.
func CanBan(actor Actor, target *domain.User) bool {
	if target == nil || actor.Role != domain.RoleAdmin {
		return false
	}
	if actor.ID == target.ID {
		return false
	}
	return target.Role != domain.RoleAdmin
}
