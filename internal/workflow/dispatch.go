package workflow

import (
	"context"

	"semcheck/internal/domain"
)

// PrimaryAction runs the action for the selected mode.
func (o *Orchestrator) PrimaryAction() Call {
	if o.state.Mode == domain.ModeCheck {
		return o.CheckAction()
	}
	return o.CompareAction()
}

// CompareAction scores slot 1 against slot 2. It returns nil when the lock
// is held or when either slot is blank; in the latter case the error state
// is set instead.
func (o *Orchestrator) CompareAction() Call {
	if o.Busy() {
		return nil
	}
	text1 := o.state.Slots[domain.Slot1].Content
	text2 := o.state.Slots[domain.Slot2].Content
	if domain.Blank(text1) || domain.Blank(text2) {
		o.fail(&ValidationError{Message: MsgBothTextsRequired})
		return nil
	}

	gw := o.gateway
	base := Settlement{Generation: o.begin(domain.OpChecking), Op: domain.OpChecking, Mode: domain.ModeCompare}
	return guard(base, func(ctx context.Context) Settlement {
		s := base
		res, err := gw.Compare(ctx, text1, text2)
		if err != nil {
			s.Err = err
			return s
		}
		s.Result = res
		return s
	})
}

// CheckAction scores slot 1 against the service corpus. The service's
// ranking and top-5 cut are kept as returned.
func (o *Orchestrator) CheckAction() Call {
	if o.Busy() {
		return nil
	}
	text := o.state.Slots[domain.Slot1].Content
	if domain.Blank(text) {
		o.fail(&ValidationError{Message: MsgTextRequired})
		return nil
	}

	gw := o.gateway
	base := Settlement{Generation: o.begin(domain.OpChecking), Op: domain.OpChecking, Mode: domain.ModeCheck}
	return guard(base, func(ctx context.Context) Settlement {
		s := base
		res, err := gw.Check(ctx, text)
		if err != nil {
			s.Err = err
			return s
		}
		s.Result = res
		return s
	})
}
