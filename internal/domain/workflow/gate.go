package workflow

// AllowedActions returns the set of actions the actor may take on a document
// in the given status. It is a pure function of (status, role, isOwner):
// rendering the same document twice always yields the same set, and anything
// outside the set fails Transition with a permission or state error.
func (d Definition) AllowedActions(current Status, actor Actor) []Action {
	st, ok := d.stages[current]
	if !ok {
		return nil
	}

	var actions []Action
	if current == StatusDraft && st.ownerActs && actor.IsOwner {
		// Drafts are still private to the owner: full edit rights, hard delete
		// allowed, and the explicit submit that enters the approval chain.
		actions = append(actions, ActionEdit, ActionDelete, ActionSubmit)
		return actions
	}

	if st.ownerActs {
		if actor.IsOwner {
			actions = append(actions, ActionSubmit)
		}
	} else if actor.Role == st.owner && !actor.IsOwner {
		actions = append(actions, st.advance)
		if st.rejectTo != "" {
			actions = append(actions, ActionReject)
		}
	}

	if st.cancelable && actor.IsOwner {
		actions = append(actions, ActionCancel)
	}

	return actions
}

// PayloadWritable reports whether the actor may mutate the payload owned by
// stageStatus while the document currently sits in current. Once the chain
// advances past a stage its payload freezes for everyone.
func (d Definition) PayloadWritable(current, stageStatus Status, actor Actor) bool {
	if current != stageStatus {
		return false
	}
	st, ok := d.stages[stageStatus]
	if !ok {
		return false
	}
	if st.ownerActs {
		return actor.IsOwner
	}
	return actor.Role == st.owner && !actor.IsOwner
}
