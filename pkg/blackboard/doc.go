/*
Package blackboard provides the process-wide typed registry used to publish
shared objects between the kernel and the plugins.

Entries are posted once, during the BlackboardPost phase, and retrieved
afterwards. The kernel locks the blackboard as soon as that phase completes,
so a late Put fails loudly instead of racing with running plugins.

	bb := blackboard.New()
	_ = blackboard.Put(bb, blackboard.KeyStateContext, sc)

	var got *domain.StateContext
	if _, err := blackboard.Get(bb, blackboard.KeyStateContext, &got, true); err != nil {
		return err // wiring bug
	}
*/
package blackboard
