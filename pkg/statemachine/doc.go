// Package statemachine provides a small table-driven state machine.
//
// A Definition lists the allowed transitions once; each run starts its own
// Machine from the definition and records every state it passes through:
//
//	def := statemachine.MustDefine("received",
//		statemachine.Transition{From: "received", To: "checked"},
//		statemachine.Transition{From: "received", To: "rejected"},
//	)
//	m := def.Start()
//	if err := m.Fire("checked"); err != nil {
//		// transition not in the table
//	}
//	m.History() // [received checked]
//
// States without outgoing transitions are terminal. Firing from a terminal
// state always fails.
package statemachine
