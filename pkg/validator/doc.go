// Package validator provides a small rule engine for form fields.
//
// A Rule pairs a check with the ValidationError reported when it fails.
// Apply evaluates every rule and accumulates all failures; First stops at the
// first failing rule, which is how a single field reports one reason while a
// form still reports every field.
//
//	err := validator.Apply(
//		validator.Required("name", name),
//		validator.MinLen("name", name, 2),
//		validator.ValidEmail("email", email),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		for _, e := range verrs {
//			fmt.Println(e.Field, e.Reason)
//		}
//	}
//
// Email and phone checks are syntactic only. No DNS or mailbox lookups.
package validator
