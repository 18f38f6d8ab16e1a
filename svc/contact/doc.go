// Package contact implements the contact-form submission pipeline.
//
// Handler.Handle runs one submission through a fixed sequence of stages:
//
//	received -> rate_limit_checked -> token_verified -> sanitized -> validated -> dispatched
//
// Any stage may end in rejected instead. A rate-limit or token failure ends
// the run immediately and never reveals field detail. Validation always
// evaluates every field and reports all failures together in declaration
// order. Only a fully valid submission reaches the Notifier, and only with
// sanitized values.
//
// A rate-limit slot is consumed as soon as the check admits the request,
// even if the token or the fields are rejected afterwards. Retrying a forged
// or broken request therefore still counts against the client.
package contact
