// Package email sends transactional HTML email.
//
// PostmarkClient delivers through the Postmark API. DevSender writes each
// message to disk as an .html body plus a .json envelope, for local work
// without credentials. NewSender picks one from Config.
//
// Bodies are produced from templ components with Render. Header-bound values
// (recipient, reply-to, subject) are rejected by Validate when they carry
// CR or LF.
package email
