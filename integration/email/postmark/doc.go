// Package postmark implements the email.EmailSender interface on Postmark's
// transactional API, used for password reset messages.
package postmark
