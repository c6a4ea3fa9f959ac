// Package whatsapp sends notifications through an Evolution API gateway.
// Messages are best-effort: callers log delivery failures and move on.
package whatsapp
