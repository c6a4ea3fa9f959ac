// Package drive uploads generated certificate files to Google Drive using
// its plain HTTP API with OAuth refresh token credentials.
package drive
