// Package backupsdk imports wallet backups, both the native multi-record
// format and the password protected exports of the legacy wallet, into a
// wallet store.
package backupsdk

// Version is set at build time.
var Version string
