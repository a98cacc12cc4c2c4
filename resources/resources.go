// Package resources embeds the mail templates into the binary.
package resources

import "embed"

//go:embed mail/*.html
var Mail embed.FS

// MailPattern selects every template in Mail.
const MailPattern = "mail/*.html"
