package templates

import "embed"

// Emails holds the transactional email templates. Each template has a base
// (English) .html and .txt file plus optional _<lang> variants.
//
//go:embed emails/*.html emails/*.txt
var Emails embed.FS
