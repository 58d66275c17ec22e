// Package tags builds the tag set attached to every droplet.
//
// Default tags identify the machine and where it was bootstrapped from.
// Caller supplied tags are merged over the defaults, and the result is
// rendered as DigitalOcean "key:value" tag strings.
package tags
