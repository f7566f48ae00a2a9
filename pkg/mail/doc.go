// Package mail delivers transactional email through Postmark, with a
// file-based sender for development. Transaction composes confirmation links
// whose token carries a signed payload, so the confirmation endpoint can
// trust what comes back without any server-side state.
package mail
