package validation

// MaxBodySize bounds JSON request bodies (64 KB).
const MaxBodySize = 64 * 1024
