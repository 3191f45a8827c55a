// Package diag carries the diagnostics produced while compiling or
// decompiling script bodies. Every codec, flatten and structure call reports
// into a Bag owned by that call, so parallel invocations never share state.
package diag
