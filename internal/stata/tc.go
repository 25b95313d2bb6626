// Package stata isolates the one dependency the rest of the engine has on a
// statistical tool's timestamp epoch (spec §9): Stata's %tc format, milliseconds
// since 1960-01-01 00:00:00 UTC. Nothing outside this package knows the constant.
package stata

// epochOffsetSeconds is the number of seconds from the Stata %tc epoch
// (1960-01-01 00:00:00 UTC) to the Unix epoch (1970-01-01 00:00:00 UTC).
const epochOffsetSeconds = 315619200

// EncodeTC converts Unix seconds to a Stata %tc value (milliseconds since 1960-01-01 UTC).
func EncodeTC(unixSeconds int64) int64 {
	return (unixSeconds + epochOffsetSeconds) * 1000
}

// DecodeTC converts a Stata %tc value back to Unix seconds.
func DecodeTC(tcMillis int64) int64 {
	return tcMillis/1000 - epochOffsetSeconds
}
