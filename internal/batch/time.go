package batch

import "time"

// int64ToTime converts a wire ReplyResult.MTime (Unix nanoseconds) back
// into a time.Time.
func int64ToTime(unixNano int64) time.Time {
	return time.Unix(0, unixNano)
}
