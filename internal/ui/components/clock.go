package components

import "fmt"

// Clock renders seconds as HH:MM:SS. Negative input renders as 00:00:00.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
