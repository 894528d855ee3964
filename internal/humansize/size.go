// Package humansize formats byte counts for logs and CLI output, adapted
// from the teacher's _examples/TheEntropyCollective-noisefs/pkg/util/size.go.
package humansize

import "fmt"

// Format renders n bytes as a human-readable string (e.g. "8.0 KB").
func Format(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
