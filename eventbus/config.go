package eventbus

import (
	"os"
	"strings"
)

// Brokers returns KAFKA_BOOTSTRAP_SERVERS and whether it is set.
func Brokers() (string, bool) {
	v := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS"))
	return v, v != ""
}
