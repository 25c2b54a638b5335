package favicon

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed default.ico
var defaultIcon []byte

// LoadDefaultIcon returns the icon served when nothing else resolves. An
// empty path selects the embedded icon.
func LoadDefaultIcon(path string) ([]byte, error) {
	if path == "" {
		return defaultIcon, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read default icon: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("default icon %s is empty", path)
	}
	return b, nil
}
