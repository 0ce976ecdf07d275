package main

import (
	"encoding/hex"
	"fmt"
	"os"
)

// loadSharedKey reads a hex-encoded shared key, either a literal hex
// string or a file containing one.
func loadSharedKey(hexOrPath string) ([]byte, error) {
	if key, err := hex.DecodeString(hexOrPath); err == nil {
		return key, nil
	}
	data, err := os.ReadFile(hexOrPath)
	if err != nil {
		return nil, fmt.Errorf("not a valid hex string or keyfile: %s", hexOrPath)
	}
	key, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s does not contain a valid hex key", hexOrPath)
	}
	return key, nil
}
