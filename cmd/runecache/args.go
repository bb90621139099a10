package main

import (
	"fmt"
	"strconv"
)

func parseIndexID(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid index id %q: %w", s, err)
	}
	return uint8(v), nil
}

func parseArchiveID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid archive id %q: %w", s, err)
	}
	return uint32(v), nil
}
