package models

import (
	"fmt"
	"strings"
)

type ListType string

const (
	ListWhitelist ListType = "whitelist"
	ListBlacklist ListType = "blacklist"
	ListTrusted   ListType = "trusted"
)

func ParseListType(s string) (ListType, error) {
	switch lt := ListType(strings.ToLower(strings.TrimSpace(s))); lt {
	case ListWhitelist, ListBlacklist, ListTrusted:
		return lt, nil
	}
	return "", fmt.Errorf("unknown list %q: %w", s, ErrMalformedConfig)
}
