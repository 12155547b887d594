package utils

import (
	"strings"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

// NormalizeEmail 去空格 + 小写
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
