package config

import (
	"slices"
	"strconv"
	"strings"
)

// IntList is a flag.Value holding a comma-separated list of integers.
type IntList []int

// String implements flag.Value.
func (l *IntList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Set implements flag.Value. It replaces the current content.
func (l *IntList) Set(s string) error {
	var values []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	*l = values
	return nil
}

// Normalized returns a sorted copy without duplicates.
func (l IntList) Normalized() []int {
	out := slices.Clone(l)
	slices.Sort(out)
	return slices.Compact(out)
}
