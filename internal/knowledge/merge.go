package knowledge

import "strings"

// placeholders are values that carry no information and may be replaced by
// any real value on merge.
var placeholders = map[string]struct{}{
	"нет информации":         {},
	"информация отсутствует": {},
	"неизвестно":             {},
	"не определено":          {},
	"no information":         {},
	"unknown":                {},
	"n/a":                    {},
	"-":                      {},
}

// IsPlaceholder reports whether s is empty or a known "no information" value.
func IsPlaceholder(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	s = strings.TrimRight(s, ".!")
	_, ok := placeholders[s]
	return ok
}

func fillString(dst *string, src string) bool {
	if !IsPlaceholder(*dst) || IsPlaceholder(src) {
		return false
	}
	*dst = strings.TrimSpace(src)
	return true
}

func fillList(dst *[]string, src []string) bool {
	if len(*dst) > 0 {
		return false
	}
	var out []string
	for _, s := range src {
		if !IsPlaceholder(s) {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return false
	}
	*dst = out
	return true
}

// unionList appends values of src not already in dst, compared case-insensitively.
func unionList(dst *[]string, src []string) bool {
	seen := make(map[string]struct{}, len(*dst))
	for _, s := range *dst {
		seen[NameKey(s)] = struct{}{}
	}
	changed := false
	for _, s := range src {
		k := NameKey(s)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		*dst = append(*dst, strings.TrimSpace(s))
		changed = true
	}
	return changed
}

func raiseConfidence(dst *Confidence, src Confidence) bool {
	if src.rank() > dst.rank() {
		*dst = src
		return true
	}
	return false
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
