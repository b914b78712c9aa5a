package models

import "strings"

// TagSeparator replaces runs of whitespace inside a tag.
const TagSeparator = "-"

// NormalizeTag 는 앞뒤 공백을 자르고 안쪽 공백을 TagSeparator 로 합친다.
// 결과가 비어 있으면 저장하지 않는다.
func NormalizeTag(raw string) string {
	return strings.Join(strings.Fields(raw), TagSeparator)
}

// AddTag 는 raw 를 정규화해 붙인다. 빈 태그와 중복 태그는 무시한다.
// 두 번째 반환값은 목록이 바뀌었는지 여부다.
func AddTag(tags []string, raw string) ([]string, bool) {
	tag := NormalizeTag(raw)
	if tag == "" || containsTag(tags, tag, -1) {
		return tags, false
	}
	return append(tags, tag), true
}

// RenameTag 는 index 위치의 태그를 바꾼다. 빈 값이면 태그를 지우고,
// 다른 태그와 겹치면 목록을 그대로 둔다.
func RenameTag(tags []string, index int, raw string) []string {
	if index < 0 || index >= len(tags) {
		return tags
	}
	tag := NormalizeTag(raw)
	if tag == "" {
		return append(tags[:index:index], tags[index+1:]...)
	}
	if containsTag(tags, tag, index) {
		return tags
	}
	out := cloneStrings(tags)
	out[index] = tag
	return out
}

// RemoveTag drops every occurrence of tag.
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeTags 는 목록 전체에 태그 규칙을 적용한다. 중복은 처음 것만 남긴다.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		out, _ = AddTag(out, raw)
	}
	return out
}

func containsTag(tags []string, tag string, skip int) bool {
	for i, t := range tags {
		if i != skip && t == tag {
			return true
		}
	}
	return false
}
