package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/listsync/internal/services"
)

// extractor reads one candidate field from a list handle or task. ok is false when the value does not
// carry the field at all.
type extractor func(v any) (value any, ok bool)

func fromKey(key string) extractor {
	return func(v any) (any, bool) {
		return lookup(v, key)
	}
}

// fromMethod adapts a method expression such as services.Titled.Title.
func fromMethod[T, R any](get func(T) R) extractor {
	return func(v any) (any, bool) {
		t, ok := v.(T)
		if !ok {
			return nil, false
		}
		return get(t), true
	}
}

var (
	titleFields = []extractor{
		fromKey("title"),
		fromKey("name"),
		fromMethod(services.Titled.Title),
		fromMethod(services.Named.Name),
	}

	listIDFields = []extractor{
		fromKey("id"),
		fromKey("guid"),
		fromKey("pGuid"),
		fromKey("list_id"),
		fromMethod(services.Identified.ID),
		fromMethod(services.GUIDed.GUID),
		fromMethod(services.ParentGUIDed.ParentGUID),
		fromMethod(services.ListScoped.ListID),
	}

	taskListFields = []extractor{
		fromKey("list_id"),
		fromKey("pGuid"),
		fromKey("parentGuid"),
		fromKey("listId"),
		fromMethod(services.ListScoped.ListID),
		fromMethod(services.ParentGUIDed.ParentGUID),
	}

	completedFields = []extractor{
		fromKey("completed"),
		fromKey("isCompleted"),
		fromMethod(services.Completable.IsCompleted),
	}
)

// taskSource produces the tasks of a list handle. present is false when the handle has no such accessor.
type taskSource func(ctx context.Context, list any) (tasks any, present bool, err error)

func sourceKey(key string) taskSource {
	return func(_ context.Context, list any) (any, bool, error) {
		v, ok := lookup(list, key)
		return v, ok, nil
	}
}

func sourceMethod[T any](call func(T, context.Context) (any, error)) taskSource {
	return func(ctx context.Context, list any) (any, bool, error) {
		t, ok := list.(T)
		if !ok {
			return nil, false, nil
		}
		tasks, err := call(t, ctx)
		return tasks, true, err
	}
}

var listTaskSources = []taskSource{
	sourceKey("tasks"),
	sourceMethod(services.TaskLister.Tasks),
	sourceKey("open"),
	sourceMethod(services.OpenLister.Open),
	sourceKey("uncompleted"),
	sourceMethod(services.UncompletedLister.Uncompleted),
}

// firstString returns the first non-blank string produced by chain.
func firstString(v any, chain []extractor) string {
	for _, ex := range chain {
		raw, ok := ex(v)
		if !ok {
			continue
		}
		if s := stringValue(raw); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// anyTrue reports whether any field in chain is set to a true value.
func anyTrue(v any, chain []extractor) bool {
	for _, ex := range chain {
		if raw, ok := ex(v); ok && truthy(raw) {
			return true
		}
	}
	return false
}

// Title returns the title of a list handle or task ("title", then "name").
func Title(v any) string {
	return firstString(v, titleFields)
}

// ListIdentifier returns the first non-empty identifier of a list handle among id, guid, pGuid and list_id.
func ListIdentifier(list any) string {
	if list == nil {
		return ""
	}
	return firstString(list, listIDFields)
}

func taskListIdentifier(task any) string {
	return firstString(task, taskListFields)
}

func isCompleted(task any) bool {
	return anyTrue(task, completedFields)
}

// lookup reads key from a string keyed map of any value type.
func lookup(v any, key string) (any, bool) {
	if m, ok := v.(map[string]any); ok {
		val, ok := m[key]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

// elements flattens a collection into its values. Maps yield their values in sorted key order.
func elements(v any) ([]any, bool) {
	switch c := v.(type) {
	case nil:
		return nil, false
	case []any:
		return c, true
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = c[k]
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = rv.MapIndex(k).Interface()
		}
		return out, true
	}
	return nil, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int, int64, int32, uint, uint64, uint32:
		return fmt.Sprint(s)
	case fmt.Stringer:
		return s.String()
	}
	return ""
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return false
}
